package types

// LocationKind tags the resolved shape of an artifact location.
type LocationKind string

const (
	// LocationHTTP is an opaque HTTP or HTTPS URL.
	LocationHTTP LocationKind = "http"

	// LocationRepository is a binary-repository coordinate
	// (group:artifact:version[:extension]).
	LocationRepository LocationKind = "repository"

	// LocationLocal is a path on the local filesystem.
	LocationLocal LocationKind = "local"
)

// Location is the tagged result of classifying a location string. It is
// produced once by the resolver and threaded through the fetch and deploy
// layers so the classification is never re-derived ad hoc.
type Location struct {
	Kind LocationKind

	// Raw is the original location string as configured.
	Raw string

	// Coordinate parts, populated only when Kind == LocationRepository.
	Group      string
	ArtifactID string
	Version    string
	Extension  string
}

// IsHTTP reports whether the location is an opaque HTTP(S) URL.
func (l Location) IsHTTP() bool { return l.Kind == LocationHTTP }

// IsRepository reports whether the location is a repository coordinate.
func (l Location) IsRepository() bool { return l.Kind == LocationRepository }

// IsLocal reports whether the location is a local filesystem path.
func (l Location) IsLocal() bool { return l.Kind == LocationLocal }
