package types

// LatestVersion is the sentinel version that asks the repository to resolve
// the newest published version. Only valid for non-HTTP locations.
const LatestVersion = "latest"

// ArtifactRef identifies one deployable artifact. Immutable once built.
type ArtifactRef struct {
	// Name is the deploy target name; it becomes the cache subdirectory.
	Name string

	// Location is the raw location string: an HTTP(S) URL, a repository
	// coordinate (group:artifact:version[:extension]), or a local path.
	Location string

	// Version is the desired version, or LatestVersion.
	Version string

	// Checksum is the expected SHA-256 of the artifact file, hex-encoded.
	// Empty means no verification.
	Checksum string
}
