// Package hooks defines the fixed set of lifecycle extension points the
// deploy orchestrator invokes. Each hook is an optional callback: absent
// means no-op, present means it runs synchronously at its defined point and
// any failure aborts the remaining lifecycle.
package hooks

import (
	"github.com/stagehand-sh/stagehand/pkg/errors"
	"github.com/stagehand-sh/stagehand/pkg/logging"
)

// Hook is one user-supplied lifecycle callback. Side effects are the
// caller's responsibility; a returned error is fatal for the deploy run.
type Hook func() error

// Point names a lifecycle extension point.
type Point string

const (
	BeforeDeploy  Point = "before_deploy"
	BeforeExtract Point = "before_extract"
	AfterExtract  Point = "after_extract"
	BeforeSymlink Point = "before_symlink"
	AfterSymlink  Point = "after_symlink"
	Configure     Point = "configure"
	BeforeMigrate Point = "before_migrate"
	Migrate       Point = "migrate"
	AfterMigrate  Point = "after_migrate"
	AfterDeploy   Point = "after_deploy"
)

// Points lists all extension points in lifecycle order.
var Points = []Point{
	BeforeDeploy, BeforeExtract, AfterExtract, BeforeSymlink, AfterSymlink,
	Configure, BeforeMigrate, Migrate, AfterMigrate, AfterDeploy,
}

// Set holds the optional hook for each extension point.
type Set struct {
	BeforeDeploy  Hook
	BeforeExtract Hook
	AfterExtract  Hook
	BeforeSymlink Hook
	AfterSymlink  Hook
	Configure     Hook
	BeforeMigrate Hook
	Migrate       Hook
	AfterMigrate  Hook
	AfterDeploy   Hook
}

// Get returns the hook registered at point, or nil.
func (s *Set) Get(point Point) Hook {
	if s == nil {
		return nil
	}
	switch point {
	case BeforeDeploy:
		return s.BeforeDeploy
	case BeforeExtract:
		return s.BeforeExtract
	case AfterExtract:
		return s.AfterExtract
	case BeforeSymlink:
		return s.BeforeSymlink
	case AfterSymlink:
		return s.AfterSymlink
	case Configure:
		return s.Configure
	case BeforeMigrate:
		return s.BeforeMigrate
	case Migrate:
		return s.Migrate
	case AfterMigrate:
		return s.AfterMigrate
	case AfterDeploy:
		return s.AfterDeploy
	}
	return nil
}

// Register sets the hook at point.
func (s *Set) Register(point Point, hook Hook) {
	switch point {
	case BeforeDeploy:
		s.BeforeDeploy = hook
	case BeforeExtract:
		s.BeforeExtract = hook
	case AfterExtract:
		s.AfterExtract = hook
	case BeforeSymlink:
		s.BeforeSymlink = hook
	case AfterSymlink:
		s.AfterSymlink = hook
	case Configure:
		s.Configure = hook
	case BeforeMigrate:
		s.BeforeMigrate = hook
	case Migrate:
		s.Migrate = hook
	case AfterMigrate:
		s.AfterMigrate = hook
	case AfterDeploy:
		s.AfterDeploy = hook
	}
}

// Run invokes the hook at point, if any. Failures are wrapped as fatal
// hook errors.
func (s *Set) Run(point Point) error {
	hook := s.Get(point)
	if hook == nil {
		return nil
	}

	logger := logging.GetLogger("hooks")
	logger.Debug().Str("hook", string(point)).Msg("Running hook")

	if err := hook(); err != nil {
		return errors.Wrapf(err, errors.ErrHookFailed, "hook %q failed", string(point))
	}
	return nil
}
