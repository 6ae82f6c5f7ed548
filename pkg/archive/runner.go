package archive

import (
	"fmt"
	"os/exec"

	"github.com/stagehand-sh/stagehand/pkg/logging"
)

// CommandRunner executes a host command to completion. Implementations
// block until the command exits; the deploy core imposes no timeout.
type CommandRunner interface {
	Run(name string, args ...string) error
}

// execRunner runs real host commands.
type execRunner struct{}

// NewExecRunner returns a CommandRunner backed by os/exec.
func NewExecRunner() CommandRunner {
	return &execRunner{}
}

func (r *execRunner) Run(name string, args ...string) error {
	logger := logging.GetLogger("archive.exec")
	logger.Debug().Str("command", name).Strs("args", args).Msg("Executing command")

	out, err := exec.Command(name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %v: %w (output: %s)", name, args, err, string(out))
	}
	return nil
}
