package hooks

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/stagehand-sh/stagehand/pkg/types"
)

// Command builds a Hook that runs a shell command through the platform
// shell, from workdir with the deploy environment inherited. This is how
// descriptor-configured hooks are wired for CLI use.
func Command(platform types.Platform, workdir, command string) Hook {
	return func() error {
		shell, flag := "sh", "-c"
		if platform.IsWindows() {
			shell, flag = "cmd", "/C"
		}

		cmd := exec.Command(shell, flag, command)
		cmd.Dir = workdir
		cmd.Env = os.Environ()
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("%s: %w (output: %s)", command, err, string(out))
		}
		return nil
	}
}
