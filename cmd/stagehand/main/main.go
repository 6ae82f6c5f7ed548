package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	stagehand "github.com/stagehand-sh/stagehand/cmd/stagehand"
)

func main() {
	rootCmd := stagehand.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}
