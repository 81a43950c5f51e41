// Package cli provides the command-line interface for MoexGo
package cli

import (
	"os"

	"github.com/dyike/MoexGo/internal/display"
)

// Run starts the CLI application
func Run() {
	rootCmd := NewRootCmd()
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	if err := rootCmd.Execute(); err != nil {
		display.DisplayError(err)
		os.Exit(1)
	}
}
