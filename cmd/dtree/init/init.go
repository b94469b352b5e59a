// Package initcmder provides the init command for initializing a local
// .dtree directory in the current working directory.
package initcmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	dirName = ".dtree"
)

const initLongDesc string = `Initialize a new .dtree/ directory in the current working directory.

Creates a local .dtree/ directory that takes precedence over the default
~/.dtree/ directory for configuration, session state, and tree storage.

This is useful for keeping a separate decision-tree journal per repository.

Examples:
  dtree init`

const initShortDesc string = "Initialize a local .dtree/ directory"

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit()
		},
	}

	return cmd
}

func runInit() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		fmt.Printf("Already initialized: %s\n", dir)
		return nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating .dtree directory: %w", err)
	}

	fmt.Printf("Initialized .dtree directory: %s\n", dir)
	return nil
}
