// Package dotdir manages the .dtree/ and ~/.dtree directories.
//
// The dot directory holds the tool configuration and the per-project tree
// storage (trees/<project>/ with dated tree files and their archive/).
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the dtree directory.
	dirName = ".dtree"

	// treesDirName is the subdirectory holding per-project tree storage.
	treesDirName = "trees"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .dtree/ directory.
// Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.dtree/ dir
//  3. Home ~/.dtree/ dir
//  4. If none found, attempt to create ~/.dtree/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	var dir string

	switch {
	case overrideDir != "":
		dir = overrideDir

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		dir = filepath.Join(cwd, dirName)

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dirName)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating dtree directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// TreesRoot resolves (and creates if needed) the storage root for per-project
// trees inside the target .dtree/ directory.
func (m *Manager) TreesRoot(overrideDir string) (string, error) {
	target, err := m.Target(overrideDir)
	if err != nil {
		return "", err
	}

	root := filepath.Join(target, treesDirName)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("creating trees directory %s: %w", root, err)
	}

	return root, nil
}

// localDirExists checks whether a .dtree/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
