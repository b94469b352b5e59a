// Package wire resolves the effective run settings for a command invocation
// and builds the session plumbing from them. Every subcommand funnels through
// Resolve so the precedence chain (flag > env > config file > default) and
// the last-activated-project fallback behave identically everywhere.
package wire

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsbrain/dtree/pkg/config"
	"github.com/opsbrain/dtree/pkg/dotdir"
	"github.com/opsbrain/dtree/pkg/logger"
	"github.com/opsbrain/dtree/pkg/session"
	"github.com/opsbrain/dtree/pkg/tree"
	"github.com/opsbrain/dtree/pkg/treefile"
)

// Settings are the resolved settings for one command run.
type Settings struct {
	ConfigDir   string
	Debug       bool
	Project     string
	StorageRoot string
	Retention   time.Duration
	Format      string
}

// Resolve reads the command's flags, the DTREE_ environment, the config.toml
// file, and the defaults, in that precedence order, and returns the effective
// settings.
//
// The project resolves specially: an explicit --project flag wins, otherwise
// the last activated project (recorded in .dtree/session.json) wins over the
// config default, so one-shot commands follow the session the user opened.
func Resolve(cmd *cobra.Command) (*Settings, error) {
	configDir, err := cmd.Flags().GetString("config-dir")
	if err != nil {
		return nil, fmt.Errorf("could not get config-dir flag: %w", err)
	}
	debug, err := cmd.Flags().GetBool("debug")
	if err != nil {
		return nil, fmt.Errorf("could not get debug flag: %w", err)
	}

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, []string{
		config.FlagProject,
		config.FlagStorageRoot,
		config.FlagRetention,
		config.FlagFormat,
	})

	s := &Settings{
		ConfigDir: configDir,
		Debug:     debug,
		Project:   v.GetString("session.project"),
		Format:    v.GetString("export.format"),
	}

	if f := cmd.Flags().Lookup("project"); f == nil || !f.Changed {
		state, err := dotdir.NewManager().LoadSessionState(configDir)
		if err != nil {
			return nil, err
		}
		if state != nil && state.Project != "" {
			s.Project = state.Project
		}
	}

	s.StorageRoot = v.GetString("storage.root")
	if s.StorageRoot == "" {
		root, err := dotdir.NewManager().TreesRoot(configDir)
		if err != nil {
			return nil, err
		}
		s.StorageRoot = root
	}

	if days := v.GetUint("session.retention_days"); days > 0 {
		s.Retention = time.Duration(days) * 24 * time.Hour
	}

	return s, nil
}

// Logger builds the CLI logger for these settings.
func (s *Settings) Logger() *slog.Logger {
	return logger.New(logger.WithDebug(s.Debug), logger.WithPretty(true))
}

// Manager builds a session manager bound to the resolved project.
func (s *Settings) Manager() *session.Manager {
	return session.NewManager(session.Config{
		Project:     s.Project,
		StorageRoot: s.StorageRoot,
		Retention:   s.Retention,
	}, s.Logger())
}

// Attach joins the project's active session. One-shot commands that mutate
// the tree (add, move, edit, remove, checkpoint, bye) go through here so they
// fail cleanly when no session is active.
func (s *Settings) Attach() (*session.Manager, error) {
	m := s.Manager()
	if err := m.Attach(); err != nil {
		return nil, err
	}
	return m, nil
}

// ProjectDir is the directory holding the resolved project's tree files.
func (s *Settings) ProjectDir() string {
	return filepath.Join(s.StorageRoot, s.Project)
}

// TreePath is today's tree file path for the resolved project.
func (s *Settings) TreePath() string {
	return filepath.Join(s.ProjectDir(), treefile.Filename(time.Now()))
}

// OpenStore loads today's tree file without requiring an active session.
// Read-only commands (show, markers, export, status) use this so they keep
// working after bye.
func (s *Settings) OpenStore() (*tree.Store, error) {
	path := s.TreePath()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	store, err := treefile.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	return store, nil
}
