// Package session manages the lifecycle of one editing session per project:
// activation (create or resume today's tree), checkpointing, close, and
// best-effort archival of tree files past the retention window.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/opsbrain/dtree/pkg/tree"
	"github.com/opsbrain/dtree/pkg/treefile"
)

// State tracks where a manager is in the NoSession -> Active -> Closed
// lifecycle.
type State int

const (
	StateNone State = iota
	StateActive
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNone:
		return "none"
	case StateActive:
		return "active"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

const (
	lockFile   = "session.lock"
	archiveDir = "archive"

	// DefaultRetention is how long tree files stay in active storage
	// before Close moves them to the archive.
	DefaultRetention = 7 * 24 * time.Hour
)

// Config carries everything a session needs explicitly, rather than relying
// on ambient file-system conventions: the project, where trees live, and how
// long they are retained.
type Config struct {
	// Project names the work journal this session belongs to. Each
	// project gets its own directory under StorageRoot.
	Project string

	// StorageRoot is the directory holding per-project tree directories.
	StorageRoot string

	// Retention is the age past which tree files are archived on Close.
	// Zero means DefaultRetention.
	Retention time.Duration

	// Now is the clock. Zero value means time.Now. Injected so rotation
	// and retention are testable.
	Now func() time.Time
}

// Manager drives one session at a time for one project.
type Manager struct {
	cfg Config
	log *slog.Logger

	state State
	mut   *tree.Mutator
	path  string
}

// NewManager creates a manager in the NoSession state.
func NewManager(cfg Config, log *slog.Logger) *Manager {
	if cfg.Retention <= 0 {
		cfg.Retention = DefaultRetention
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{
		cfg: cfg,
		log: log.With("project", cfg.Project),
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	return m.state
}

// Path returns the active tree file path, or empty before activation.
func (m *Manager) Path() string {
	return m.path
}

// Tree returns the mutation surface for the active session's tree, or nil
// when no session is active.
func (m *Manager) Tree() *tree.Mutator {
	return m.mut
}

// Activate starts a session: if a tree file exists for the current date it
// is loaded, otherwise a fresh tree with a single root node is created and
// persisted immediately.
//
// A per-project lock file refuses a second Activate while one session is
// active; it fails with ErrSessionAlreadyActive. A malformed tree file
// aborts activation rather than silently dropping nodes.
func (m *Manager) Activate() error {
	if m.state == StateActive {
		return fmt.Errorf("%w: project %s", ErrSessionAlreadyActive, m.cfg.Project)
	}

	dir := m.projectDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}

	if err := m.acquireLock(); err != nil {
		return err
	}

	today := m.cfg.Now()
	m.path = filepath.Join(dir, treefile.Filename(today))

	store, err := m.loadOrCreate(today)
	if err != nil {
		m.releaseLock()
		m.path = ""
		return err
	}

	m.mut = tree.NewMutator(store)
	m.state = StateActive

	if err := m.Checkpoint(); err != nil {
		m.releaseLock()
		m.mut = nil
		m.path = ""
		m.state = StateNone
		return err
	}

	m.log.Info("session activated", "path", m.path, "nodes", store.Len())
	return nil
}

// Attach joins the session a previous Activate left running: the lock must
// already be held for the project, and the current date's tree file is
// loaded. Used by one-shot commands (add, move, checkpoint, bye) that run in
// a fresh process after activate.
func (m *Manager) Attach() error {
	if m.state == StateActive {
		return nil
	}

	lockPath := filepath.Join(m.projectDir(), lockFile)
	if _, err := os.Stat(lockPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: project %s (run activate first)", ErrNoActiveSession, m.cfg.Project)
		}
		return fmt.Errorf("checking session lock: %w", err)
	}

	today := m.cfg.Now()
	m.path = filepath.Join(m.projectDir(), treefile.Filename(today))

	store, err := m.loadOrCreate(today)
	if err != nil {
		m.path = ""
		return err
	}

	m.mut = tree.NewMutator(store)
	m.state = StateActive

	return nil
}

func (m *Manager) loadOrCreate(today time.Time) (*tree.Store, error) {
	f, err := os.Open(m.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("opening tree file: %w", err)
		}

		store := tree.NewStore(treefile.SessionID(m.cfg.Project, today))
		if _, err := store.Create("Session Start", ""); err != nil {
			return nil, err
		}
		return store, nil
	}
	defer f.Close()

	store, err := treefile.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", m.path, err)
	}
	return store, nil
}

// Checkpoint serializes the current tree without changing session state.
// The write is atomic: a temp file in the same directory renamed over the
// target.
func (m *Manager) Checkpoint() error {
	if m.state != StateActive {
		return ErrNoActiveSession
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".checkpoint-*")
	if err != nil {
		return fmt.Errorf("creating checkpoint temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := treefile.Encode(tmp, m.mut.Store()); err != nil {
		tmp.Close()
		return fmt.Errorf("serializing tree: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing checkpoint: %w", err)
	}

	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("committing checkpoint: %w", err)
	}

	m.log.Debug("checkpoint written", "path", m.path, "nodes", m.mut.Store().Len())
	return nil
}

// Close serializes the tree, transitions to Closed, releases the project
// lock, and evaluates archival. Archival is best-effort: failures are
// logged, never returned, and never block the close.
func (m *Manager) Close() error {
	if m.state != StateActive {
		return ErrNoActiveSession
	}

	if err := m.Checkpoint(); err != nil {
		return err
	}

	m.releaseLock()
	m.state = StateClosed
	m.mut = nil

	if err := m.archiveSweep(); err != nil {
		m.log.Warn("archive sweep incomplete", "error", err)
	}

	m.log.Info("session closed", "path", m.path)
	return nil
}

func (m *Manager) projectDir() string {
	return filepath.Join(m.cfg.StorageRoot, m.cfg.Project)
}

// acquireLock creates the per-project lock file exclusively. An existing
// lock means another session is active for this project.
func (m *Manager) acquireLock() error {
	path := filepath.Join(m.projectDir(), lockFile)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: lock held at %s", ErrSessionAlreadyActive, path)
		}
		return fmt.Errorf("acquiring session lock: %w", err)
	}

	fmt.Fprintf(f, "pid: %d\nstarted: %s\n", os.Getpid(), m.cfg.Now().UTC().Format(time.RFC3339))
	return f.Close()
}

func (m *Manager) releaseLock() {
	path := filepath.Join(m.projectDir(), lockFile)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		m.log.Warn("releasing session lock", "path", path, "error", err)
	}
}
