package session

import "errors"

var (
	// ErrSessionAlreadyActive indicates that an activate was refused
	// because a session is already active for the project.
	ErrSessionAlreadyActive = errors.New("session already active")

	// ErrNoActiveSession indicates that a checkpoint or close was called
	// without an active session.
	ErrNoActiveSession = errors.New("no active session")

	// ErrArchivalFailed wraps archive sweep failures. Archival is
	// best-effort: these are logged by Close, never returned from it.
	ErrArchivalFailed = errors.New("archival failed")
)
