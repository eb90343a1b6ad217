package baileys

import "errors"

var (
	// ErrLoggedOut is the terminal lifecycle error: the session was closed
	// with the logged-out status code and must not be resurrected. The user
	// has to re-authenticate before a new session can be started.
	ErrLoggedOut = errors.New("session logged out")

	// ErrAlreadyRunning is returned by Run when the client's supervisor
	// loop is already active.
	ErrAlreadyRunning = errors.New("client already running")

	// ErrRestartLimit is returned by Run when the configured restart budget
	// is exhausted.
	ErrRestartLimit = errors.New("session restart limit exceeded")

	// ErrCredentialsUnavailable wraps a credential store failure observed
	// while starting a session attempt.
	ErrCredentialsUnavailable = errors.New("credentials unavailable")

	// ErrSocketUnavailable wraps a socket factory failure observed while
	// starting a session attempt.
	ErrSocketUnavailable = errors.New("socket unavailable")
)
