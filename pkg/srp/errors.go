package srp

import "errors"

// Error kinds. Every error returned by this package wraps exactly one of them.
var (
	// ErrFormat is returned for malformed hex or base64 input. It points at an encoding bug
	// upstream, not at a security event.
	ErrFormat = errors.New("srp: malformed input")

	// ErrProtocol is returned when an SRP safety check fails (zero ephemeral value, zero
	// scrambler, misuse of a finished session). The session is dead; a new one may be tried.
	ErrProtocol = errors.New("srp: protocol check failed")

	// ErrAuthentication is returned when the server proof does not match. It must be reported
	// as invalid credentials and nothing else.
	ErrAuthentication = errors.New("srp: authentication failed")

	// ErrCryptoFailure is returned when the random source or a hash primitive fails.
	ErrCryptoFailure = errors.New("srp: cryptographic primitive failure")
)
