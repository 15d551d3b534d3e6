package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Session errors
	ErrUnauthenticated = fmt.Errorf("not authenticated")
	ErrSessionCorrupt  = fmt.Errorf("session file unreadable")

	// Remote and lookup errors
	ErrRemote             = fmt.Errorf("remote store request failed")
	ErrMetadata           = fmt.Errorf("metadata lookup failed")
	ErrNotFound           = fmt.Errorf("not found")
	ErrConflict           = fmt.Errorf("already exists")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
