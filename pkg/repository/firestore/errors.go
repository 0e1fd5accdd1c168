package firestore

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for the firestore repository
var (
	ErrNotFound       = goerr.New("not found")
	ErrImmutableField = goerr.New("immutable field modified")
	ErrTerminalState  = goerr.New("task already reached a terminal state")
	ErrBadTransition  = goerr.New("invalid status transition")
	ErrDuplicateKey   = goerr.New("duplicate idempotency key")
)
