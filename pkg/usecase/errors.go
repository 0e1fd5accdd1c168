package usecase

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNoHandler marks an intent with no registered action handler
	ErrNoHandler = goerr.New("no handler registered for intent")

	// ErrNotWaitingApproval marks an approval attempt on a task that is not
	// waiting for one
	ErrNotWaitingApproval = goerr.New("task is not waiting for approval")
)
