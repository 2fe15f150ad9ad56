package types

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
)

// Precondition errors. The pipeline aborts before any remote call.
var (
	ErrUnsupportedEvent = goerr.New("only pull_request events are supported")
	ErrNotMerged        = goerr.New("only merged pull requests are supported")
	ErrInvalidEvent     = goerr.New("trigger event is missing required fields")
)

// Stage errors.
var (
	ErrVersionResolution  = goerr.New("failed to resolve next release version")
	ErrBranchCheck        = goerr.New("failed to reconcile release branch")
	ErrCherryPickConflict = goerr.New("cherry-pick could not be applied")
	ErrConflictRecovery   = goerr.New("failed to prepare conflict recovery")
	ErrPublish            = goerr.New("failed to publish release pull request")
	ErrHotfixFailed       = goerr.New("hotfix pipeline failed")
)

// Errors classified from the hosting platform's answers.
var (
	ErrNotFound      = goerr.New("resource not found")
	ErrAlreadyExists = goerr.New("resource already exists")
	ErrConflict      = goerr.New("merge conflict")
	ErrNoDiff        = goerr.New("no commits between branches")
)

// IsPrecondition reports whether err was raised by event validation.
func IsPrecondition(err error) bool {
	return errors.Is(err, ErrUnsupportedEvent) ||
		errors.Is(err, ErrNotMerged) ||
		errors.Is(err, ErrInvalidEvent)
}
