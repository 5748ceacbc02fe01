package usecase

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// RemoteFetchError is returned once every attempt against a range source failed.
type RemoteFetchError struct {
	SpreadsheetID string
	Range         string
	Attempts      int
	Err           error
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("fetch range %q from %q failed after %d attempt(s): %v", e.Range, e.SpreadsheetID, e.Attempts, e.Err)
}

func (e *RemoteFetchError) Unwrap() error {
	return e.Err
}

func (e *RemoteFetchError) Is(target error) bool {
	return target == ErrDependencyUnavailable
}

// ProviderError aborts a reconciliation run before anything is written.
type ProviderError struct {
	Provider string
	Season   int
	Week     int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("stats provider %s season %d week %d: %v", e.Provider, e.Season, e.Week, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func (e *ProviderError) Is(target error) bool {
	return target == ErrDependencyUnavailable
}
