package usecase

import (
	"testing"

	"github.com/cockroachdb/errors"
)

func TestTypedErrorsClassifyAsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	cause := errors.New("503 from upstream")
	fetchErr := error(&RemoteFetchError{SpreadsheetID: "default", Range: "Weekly!A1:F20", Attempts: 3, Err: cause})
	providerErr := errors.Wrap(&ProviderError{Provider: "sleeper", Season: 2024, Week: 3, Err: cause}, "reconcile")

	for _, err := range []error{fetchErr, providerErr} {
		if !errors.Is(err, ErrDependencyUnavailable) {
			t.Fatalf("expected %v to be ErrDependencyUnavailable", err)
		}
		if !errors.Is(err, cause) {
			t.Fatalf("expected %v to wrap the cause", err)
		}
	}

	var pe *ProviderError
	if !errors.As(providerErr, &pe) || pe.Provider != "sleeper" {
		t.Fatalf("expected ProviderError through wrap, got %v", providerErr)
	}
}
