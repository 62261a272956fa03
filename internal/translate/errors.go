package translate

import (
	"errors"
	"fmt"

	"coursecaptions/internal/services"
)

// ProviderError reports a failed provider call for one shard.
type ProviderError struct {
	Shard int
	Err   error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("translate shard %d: provider: %v", e.Shard, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// ErrorKind classifies the failure by its cause, defaulting to external.
func (e *ProviderError) ErrorKind() string {
	if errors.Is(e.Err, services.ErrTransient) {
		return services.KindTransient
	}
	if kind := services.FailureKind(e.Err); kind != services.KindTransient {
		return kind
	}
	return services.KindExternal
}

// AlignmentError reports a provider result whose length does not match the
// request. It is never retriable.
type AlignmentError struct {
	Shard int
	Want  int
	Got   int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("translate shard %d: provider returned %d translations for %d texts", e.Shard, e.Got, e.Want)
}

// ErrorKind marks alignment failures as validation failures.
func (e *AlignmentError) ErrorKind() string { return services.KindValidation }
