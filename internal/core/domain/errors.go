package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks startup-time configuration problems. Fatal,
	// never recoverable per request.
	ErrConfiguration = errors.New("configuration error")
	// ErrRetrieval marks embedding or vector index capability failures.
	ErrRetrieval = errors.New("retrieval failure")
	// ErrGeneration marks answer generation capability failures.
	ErrGeneration = errors.New("generation failure")

	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
