package helpers

import (
	"errors"
	"fmt"
	"time"

	"stock-screener/src/logger"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type ScreenerError struct {
	Message string
	Cause   error
}

func (e *ScreenerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ScreenerError) Unwrap() error {
	return e.Cause
}

// Distinct error types for errors.As checks at the transport boundary
type ConfigurationError struct{ ScreenerError }
type DatabaseError struct{ ScreenerError }
type ValidationError struct{ ScreenerError }

// -----------------------------------------------------------------------------

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{ScreenerError{Message: message, Cause: cause}}
}

func NewValidationError(format string, args ...interface{}) error {
	return &ValidationError{ScreenerError{Message: fmt.Sprintf(format, args...)}}
}

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{ScreenerError{Message: message, Cause: cause}}
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts fn up to maxRetries times with exponential backoff.
// Used for connection setup only; per-request collaborator calls are not retried.
func RetryWithBackoff(log *logger.Logger, operation string, maxRetries int, baseDelay time.Duration, fn func() error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		log.Warning("Attempt %d/%d failed for %s: %v. Retrying in %v", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operation, maxRetries, lastErr)
}
