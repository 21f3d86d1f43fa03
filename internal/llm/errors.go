package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrProviderUnavailable means the backend is unreachable or missing
	// credentials. Retrying does not help.
	ErrProviderUnavailable = errors.New("llm provider unavailable")

	ErrTimeout = errors.New("llm request timed out")

	// ErrInvalidOutput means the reply could not be decoded into the shape
	// the caller asked for.
	ErrInvalidOutput = errors.New("invalid llm output format")

	ErrRetryExhausted = errors.New("llm retry attempts exhausted")

	// ErrDisabled is returned when LLM features are turned off in config.
	ErrDisabled = errors.New("llm disabled")
)

// finalError maps the last failed attempt of a call to one of the sentinel
// errors above, keeping the provider's message.
func finalError(lastErr error, timedOut bool) error {
	switch {
	case timedOut:
		return ErrTimeout
	case errors.Is(lastErr, ErrProviderUnavailable):
		return lastErr
	case isConnectionError(lastErr):
		return fmt.Errorf("%w: %v", ErrProviderUnavailable, lastErr)
	default:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
	}
}

// permanent reports whether another attempt is pointless.
func permanent(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, ErrProviderUnavailable)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

// ErrorCode is the short code recorded on call events and surfaced in API
// error bodies.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrProviderUnavailable):
		return "UNAVAILABLE"
	case errors.Is(err, ErrInvalidOutput):
		return "INVALID_OUTPUT"
	case errors.Is(err, ErrRetryExhausted):
		return "RETRY_EXHAUSTED"
	case errors.Is(err, ErrDisabled):
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}
