package youtube

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Error kinds reported by video sources. Callers match them with errors.Is.
var (
	ErrQuotaExceeded  = errors.New("quota exceeded")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidChannel = errors.New("invalid channel")
	ErrNotFound       = errors.New("not found")
	ErrUnavailable    = errors.New("service unavailable")
)

// ErrorKind returns the sentinel kind wrapped in err, or nil if none applies.
func ErrorKind(err error) error {
	for _, kind := range []error{ErrQuotaExceeded, ErrUnauthorized, ErrInvalidChannel, ErrNotFound, ErrUnavailable} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// classifyAPIError maps a Data API failure onto an error kind.
func classifyAPIError(channelID string, err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}

	var kind error
	switch apiErr.Code {
	case http.StatusForbidden, http.StatusTooManyRequests:
		kind = ErrQuotaExceeded
		for _, item := range apiErr.Errors {
			if item.Reason == "forbidden" || item.Reason == "accessNotConfigured" {
				kind = ErrUnauthorized
			}
		}
	case http.StatusUnauthorized:
		kind = ErrUnauthorized
	case http.StatusBadRequest:
		kind = ErrInvalidChannel
		for _, item := range apiErr.Errors {
			if item.Reason == "keyInvalid" {
				kind = ErrUnauthorized
			}
		}
	case http.StatusNotFound:
		kind = ErrNotFound
	default:
		kind = ErrUnavailable
	}

	return fmt.Errorf("failed to fetch channel %s: %w: %s", channelID, kind, apiErr.Message)
}
