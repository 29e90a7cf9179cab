package notion

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jomei/notionapi"
)

// Notion error codes that get a dedicated hint.
const (
	codeObjectNotFound = "object_not_found"
	codeUnauthorized   = "unauthorized"
	codeRateLimited    = "rate_limited"
)

// Notion-specific errors.
var (
	// ErrDatabaseNotFound indicates the database id is wrong or the
	// integration has not been shared with the database.
	ErrDatabaseNotFound = errors.New("notion: database not found, check notion.database_id")

	// ErrUnauthorized indicates the integration token was rejected.
	ErrUnauthorized = errors.New("notion: unauthorized, check notion.token")
)

// APIError represents a Notion API error response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: API error %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps well-known codes to sentinel errors.
func (e *APIError) Unwrap() error {
	switch {
	case e.Code == codeObjectNotFound || e.StatusCode == http.StatusNotFound:
		return ErrDatabaseNotFound
	case e.Code == codeUnauthorized || e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	default:
		return nil
	}
}

// IsNotFound checks if the error indicates the database was not found.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrDatabaseNotFound)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == codeRateLimited || apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// wrapError converts SDK errors to our error types.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var sdkErr *notionapi.Error
	if errors.As(err, &sdkErr) {
		return fmt.Errorf("%s: %w", operation, &APIError{
			StatusCode: sdkErr.Status,
			Code:       string(sdkErr.Code),
			Message:    sdkErr.Message,
		})
	}

	return fmt.Errorf("notion: %s: %w", operation, err)
}
