package imgur

import "fmt"

// Error is a failed API call carrying the HTTP status Imgur answered with.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("imgur: %s (status %d)", e.Message, e.StatusCode)
}

// RateLimitError is returned when Imgur refuses a request for exceeding the
// rate limit.
type RateLimitError struct {
	Message string
}

func (e *RateLimitError) Error() string {
	return "imgur: " + e.Message
}
