package tradeapi

import (
	"encoding/json"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// ApiError is the single error type surfaced by the client. Both HTTP-status
// failures and application-level failures (success:false envelopes) end up
// here; callers only need the display-ready Message for presentation.
type ApiError struct {
	StatusCode int
	Message    string
}

func (e *ApiError) Error() string {
	return e.Message
}

// errorFromResponse builds an ApiError for a non-2xx response, preferring the
// server's message field over the bare HTTP status.
func errorFromResponse(resp *resty.Response) *ApiError {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &env); err == nil && env.Message != "" {
		return &ApiError{StatusCode: resp.StatusCode(), Message: env.Message}
	}
	return &ApiError{
		StatusCode: resp.StatusCode(),
		Message:    fmt.Sprintf("HTTP error! status: %d", resp.StatusCode()),
	}
}

// errorFromEnvelope builds an ApiError for a 2xx response whose envelope
// reports failure.
func errorFromEnvelope(message, fallback string, statusCode int) *ApiError {
	if message == "" {
		message = fallback
	}
	return &ApiError{StatusCode: statusCode, Message: message}
}
