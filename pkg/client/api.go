package client

import (
	"fmt"
	"net/http"
)

// APIError is a non-2xx reply decoded from the error envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Code, e.Message)
}

// expect decodes the envelope's data into target when the reply carries the
// wanted status, otherwise returns an *APIError.
func expect(resp *Response, want int, target any) error {
	if resp.StatusCode != want {
		var env struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		}
		_ = resp.DecodeJSON(&env)
		return &APIError{StatusCode: resp.StatusCode, Code: env.Code, Message: env.Message}
	}
	if target == nil || want == http.StatusNoContent {
		return nil
	}
	return resp.DecodeData(target)
}
