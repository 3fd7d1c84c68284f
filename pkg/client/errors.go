package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/driftbox/driftbox/pkg/protocol"
)

// Sentinel errors for the two status codes callers branch on.
var (
	// ErrUnauthorized is returned on 401. Callers must treat the session
	// as gone.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound is returned on 404, e.g. navigating to a folder that
	// was deleted elsewhere.
	ErrNotFound = errors.New("not found")
)

// APIError is a non-2xx response from the backend, carrying the
// server-provided message when the body was a JSON error payload.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

// Is lets errors.Is match the sentinels without inspecting status codes.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

// IsUnauthorized reports whether err is an authorization failure.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsNotFound reports whether err is a not-found failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// apiError builds an APIError from a non-2xx response, decoding the JSON
// error body when the server sent one.
func apiError(resp *http.Response) *APIError {
	e := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return e
	}
	var errResp protocol.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil {
		if errResp.Error != "" {
			e.Message = errResp.Error
		} else if errResp.Message != "" {
			e.Message = errResp.Message
		}
	}
	return e
}
