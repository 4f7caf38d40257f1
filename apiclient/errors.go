package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrMalformedResponse is returned when a 2xx response lacks what the caller needs.
var ErrMalformedResponse = errors.New("malformed response")

// NetworkError is a transport failure: no response was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response.
type APIError struct {
	Status int
	Body   ErrorBody
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Body.Message("no details"))
}

// ErrorBody is the backend's error payload. Structured payloads fill Detail,
// NonFieldErrors and FieldErrors; Raw always holds the body as received.
type ErrorBody struct {
	Detail         string
	NonFieldErrors []string
	FieldErrors    map[string][]string
	Raw            string
}

const (
	detailField        = "detail"
	nonFieldErrorField = "non_field_errors"
)

// ParseErrorBody decodes an error payload. Bodies that are not a JSON object
// are kept only as Raw.
func ParseErrorBody(data []byte) ErrorBody {
	body := ErrorBody{Raw: string(data)}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return body
	}

	for name, raw := range fields {
		msgs := decodeMessages(raw)
		switch name {
		case detailField:
			body.Detail = strings.Join(msgs, " ")
		case nonFieldErrorField:
			body.NonFieldErrors = msgs
		default:
			if len(msgs) == 0 {
				continue
			}
			if body.FieldErrors == nil {
				body.FieldErrors = make(map[string][]string)
			}
			body.FieldErrors[name] = msgs
		}
	}
	return body
}

// decodeMessages accepts either a string or a list of strings.
func decodeMessages(raw json.RawMessage) []string {
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return nil
}

// Message applies the shared error-normalisation policy: the detail field,
// else the non-field errors, else the field errors, else fallback.
func (b ErrorBody) Message(fallback string) string {
	if b.Detail != "" {
		return b.Detail
	}
	if len(b.NonFieldErrors) > 0 {
		return strings.Join(b.NonFieldErrors, " ")
	}
	if len(b.FieldErrors) > 0 {
		names := make([]string, 0, len(b.FieldErrors))
		for name := range b.FieldErrors {
			names = append(names, name)
		}
		sort.Strings(names)

		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(b.FieldErrors[name], " ")))
		}
		return strings.Join(parts, "; ")
	}
	return fallback
}

// Message normalises any error returned by the client for display.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body.Message(fallback)
	}
	return fallback
}

// IsStatus reports whether err is an APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
