package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// APIError is a non-2xx reply.  Detail holds the human readable message
// extracted from the body, empty when the body carried none.
type APIError struct {
	Method string
	Path   string
	Status int
	Detail string
	Body   []byte
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Status, http.StatusText(e.Status))
}

// NetworkError means no HTTP reply was received.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// InputError is a request refused locally before it reached the backend.
// It renders like a 422 field error.
type InputError struct {
	Field string
	Err   error
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *InputError) Unwrap() error { return e.Err }

// Invalid wraps err as an InputError on field.
func Invalid(field string, err error) error { return &InputError{Field: field, Err: err} }

func newAPIError(method, path string, status int, body []byte) *APIError {
	return &APIError{Method: method, Path: path, Status: status, Detail: detailOf(body), Body: body}
}

// Kind is the error taxonomy the console reacts to.
type Kind int

const (
	KindOther Kind = iota
	KindNetwork
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindValidation
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	}
	return "other"
}

// Classify maps err onto a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, ErrLoginRequired) {
		return KindUnauthorized
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}
	var inErr *InputError
	if errors.As(err, &inErr) {
		return KindValidation
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return KindOther
	}
	switch {
	case apiErr.Status == http.StatusUnauthorized:
		return KindUnauthorized
	case apiErr.Status == http.StatusForbidden:
		return KindForbidden
	case apiErr.Status == http.StatusNotFound:
		return KindNotFound
	case apiErr.Status == http.StatusUnprocessableEntity || apiErr.Status == http.StatusBadRequest:
		return KindValidation
	case apiErr.Status >= 500:
		return KindServer
	}
	return KindOther
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// ShouldReport tells whether err is worth forwarding to telemetry.
func ShouldReport(err error) bool {
	k := Classify(err)
	return k == KindNetwork || k == KindServer
}

const (
	MsgNetwork      = "Unable to reach the server. Check your connection."
	MsgUnauthorized = "Your session has expired. Please sign in again."
	MsgForbidden    = "You do not have access to this restaurant."
	MsgGeneric      = "Something went wrong. Please try again."
)

// Message turns err into text fit for a notification.  Server supplied
// detail wins over the generic texts, except for session and access
// failures whose wording the console owns.  fallback replaces the generic
// text when nothing better is known.
func Message(err error, fallback string) string {
	if fallback == "" {
		fallback = MsgGeneric
	}
	if err == nil {
		return fallback
	}
	switch Classify(err) {
	case KindNetwork:
		return MsgNetwork
	case KindUnauthorized:
		return MsgUnauthorized
	case KindForbidden:
		return MsgForbidden
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	var inErr *InputError
	if errors.As(err, &inErr) {
		return inErr.Error()
	}
	return fallback
}

// detailOf extracts a message from a FastAPI style error body.
func detailOf(body []byte) string {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	if raw, ok := doc["detail"]; ok {
		if s := fromDetail(raw); s != "" {
			return s
		}
	}
	return messageKey(doc)
}

func fromDetail(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var list []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(raw, &list); err == nil {
		parts := make([]string, 0, len(list))
		for _, item := range list {
			if item.Msg == "" {
				continue
			}
			if field := fieldOf(item.Loc); field != "" {
				parts = append(parts, field+": "+item.Msg)
			} else {
				parts = append(parts, item.Msg)
			}
		}
		return strings.Join(parts, "; ")
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		return messageKey(obj)
	}
	return ""
}

// fieldOf renders a validation location, dropping the "body" root.
func fieldOf(loc []any) string {
	parts := make([]string, 0, len(loc))
	for i, p := range loc {
		s := fmt.Sprint(p)
		if i == 0 && (s == "body" || s == "query" || s == "path") {
			continue
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ".")
}

func messageKey(doc map[string]json.RawMessage) string {
	for _, key := range []string{"message", "error"} {
		var s string
		if raw, ok := doc[key]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}
