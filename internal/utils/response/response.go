// Package response provides helpers for writing consistent JSON HTTP responses.
//
// Every endpoint answers with the same envelope:
//
//	{ "meta": { "message": "...", "pageCount": 3, "resultCount": 25 }, "data": ... }
//
// pageCount / resultCount appear only on list responses, and data is
// omitted when there is no payload (delete, errors).
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Envelope is the uniform response wrapper.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data,omitempty"`
}

// Meta carries the human-readable message and, for pages, the counts.
// The counts are pointers so that a legitimate zero is still encoded.
type Meta struct {
	Message     string `json:"message"`
	PageCount   *int   `json:"pageCount,omitempty"`
	ResultCount *int64 `json:"resultCount,omitempty"`
}

// WriteJSON writes a JSON-encoded response with the given HTTP status code.
//
// IMPORTANT ORDER: Header() → WriteHeader() → body writes.
// Once WriteHeader is called (or the first Write), headers are locked.
func WriteJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// OK builds an envelope with a message and an optional payload.
func OK(message string, data any) Envelope {
	return Envelope{Meta: Meta{Message: message}, Data: data}
}

// Page builds a list envelope carrying the pagination counts.
func Page(message string, data any, pageCount int, resultCount int64) Envelope {
	return Envelope{
		Meta: Meta{
			Message:     message,
			PageCount:   &pageCount,
			ResultCount: &resultCount,
		},
		Data: data,
	}
}

// Message builds an envelope that carries only a message. Used for errors
// and for responses with no payload.
func Message(message string) Envelope {
	return Envelope{Meta: Meta{Message: message}}
}

// GeneralError wraps any Go error into the envelope. Use it only for errors
// whose text is safe to show to a client (decode errors and the like).
func GeneralError(err error) Envelope {
	return Message(err.Error())
}

// ValidationError converts validator errors into a single readable message,
// one clause per failing field joined with ", ":
//
//	{ "meta": { "message": "firstName must not be null or blank, lastName is required" } }
//
// Any other error falls back to GeneralError.
func ValidationError(err error) Envelope {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return GeneralError(err)
	}

	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", e.Field()))
		case "notblank":
			msgs = append(msgs, fmt.Sprintf("%s must not be null or blank", e.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", e.Field()))
		}
	}

	return Message(strings.Join(msgs, ", "))
}
