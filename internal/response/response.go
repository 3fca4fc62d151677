// Package response maps service results and domain errors onto the JSON
// envelope every endpoint returns.
package response

import (
	"net/http"

	"pokedex-api/internal/errs"
)

const (
	MessageUnavailable = "Service temporarily unavailable"
	MessageInternal    = "Internal server error"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Error   string   `json:"error,omitempty"`
	Details []string `json:"details,omitempty"`
}

func Success(data any, message string) Envelope {
	return Envelope{Success: true, Data: data, Message: message}
}

// StatusFor maps an error to the HTTP status the boundary must return.
func StatusFor(err error) int {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return http.StatusNotFound
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindUpstreamUnavailable:
		return http.StatusServiceUnavailable
	case errs.KindUnknown:
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// Failure builds the error envelope for err. Upstream and unclassified
// failures get a generic message so internal details never leak.
func Failure(err error) (int, Envelope) {
	status := StatusFor(err)
	env := Envelope{Success: false}

	e, _ := errs.As(err)
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		env.Error = e.Error()
	case errs.KindValidation:
		env.Error = e.Message
		env.Details = e.Fields
	case errs.KindUpstreamUnavailable:
		env.Error = MessageUnavailable
	default:
		env.Error = MessageInternal
	}
	return status, env
}
