// Package types holds the wire envelopes shared by every HTTP response.
package types

// SuccessEnvelope wraps every 2xx payload under a single "data" key.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the client-facing error body. Details is populated only for
// codes whose metadata allows it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps an APIError under a single "error" key.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
