package models

import "time"

// ErrorEnvelope is the uniform failure shape relayed to the browser. Error
// is always set; the remaining fields are additive diagnostics.
type ErrorEnvelope struct {
	Error            string   `json:"error"`
	Detail           string   `json:"detail,omitempty"`
	Timestamp        string   `json:"timestamp,omitempty"`
	RequestID        string   `json:"request_id,omitempty"`
	AvailableCookies []string `json:"availableCookies,omitempty"`
	MissingParam     string   `json:"missingParam,omitempty"`
	ExpectedForm     string   `json:"expectedForm,omitempty"`
	RequestedID      string   `json:"requestedId,omitempty"`
	UpstreamStatus   int      `json:"upstreamStatus,omitempty"`
}

type HealthCheckResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Upstream  string    `json:"upstream,omitempty"`
}

// LoginRequest is the credential payload forwarded verbatim to the upstream
// login endpoint. The gateway never stores it.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
