package gateway

import (
	"fmt"
	"net/http"
	"time"

	"noit-gateway/internal/models"
)

// Error is the translated form of any pipeline failure. It carries the
// HTTP status to relay and the client-facing envelope. The session token
// never appears in an envelope; requested identifiers may, for traceability.
type Error struct {
	Status   int
	Envelope models.ErrorEnvelope
}

func (e *Error) Error() string {
	return e.Envelope.Error
}

// AuthRequired translates a missing or empty token cookie. The names of the
// cookies that were present are included for diagnostics; values never are.
func AuthRequired(cookieNames []string) *Error {
	return &Error{
		Status: http.StatusUnauthorized,
		Envelope: models.ErrorEnvelope{
			Error:            "No autenticado: no se encontró el token de autenticación",
			AvailableCookies: cookieNames,
		},
	}
}

// TokenExpired translates a session token whose expiration already passed.
func TokenExpired() *Error {
	return &Error{
		Status: http.StatusUnauthorized,
		Envelope: models.ErrorEnvelope{
			Error: "Sesión expirada: el token de autenticación ha expirado",
		},
	}
}

// MissingParam translates a required request parameter that was absent,
// before any network call is made.
func MissingParam(message, param, expectedForm string) *Error {
	return &Error{
		Status: http.StatusBadRequest,
		Envelope: models.ErrorEnvelope{
			Error:        message,
			MissingParam: param,
			ExpectedForm: expectedForm,
		},
	}
}

// BadRequest translates an unreadable request body.
func BadRequest(message string) *Error {
	return &Error{
		Status:   http.StatusBadRequest,
		Envelope: models.ErrorEnvelope{Error: message},
	}
}

// FromUpstreamStatus translates a non-2xx upstream status. The common cases
// get request-specific friendly messages; anything else passes the upstream
// status through with the body as diagnostic detail.
func FromUpstreamStatus(resource, requestedID string, status int, body []byte) *Error {
	switch status {
	case http.StatusNotFound:
		msg := fmt.Sprintf("No se encontró %s", resource)
		if requestedID != "" {
			msg = fmt.Sprintf("No se encontró %s para el identificador %s", resource, requestedID)
		}
		return &Error{
			Status: http.StatusNotFound,
			Envelope: models.ErrorEnvelope{
				Error:          msg,
				RequestedID:    requestedID,
				UpstreamStatus: status,
			},
		}
	case http.StatusUnauthorized:
		return &Error{
			Status: http.StatusUnauthorized,
			Envelope: models.ErrorEnvelope{
				Error:          fmt.Sprintf("No tienes autorización para acceder a %s", resource),
				RequestedID:    requestedID,
				UpstreamStatus: status,
			},
		}
	default:
		return &Error{
			Status: status,
			Envelope: models.ErrorEnvelope{
				Error:          fmt.Sprintf("El servidor de análisis respondió con un error (%d)", status),
				Detail:         bodySnippet(body),
				RequestedID:    requestedID,
				UpstreamStatus: status,
			},
		}
	}
}

// Timeout translates an aborted upstream call. Not retried automatically;
// the message invites the caller to retry.
func Timeout() *Error {
	return &Error{
		Status: http.StatusGatewayTimeout,
		Envelope: models.ErrorEnvelope{
			Error: "La solicitud tardó demasiado en responder, intenta de nuevo",
		},
	}
}

// Unavailable translates transport failures and an open circuit breaker.
func Unavailable() *Error {
	return &Error{
		Status: http.StatusBadGateway,
		Envelope: models.ErrorEnvelope{
			Error: "El servidor de análisis no está disponible en este momento",
		},
	}
}

// InvalidShape translates a hard validation failure: the upstream answered
// 2xx but the body does not match the declared structure.
func InvalidShape(reason string) *Error {
	return &Error{
		Status: http.StatusInternalServerError,
		Envelope: models.ErrorEnvelope{
			Error:  "Respuesta del servidor con estructura inesperada",
			Detail: reason,
		},
	}
}

// Internal translates an uncaught failure at the request boundary.
func Internal(err error) *Error {
	envelope := models.ErrorEnvelope{
		Error:     "Error interno del servidor",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err != nil {
		envelope.Detail = err.Error()
	}
	return &Error{
		Status:   http.StatusInternalServerError,
		Envelope: envelope,
	}
}

func bodySnippet(body []byte) string {
	const max = 300
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
