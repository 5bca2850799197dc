package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Error codes the server attaches to failure envelopes. The set is part of
// the API contract and stable across backend versions.
const (
	CodeInvalidCredentials   = "invalid_credentials"
	CodeInvalidTwoFactorCode = "invalid_2fa_code"
	CodeBackupCodeConsumed   = "backup_code_used"
	CodeTokenExpired         = "token_expired"
	CodeRefreshInvalid       = "invalid_refresh_token"
	CodeSessionNotFound      = "session_not_found"
	CodeValidation           = "validation_failed"
)

// APIError is a non-2xx response decoded into its status, machine code, and
// human message. Transport-level failures are never wrapped in APIError.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Conflict reports whether the error represents an already-applied
// operation (revoking a session that is already gone).
func (e *APIError) Conflict() bool {
	if e == nil {
		return false
	}
	if e.Status == http.StatusConflict {
		return true
	}
	return e.Status == http.StatusNotFound && e.Code == CodeSessionNotFound
}

// errorEnvelope tolerates the two error body layouts the backend emits:
// {"code","message"} at the top level or nested under "error".
type errorEnvelope struct {
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Nested  *errorEnvelopeIn `json:"error"`
}

type errorEnvelopeIn struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func decodeAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Nested != nil {
			apiErr.Code = env.Nested.Code
			apiErr.Message = env.Nested.Message
		} else {
			apiErr.Code = env.Code
			apiErr.Message = env.Message
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
