package authcore

import "errors"

var (
	// ErrInvalidCredentials is returned by Login when the identifier or
	// password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTwoFactorRequired signals that login succeeded against the primary
	// credential and a second factor is pending. Control flow, not failure.
	ErrTwoFactorRequired = errors.New("two-factor verification required")
	// ErrTwoFactorNotPending is returned by the verify operations when no
	// two-factor challenge is in progress.
	ErrTwoFactorNotPending = errors.New("no two-factor challenge pending")
	// ErrInvalidTwoFactorCode is returned when a device code is rejected.
	// The challenge stays pending; the user may retry.
	ErrInvalidTwoFactorCode = errors.New("invalid two-factor code")
	// ErrBackupCodeConsumed is returned when a backup code was already used
	// once. Distinct from ErrInvalidTwoFactorCode so the UI can tell a typo
	// from a spent code.
	ErrBackupCodeConsumed = errors.New("backup code already used")
	// ErrTokenExpired is returned when the access token is rejected as
	// expired and must be refreshed.
	ErrTokenExpired = errors.New("token expired")
	// ErrRefreshInvalid is returned when the refresh token itself is
	// rejected; the client has already cleared to anonymous.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrNotAuthenticated is returned by operations that require a session
	// when none is held.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrPermissionDenied is returned when the server refuses an operation
	// the local resolver would also deny.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrSessionNotFound is returned internally when revoking a session the
	// server no longer tracks; RevokeSession converts it to a no-op success.
	ErrSessionNotFound = errors.New("session not found")
	// ErrShopNotAccessible is returned by SwitchShop for a shop outside the
	// user's access set.
	ErrShopNotAccessible = errors.New("shop not accessible")
	// ErrNetworkFailure wraps transport-level failures. The only kind that
	// is retryable without new user input.
	ErrNetworkFailure = errors.New("network failure")
	// ErrValidation wraps field-level input rejections.
	ErrValidation = errors.New("validation failed")
	// ErrMalformedResponse is returned when a 2xx payload cannot be decoded
	// into any known shape.
	ErrMalformedResponse = errors.New("malformed server response")
	// ErrLoginInFlight is returned when a login is submitted while another
	// one is still pending.
	ErrLoginInFlight = errors.New("login already in flight")
	// ErrAlreadyAuthenticated is returned by Login while a session is held;
	// the caller must log out first. Re-login never runs on top of live
	// state, so a failed attempt cannot leave a prior session's grants
	// resolvable.
	ErrAlreadyAuthenticated = errors.New("already authenticated")
)

// Kind classifies an error into the taxonomy the UI gates on.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindValidation
	KindAuthentication
	KindAuthorization
	KindNetwork
	KindConflict
)

// KindOf resolves the taxonomy kind of any error returned by the client.
// Wrapped errors are unwrapped via errors.Is.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrLoginInFlight),
		errors.Is(err, ErrAlreadyAuthenticated):
		return KindValidation
	case errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidTwoFactorCode),
		errors.Is(err, ErrBackupCodeConsumed),
		errors.Is(err, ErrTwoFactorNotPending),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrRefreshInvalid),
		errors.Is(err, ErrNotAuthenticated):
		return KindAuthentication
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrShopNotAccessible):
		return KindAuthorization
	case errors.Is(err, ErrNetworkFailure):
		return KindNetwork
	case errors.Is(err, ErrSessionNotFound):
		return KindConflict
	default:
		return KindUnknown
	}
}
