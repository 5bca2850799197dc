package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expiration returns the exp claim of a JWT as a timestamp. The parse is
// unverified: the signature is not checked and no claim is trusted beyond
// expiry bookkeeping. Returns false for malformed tokens or tokens without
// an exp claim.
func Expiration(tok string) (time.Time, bool) {
	if tok == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}

// Valid reports whether the token carries an exp claim in the future.
// Malformed tokens are invalid, never an error.
func Valid(tok string) bool {
	exp, ok := Expiration(tok)
	if !ok {
		return false
	}
	return exp.After(time.Now())
}

// TimeUntilExpiration returns the remaining lifetime of the token. The
// duration is negative when the token is already expired. Returns false for
// tokens whose expiry cannot be decoded.
func TimeUntilExpiration(tok string) (time.Duration, bool) {
	exp, ok := Expiration(tok)
	if !ok {
		return 0, false
	}
	return time.Until(exp), true
}
