package jwt

import (
	"errors"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// ErrNoExpiry is returned when a token carries no usable exp claim.
var ErrNoExpiry = errors.New("token has no expiry")

// Claims is the subset of the admin token payload the front reads.
// Nothing here is verified: the values drive countdowns and refresh timing only
// and must never be used to grant or deny access.
type Claims struct {
	Username string `json:"sub,omitempty"`
	Role     string `json:"role,omitempty"`
	jwtlib.RegisteredClaims
}

// Decode parses the token payload without verifying its signature.
func Decode(tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))
	if tokenString == "" {
		return nil, errors.New("empty token")
	}
	claims := &Claims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseExpiry returns the exp claim of an access token. ok is false for
// malformed tokens and for tokens without exp.
func ParseExpiry(tokenString string) (time.Time, bool) {
	claims, err := Decode(tokenString)
	if err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TimeLeft returns the whole seconds until exp, clamped at zero.
func TimeLeft(exp, now time.Time) int {
	left := int(exp.Sub(now) / time.Second)
	if left < 0 {
		return 0
	}
	return left
}
