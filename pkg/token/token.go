package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes the two signing contexts
type Kind string

const (
	// KindSession bearer token presented on protected requests
	KindSession Kind = "session"
	// KindReset single-use token embedded in a reset-password link
	KindReset Kind = "reset"
)

// Claims structure for custom claims in both token kinds
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Principal is the authenticated identity the middleware resolves once per
// request and hands to the handlers.
type Principal struct {
	UserID   string
	Email    string
	Username string
}

// Session and reset tokens are signed with distinct secrets so that one can
// never be replayed as the other. Overridden from config at startup.
var (
	SessionSecret = []byte("videoboard_session_secret")
	ResetSecret   = []byte("videoboard_reset_secret")

	// SessionTTL validity window of a bearer token
	SessionTTL = 24 * time.Hour
	// ResetTTL validity window of a reset-password token
	ResetTTL = time.Hour
)

// ErrTokenExpired signature checked out but the token is past its window
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid any other verification failure
var ErrTokenInvalid = errors.New("token invalid")

// GenerateSessionToken issues a bearer token for a signed-in user
func GenerateSessionToken(userID, email, issuer string) (string, error) {
	return generate(userID, email, issuer, SessionSecret, SessionTTL)
}

// GenerateResetToken issues a short-lived reset-password token
func GenerateResetToken(userID, email, issuer string) (string, error) {
	return generate(userID, email, issuer, ResetSecret, ResetTTL)
}

// ParseSessionToken verifies a bearer token and extracts the Claims
func ParseSessionToken(tokenStr string) (*Claims, error) {
	return parse(tokenStr, SessionSecret)
}

// ParseResetToken verifies a reset token and extracts the Claims
func ParseResetToken(tokenStr string) (*Claims, error) {
	return parse(tokenStr, ResetSecret)
}

func generate(userID, email, issuer string, secret []byte, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func parse(tokenStr string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// only HMAC is ever issued here
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
