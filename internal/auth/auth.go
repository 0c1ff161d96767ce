package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("no authorization")
	ErrInvalidToken = errors.New("invalid token")
)

// Identity is the authenticated reporter extracted from a session token.
type Identity struct {
	UserId string
	Name   string
}

// IssueToken mints an HS256 session token for a reporter.
func IssueToken(secret []byte, userId, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userId,
		"name": name,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	})
	return token.SignedString(secret)
}

// ValidateToken verifies signature and expiry and extracts the identity.
func ValidateToken(tokenString string, secret []byte) (Identity, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Identity{}, fmt.Errorf("%w: invalid map claims", ErrInvalidToken)
	}
	v, ok := mapClaims["sub"]
	if !ok {
		return Identity{}, fmt.Errorf("%w: user id not found", ErrInvalidToken)
	}
	userId, ok := v.(string)
	if !ok || userId == "" {
		return Identity{}, fmt.Errorf("%w: invalid user id", ErrInvalidToken)
	}
	identity := Identity{UserId: userId}
	if name, ok := mapClaims["name"].(string); ok {
		identity.Name = name
	}
	return identity, nil
}

// TokenFromRequest pulls the credential supplied at connection time:
// Authorization header first, token query parameter as fallback.
func TokenFromRequest(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header != "" {
		return strings.TrimPrefix(header, "Bearer "), nil
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, nil
	}
	return "", ErrMissingToken
}
