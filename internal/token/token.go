package token

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ConfirmationTTL is the validity window of an email confirmation token.
const ConfirmationTTL = 12 * time.Hour

type Claims struct {
	UserID    int64  `json:"userId"`
	UserEmail string `json:"userEmail"`
	jwt.RegisteredClaims
}

// Issuer signs email confirmation tokens with a process-wide secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ConfirmationTTL,
	}
}

// Issue produces a signed HS256 token asserting the user/email pair. The
// payload is not encrypted, only signed.
func (i *Issuer) Issue(userID int64, email string) (string, error) {
	now := time.Now().UTC()

	claims := Claims{
		UserID:    userID,
		UserEmail: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return t.SignedString(i.secret)
}

// Parse validates a confirmation token and returns its claims.
func (i *Issuer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		// Enforce HS256

		_, ok := t.Method.(*jwt.SigningMethodHMAC)

		if !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := t.Claims.(*Claims)

	if !ok || !t.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// GenerateConfirmationCode returns a random 8-digit code. It is a secondary,
// human-typable verification channel, not a cryptographic secret.
func GenerateConfirmationCode() int {
	return rand.IntN(90_000_000) + 10_000_000
}

// ComputeExpiry returns the current time plus the given number of hours.
func ComputeExpiry(hours int) time.Time {
	return time.Now().UTC().Add(time.Duration(hours) * time.Hour)
}
