package jwt

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")
)

// Validator checks dashboard bearer tokens issued by the web frontend's
// auth provider. The portal only verifies; it never issues tokens.
//
//go:generate mockery --name=Validator --dir=. --output=./mocks --filename=jwt_validator_mock.go --case=underscore --with-expecter
type Validator interface {
	// Subject verifies tokenString and returns its subject (the user id).
	Subject(tokenString string) (string, error)
}

type validator struct {
	secret []byte
}

func NewValidator(secret string) Validator {
	return &validator{
		secret: []byte(secret),
	}
}

type claims struct {
	jwt.RegisteredClaims
}

func (v *validator) Subject(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenString,
		&claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return v.secret, nil
		},
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}

	parsed, ok := token.Claims.(*claims)
	if !ok || !token.Valid || parsed.Subject == "" {
		return "", ErrInvalidToken
	}
	return parsed.Subject, nil
}
