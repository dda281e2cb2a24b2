package service

import (
	"errors"
	"time"

	"github.com/Evgen-Mutagen/paymentref/internal/core"
	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidToken = errors.New("invalid token")

type tokenValidator struct {
	jwtSecretKey string
}

func NewTokenValidator(jwtSecretKey string) core.TokenValidator {
	return &tokenValidator{jwtSecretKey: jwtSecretKey}
}

// ValidateToken returns the subject of a valid HS256 token.
func (v *tokenValidator) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(v.jwtSecretKey), nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", ErrInvalidToken
	}

	subject, _ := claims["sub"].(string)
	if subject == "" {
		return "", ErrInvalidToken
	}
	return subject, nil
}

// IssueToken signs an operator token for subject.
func IssueToken(jwtSecretKey, subject string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecretKey))
}
