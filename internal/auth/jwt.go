package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrExpiredToken = errors.New("token has expired")
	ErrInvalidToken = errors.New("invalid token")
)

type Issuer struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewIssuer(secret string, expiresIn time.Duration) (*Issuer, error) {
	if secret == "" {
		return nil, fmt.Errorf("JWT secret is not set")
	}
	return &Issuer{secret: []byte(secret), expiresIn: expiresIn, now: time.Now}, nil
}

// GenerateJWT signs an HS256 token whose subject is the user id.
func (i *Issuer) GenerateJWT(userID, email string) (string, error) {
	now := i.now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(i.expiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.secret)
}

// VerifyJWT validates the token and returns the user id it was issued for.
func (i *Issuer) VerifyJWT(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", ErrInvalidToken
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", ErrInvalidToken
	}

	return subject, nil
}
