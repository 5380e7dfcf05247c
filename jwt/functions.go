package jwt

import (
	"fmt"

	gojwt "github.com/golang-jwt/jwt/v5"
)

var parser = gojwt.NewParser(
	gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
)

// Create signs claims with the shared HS256 secret.
func Create(claims Claims, secret string) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("jwt secret is empty")
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Validate checks the signature and expiry of token and returns its claims.
func Validate(token, secret string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is empty")
	}

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(*gojwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims.UserID() == "" {
		return nil, fmt.Errorf("jwt has no subject id")
	}

	return &claims, nil
}
