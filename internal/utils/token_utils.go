package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MarketClaims are the claims issued by the identity provider. Subject is the external ID.
type MarketClaims struct {
	Username string `json:"username,omitempty"`
	Referrer string `json:"ref,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT generates a signed token for externalID. The identity provider issues
// production tokens; this is used by tests and local tooling.
func GenerateJWT(externalID, username, referrer, secret string, expiryDuration time.Duration, issuer string) (string, error) {
	now := time.Now()
	claims := MarketClaims{
		Username: username,
		Referrer: referrer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   externalID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiryDuration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseAndValidateJWT parses a JWT token string, validates its signature, issuer and standard claims.
func ParseAndValidateJWT(tokenString, secretKey, issuer string) (*MarketClaims, error) {
	claims := &MarketClaims{}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secretKey), nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token is invalid")
	}
	return claims, nil
}
