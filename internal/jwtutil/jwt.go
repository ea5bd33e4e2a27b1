// Package jwtutil decodes and verifies the ID tokens returned by a login.
package jwtutil

import (
	"context"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

var (
	// ErrMissingSubject is returned when the JWT is missing a subject
	ErrMissingSubject = fmt.Errorf("missing subject in token")
	// ErrMissingIssuer is returned when the JWT is missing an issuer
	ErrMissingIssuer = fmt.Errorf("missing issuer in token")
)

// IDTokenClaims represents the claims we care about from an ID token
type IDTokenClaims struct {
	Iss      string    `json:"iss"`
	Sub      string    `json:"sub"`
	Aud      []string  `json:"aud"`
	Exp      time.Time `json:"exp"`
	Iat      time.Time `json:"iat"`
	Email    string    `json:"email,omitempty"`
	Name     string    `json:"name,omitempty"`
	Nickname string    `json:"nickname,omitempty"`
	Picture  string    `json:"picture,omitempty"`
}

// VerifyOptions are the checks applied on top of the signature.
type VerifyOptions struct {
	Issuer   string
	Audience string
	// Skew tolerated on exp/iat/nbf
	Skew time.Duration
}

// ParseAndValidate parses a token, verifies its signature with keySet and
// validates the standard claims.
func ParseAndValidate(_ context.Context, tokenString string, keySet jwk.Set, opts VerifyOptions) (*IDTokenClaims, error) {
	parseOpts := []jwt.ParseOption{
		jwt.WithKeySet(keySet),
		jwt.WithValidate(true),
		jwt.WithAcceptableSkew(opts.Skew),
	}
	if opts.Issuer != "" {
		parseOpts = append(parseOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.Audience != "" {
		parseOpts = append(parseOpts, jwt.WithAudience(opts.Audience))
	}

	token, err := jwt.Parse([]byte(tokenString), parseOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse and verify JWT: %w", err)
	}
	return claimsFrom(token), nil
}

// ParseWithoutVerification extracts claims from a JWT without verification.
// Use it for display, or to find the issuer before fetching keys.
func ParseWithoutVerification(tokenString string) (*IDTokenClaims, error) {
	token, err := jwt.Parse([]byte(tokenString), jwt.WithVerify(false), jwt.WithValidate(false))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT: %w", err)
	}
	return claimsFrom(token), nil
}

// SubjectFromIDToken returns the unverified sub claim.
func SubjectFromIDToken(tokenString string) (string, error) {
	claims, err := ParseWithoutVerification(tokenString)
	if err != nil {
		return "", err
	}
	if claims.Sub == "" {
		return "", ErrMissingSubject
	}
	return claims.Sub, nil
}

// FetchJWKS fetches a key set
func FetchJWKS(ctx context.Context, jwksURL string) (jwk.Set, error) {
	set, err := jwk.Fetch(ctx, jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS from %s: %w", jwksURL, err)
	}
	return set, nil
}

// Verify fetches the key set at jwksURL and verifies the token with it.
func Verify(ctx context.Context, tokenString, jwksURL string, opts VerifyOptions) (*IDTokenClaims, error) {
	unverified, err := ParseWithoutVerification(tokenString)
	if err != nil {
		return nil, err
	}
	if unverified.Iss == "" {
		return nil, ErrMissingIssuer
	}

	keySet, err := FetchJWKS(ctx, jwksURL)
	if err != nil {
		return nil, err
	}
	return ParseAndValidate(ctx, tokenString, keySet, opts)
}

func claimsFrom(token jwt.Token) *IDTokenClaims {
	claims := &IDTokenClaims{
		Iss: token.Issuer(),
		Sub: token.Subject(),
		Aud: token.Audience(),
		Exp: token.Expiration(),
		Iat: token.IssuedAt(),
	}
	private := token.PrivateClaims()
	claims.Email = stringClaim(private, "email")
	claims.Name = stringClaim(private, "name")
	claims.Nickname = stringClaim(private, "nickname")
	claims.Picture = stringClaim(private, "picture")
	return claims
}

func stringClaim(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
