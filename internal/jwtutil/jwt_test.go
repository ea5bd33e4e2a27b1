package jwtutil

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://tenant.auth0.com/"

func newSigningKey(t *testing.T) (jwk.Key, jwk.Set) {
	t.Helper()
	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	key, err := jwk.FromRaw(raw)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.RS256))

	pub, err := key.PublicKey()
	require.NoError(t, err)
	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))
	return key, set
}

func signIDToken(t *testing.T, key jwk.Key, exp time.Time) string {
	t.Helper()
	tok, err := jwt.NewBuilder().
		Issuer(testIssuer).
		Subject("github|42").
		Audience([]string{"MyClient"}).
		IssuedAt(time.Now().Add(-time.Minute)).
		Expiration(exp).
		Claim("email", "jane@example.com").
		Claim("nickname", "jane").
		Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.RS256, key))
	require.NoError(t, err)
	return string(signed)
}

func TestParseWithoutVerification(t *testing.T) {
	key, _ := newSigningKey(t)
	token := signIDToken(t, key, time.Now().Add(-time.Hour))

	claims, err := ParseWithoutVerification(token)
	require.NoError(t, err)
	assert.Equal(t, testIssuer, claims.Iss)
	assert.Equal(t, "github|42", claims.Sub)
	assert.Equal(t, []string{"MyClient"}, claims.Aud)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, "jane", claims.Nickname)
	assert.Empty(t, claims.Name)

	sub, err := SubjectFromIDToken(token)
	require.NoError(t, err)
	assert.Equal(t, "github|42", sub)
}

func TestParseWithoutVerification_InvalidToken(t *testing.T) {
	_, err := ParseWithoutVerification("invalid.jwt.token")
	assert.Error(t, err)

	_, err = SubjectFromIDToken("invalid.jwt.token")
	assert.Error(t, err)
}

func TestParseAndValidate(t *testing.T) {
	key, set := newSigningKey(t)
	ctx := context.Background()

	valid := signIDToken(t, key, time.Now().Add(time.Hour))
	claims, err := ParseAndValidate(ctx, valid, set, VerifyOptions{Issuer: testIssuer, Audience: "MyClient"})
	require.NoError(t, err)
	assert.Equal(t, "github|42", claims.Sub)

	_, err = ParseAndValidate(ctx, valid, set, VerifyOptions{Audience: "OtherClient"})
	assert.Error(t, err)

	_, err = ParseAndValidate(ctx, valid, set, VerifyOptions{Issuer: "https://other.auth0.com/"})
	assert.Error(t, err)

	expired := signIDToken(t, key, time.Now().Add(-time.Hour))
	_, err = ParseAndValidate(ctx, expired, set, VerifyOptions{})
	assert.Error(t, err)

	_, otherSet := newSigningKey(t)
	_, err = ParseAndValidate(ctx, valid, otherSet, VerifyOptions{})
	assert.Error(t, err)
}

func TestVerify_FetchesJWKS(t *testing.T) {
	key, set := newSigningKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(set)
	}))
	defer srv.Close()

	token := signIDToken(t, key, time.Now().Add(time.Hour))
	claims, err := Verify(context.Background(), token, srv.URL+"/.well-known/jwks.json", VerifyOptions{Issuer: testIssuer})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
}

func TestVerify_InvalidToken(t *testing.T) {
	_, err := Verify(context.Background(), "invalid.jwt.token", "http://127.0.0.1:0/jwks.json", VerifyOptions{})
	assert.Error(t, err)
}
