package config

import (
	"strings"
	"testing"
	"time"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	require.NoError(t, defaults.Set(cfg))
	cfg.Domain = "tenant.auth0.com"
	cfg.ClientID = "MyClient"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}
	require.NoError(t, defaults.Set(cfg))

	assert.Equal(t, EnvDev, cfg.AppEnv)
	assert.Equal(t, "token", cfg.ResponseType)
	assert.Equal(t, "openid", cfg.Scope)
	assert.Equal(t, "uuid", cfg.NonceSource)
	assert.Equal(t, "127.0.0.1:8765", cfg.CallbackAddr)
	assert.Equal(t, "/callback", cfg.CallbackPath)
	assert.Equal(t, 5*time.Minute, cfg.LoginTimeout)
	assert.Equal(t, "lockflow.db", cfg.DatabaseURL)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.True(t, cfg.IsDev())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "authorize url instead of domain", mutate: func(c *Config) {
			c.Domain = ""
			c.AuthorizeURL = "https://idp.example.com/oauth2/authorize"
		}},
		{name: "missing client id", mutate: func(c *Config) { c.ClientID = "" }, wantErr: "ClientID"},
		{name: "missing domain and authorize url", mutate: func(c *Config) { c.Domain = "" }, wantErr: "Domain"},
		{name: "bad authorize url", mutate: func(c *Config) { c.AuthorizeURL = "not a url" }, wantErr: "AuthorizeURL"},
		{name: "bad response type", mutate: func(c *Config) { c.ResponseType = "id_token" }, wantErr: "ResponseType"},
		{name: "bad nonce source", mutate: func(c *Config) { c.NonceSource = "counter" }, wantErr: "NonceSource"},
		{name: "bad callback path", mutate: func(c *Config) { c.CallbackPath = "callback" }, wantErr: "CallbackPath"},
		{name: "bad callback addr", mutate: func(c *Config) { c.CallbackAddr = "localhost" }, wantErr: "CallbackAddr"},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "TRACE" }, wantErr: "LogLevel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestEndpoints(t *testing.T) {
	cfg := validConfig(t)
	assert.Equal(t, "https://tenant.auth0.com/authorize", cfg.AuthorizeEndpoint())
	assert.Equal(t, "https://tenant.auth0.com/oauth/token", cfg.TokenEndpoint())
	assert.Equal(t, "https://tenant.auth0.com/.well-known/jwks.json", cfg.JWKSEndpoint())
	assert.Equal(t, "https://tenant.auth0.com/", cfg.Issuer())
	assert.Equal(t, "http://127.0.0.1:8765/callback", cfg.CallbackURL())

	cfg.Domain = "http://localhost:3000/"
	assert.Equal(t, "http://localhost:3000/authorize", cfg.AuthorizeEndpoint())

	cfg.AuthorizeURL = "https://idp.example.com/auth"
	cfg.TokenURL = "https://idp.example.com/token"
	cfg.JWKSURL = "https://idp.example.com/keys"
	assert.Equal(t, "https://idp.example.com/auth", cfg.AuthorizeEndpoint())
	assert.Equal(t, "https://idp.example.com/token", cfg.TokenEndpoint())
	assert.Equal(t, "https://idp.example.com/keys", cfg.JWKSEndpoint())

	cfg.Domain = ""
	cfg.AuthorizeURL = ""
	assert.Equal(t, "", cfg.AuthorizeEndpoint())
}

func TestStringRedactsSecrets(t *testing.T) {
	cfg := validConfig(t)
	cfg.DatabaseURL = "postgres://user:hunter2@db/lockflow"

	s := cfg.String()
	assert.True(t, strings.HasPrefix(s, "Config{"))
	assert.Contains(t, s, "ClientID: MyClient")
	assert.Contains(t, s, "DatabaseURL: ***REDACTED***")
	assert.NotContains(t, s, "hunter2")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LOCKFLOW_CLIENT_ID", "EnvClient")
	t.Setenv("LOCKFLOW_DOMAIN", "env.auth0.com")
	t.Setenv("LOCKFLOW_LOGIN_TIMEOUT", "30s")
	t.Setenv("LOCKFLOW_NONCE_SOURCE", "ksuid")

	cfg := Load()
	assert.Equal(t, "EnvClient", cfg.ClientID)
	assert.Equal(t, "env.auth0.com", cfg.Domain)
	assert.Equal(t, 30*time.Second, cfg.LoginTimeout)
	assert.Equal(t, "ksuid", cfg.NonceSource)
	assert.Equal(t, "/callback", cfg.CallbackPath)
	assert.NoError(t, Validate(cfg))
}
