package config

import (
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/jrschumacher/lockflow/internal/logger"
	"github.com/spf13/viper"
)

const (
	EnvProd = "production"
	EnvDev  = "development"
	EnvTest = "test"
)

const envPrefix = "lockflow"

// Config holds application configuration loaded from environment variables or config file.
type Config struct {
	AppEnv string `mapstructure:"app_env" default:"development" validate:"required,oneof=production development test"`

	// Identity provider
	Domain       string `mapstructure:"domain" validate:"required_without=AuthorizeURL"`
	AuthorizeURL string `mapstructure:"authorize_url" validate:"omitempty,url"`
	TokenURL     string `mapstructure:"token_url" validate:"omitempty,url"`
	JWKSURL      string `mapstructure:"jwks_url" validate:"omitempty,url"`
	ClientID     string `mapstructure:"client_id" validate:"required"`

	// Flow
	Connection   string `mapstructure:"connection"`
	ResponseType string `mapstructure:"response_type" default:"token" validate:"oneof=token code implicit pkce"`
	Scope        string `mapstructure:"scope" default:"openid"`
	NonceSource  string `mapstructure:"nonce_source" default:"uuid" validate:"oneof=uuid ksuid"`

	// Loopback receiver
	CallbackAddr string        `mapstructure:"callback_addr" default:"127.0.0.1:8765" validate:"required,hostname_port"`
	CallbackPath string        `mapstructure:"callback_path" default:"/callback" validate:"required,startswith=/"`
	LoginTimeout time.Duration `mapstructure:"login_timeout" default:"5m" validate:"gt=0"`

	// Storage
	DatabaseURL string `secret:"true" mapstructure:"database_url" default:"lockflow.db"`

	// Telemetry sent as auth0Client
	TelemetryName    string `mapstructure:"telemetry_name" default:"lockflow"`
	TelemetryVersion string `mapstructure:"telemetry_version" default:"dev"`

	// Logging
	LogLevel  string `mapstructure:"log_level" default:"INFO" validate:"oneof=DEBUG INFO WARN ERROR"`
	LogFormat string `mapstructure:"log_format" default:"text" validate:"oneof=text json"`
}

// Load loads configuration from .env, config file and environment variables
// using viper. Environment variables are prefixed with LOCKFLOW_.
func Load() *Config {
	cfg := Config{}

	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	}

	// Initialize viper
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__", "-", "__"))

	// Set defaults for the config struct
	if err := defaults.Set(&cfg); err != nil {
		panic("failed to set struct defaults: " + err.Error())
	}

	// Bind env vars for each field
	typeOfCfg := reflect.TypeOf(cfg)
	for i := 0; i < typeOfCfg.NumField(); i++ {
		field := typeOfCfg.Field(i)
		key := field.Tag.Get("mapstructure")
		if key == "" {
			key = toSnakeCase(field.Name)
		}
		_ = v.BindEnv(key)
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			logger.Error("Error read config file", "error", err)
		}
		logger.Debug("No config file found, using environment variables")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		logger.Warn("Could not unmarshal config", "error", err)
	}

	logger.Debug("Loaded config", "config", cfg.String())

	return &cfg
}

func Validate(cfg *Config) error {
	validate := validator.New()
	return validate.Struct(cfg)
}

// IsDev reports whether the application runs in development mode.
func (c *Config) IsDev() bool {
	return c.AppEnv == EnvDev
}

// AuthorizeEndpoint returns authorize_url, or the tenant's /authorize
// endpoint derived from domain.
func (c *Config) AuthorizeEndpoint() string {
	if c.AuthorizeURL != "" {
		return c.AuthorizeURL
	}
	return c.domainURL("/authorize")
}

// TokenEndpoint returns token_url, or the tenant's /oauth/token endpoint.
func (c *Config) TokenEndpoint() string {
	if c.TokenURL != "" {
		return c.TokenURL
	}
	return c.domainURL("/oauth/token")
}

// JWKSEndpoint returns jwks_url, or the tenant's well-known key set.
func (c *Config) JWKSEndpoint() string {
	if c.JWKSURL != "" {
		return c.JWKSURL
	}
	return c.domainURL("/.well-known/jwks.json")
}

// Issuer is the expected iss claim of ID tokens issued by the tenant.
func (c *Config) Issuer() string {
	return c.domainURL("/")
}

// CallbackURL is the loopback redirect URI served by the login command.
func (c *Config) CallbackURL() string {
	return "http://" + c.CallbackAddr + c.CallbackPath
}

func (c *Config) domainURL(path string) string {
	if c.Domain == "" {
		return ""
	}
	domain := strings.TrimSuffix(c.Domain, "/")
	if !strings.HasPrefix(domain, "http://") && !strings.HasPrefix(domain, "https://") {
		domain = "https://" + domain
	}
	return domain + path
}

// String returns a string representation of the config with secret fields redacted.
func (c *Config) String() string {
	v := reflect.ValueOf(*c)
	t := reflect.TypeOf(*c)
	var sb strings.Builder
	sb.WriteString("Config{")
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := field.Name
		value := v.Field(i).Interface()
		if field.Tag.Get("secret") == "true" {
			value = "***REDACTED***"
		}
		sb.WriteString(name + ": " + toString(value))
		if i < t.NumField()-1 {
			sb.WriteString(", ")
		}
	}
	sb.WriteString("}")
	return sb.String()
}

// toString converts interface{} to string for String
func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// toSnakeCase converts CamelCase to snake_case
func toSnakeCase(str string) string {
	runes := []rune(str)
	var out []rune
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				out = append(out, '_')
			}
		}
		out = append(out, unicode.ToLower(r))
	}
	return string(out)
}
