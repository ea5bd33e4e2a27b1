package webauth

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const (
	defaultTelemetryName    = "lockflow"
	defaultTelemetryVersion = "dev"
)

// Telemetry describes the client library to the identity provider. It is
// sent as the auth0Client parameter.
type Telemetry struct {
	Name           string
	Version        string
	LibraryVersion string
	Extra          map[string]any
}

// Encode returns the base64url encoded JSON client info. Extra keys are
// merged last and may replace the standard ones.
func (t Telemetry) Encode() (string, error) {
	info := map[string]any{
		"name":    valueOr(t.Name, defaultTelemetryName),
		"version": valueOr(t.Version, defaultTelemetryVersion),
	}
	if t.LibraryVersion != "" {
		info["lib_version"] = t.LibraryVersion
	}
	for k, v := range t.Extra {
		info[k] = v
	}
	data, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to encode client info: %w", err)
	}
	return base64.URLEncoding.EncodeToString(data), nil
}

// DecodeTelemetry reverses Encode into a generic map.
func DecodeTelemetry(encoded string) (map[string]any, error) {
	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode client info: %w", err)
	}
	info := map[string]any{}
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("failed to decode client info: %w", err)
	}
	return info, nil
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
