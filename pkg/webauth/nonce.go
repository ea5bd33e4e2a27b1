package webauth

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// NonceSource selects how state nonces are generated.
type NonceSource string

const (
	NonceUUID  NonceSource = "uuid"
	NonceKSUID NonceSource = "ksuid"
)

// Generate returns a fresh nonce. The zero value generates UUIDs.
func (s NonceSource) Generate() (string, error) {
	switch s {
	case NonceUUID, "":
		id, err := uuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("failed to generate nonce: %w", err)
		}
		return id.String(), nil
	case NonceKSUID:
		id, err := ksuid.NewRandom()
		if err != nil {
			return "", fmt.Errorf("failed to generate nonce: %w", err)
		}
		return id.String(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownNonceSource, s)
	}
}

// ParseNonceSource converts a configuration string to a NonceSource.
func ParseNonceSource(s string) (NonceSource, error) {
	switch s {
	case string(NonceUUID), "":
		return NonceUUID, nil
	case string(NonceKSUID):
		return NonceKSUID, nil
	default:
		return "", fmt.Errorf("%w: %s (valid options: uuid, ksuid)", ErrUnknownNonceSource, s)
	}
}
