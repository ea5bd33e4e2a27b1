package webauth

import (
	"fmt"

	"golang.org/x/oauth2"
)

// ProviderKind is the closed set of web identity provider variants the
// coordinator knows how to drive. Both share the completion contract: one
// nonce, one terminal outcome.
type ProviderKind string

const (
	// ProviderImplicit requests tokens directly in the redirect.
	ProviderImplicit ProviderKind = "implicit"
	// ProviderPKCE requests an authorization code bound to a code verifier
	// and exchanges it after a successful redirect.
	ProviderPKCE ProviderKind = "pkce"
)

// ParseProviderKind converts a string to ProviderKind with validation
func ParseProviderKind(s string) (ProviderKind, error) {
	switch s {
	case string(ProviderImplicit), "", string(ResponseTypeToken):
		return ProviderImplicit, nil
	case string(ProviderPKCE), string(ResponseTypeCode):
		return ProviderPKCE, nil
	default:
		return "", fmt.Errorf("%w: %s (valid options: implicit, pkce)", ErrUnknownProvider, s)
	}
}

// ResponseType returns the response_type sent for this variant.
func (k ProviderKind) ResponseType() ResponseType {
	if k == ProviderPKCE {
		return ResponseTypeCode
	}
	return ResponseTypeToken
}

// prepare fills the variant specific parts of the pending flow and protocol
// parameters.
func (k ProviderKind) prepare(pending *PendingAuthorization, params *ProtocolParams) {
	params.ResponseType = k.ResponseType()
	if k != ProviderPKCE {
		return
	}
	pending.CodeVerifier = oauth2.GenerateVerifier()
	params.CodeChallenge = oauth2.S256ChallengeFromVerifier(pending.CodeVerifier)
}
