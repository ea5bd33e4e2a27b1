package webauth

import (
	"fmt"
	"net/url"
	"strings"
)

// Authorize request and redirect keys
const (
	KeyScope               = "scope"
	KeyResponseType        = "response_type"
	KeyState               = "state"
	KeyConnection          = "connection"
	KeyClientID            = "client_id"
	KeyRedirectURI         = "redirect_uri"
	KeyCodeChallenge       = "code_challenge"
	KeyCodeChallengeMethod = "code_challenge_method"
	KeyLoginHint           = "login_hint"
	KeyClientInfo          = "auth0Client"

	KeyError        = "error"
	KeyCode         = "code"
	KeyIDToken      = "id_token"
	KeyAccessToken  = "access_token"
	KeyTokenType    = "token_type"
	KeyRefreshToken = "refresh_token"
)

const (
	// DefaultScope is sent when the caller does not choose a scope.
	DefaultScope = "openid"

	codeChallengeMethodS256 = "S256"
	redirectURIFormat       = "a0%s://%s/authorize"
)

// ResponseType selects between the implicit and the authorization code grant.
type ResponseType string

const (
	ResponseTypeToken ResponseType = "token"
	ResponseTypeCode  ResponseType = "code"
)

// ProtocolParams are the parameters owned by the flow. They are applied after
// the caller's extra parameters and always replace them.
type ProtocolParams struct {
	ResponseType ResponseType
	State        string
	Connection   string
	ClientID     string
	RedirectURI  string

	// CodeChallenge is only set by the PKCE provider.
	CodeChallenge string
}

// AuthorizationRequest describes a single authorize URI.
type AuthorizationRequest struct {
	AuthorizeEndpoint string
	Protocol          ProtocolParams
	Extra             map[string]string
}

// Build composes the authorize URI. It performs no I/O.
func (r AuthorizationRequest) Build() (*url.URL, error) {
	endpoint, err := ParseAuthorizeEndpoint(r.AuthorizeEndpoint)
	if err != nil {
		return nil, err
	}
	if r.Protocol.ClientID == "" {
		return nil, &ConfigurationError{Field: KeyClientID, Err: ErrMissingClientID}
	}

	query := endpoint.Query()
	for k, v := range r.Extra {
		query.Set(k, v)
	}
	if !query.Has(KeyScope) {
		query.Set(KeyScope, DefaultScope)
	}

	p := r.Protocol
	query.Set(KeyResponseType, string(p.ResponseType))
	query.Set(KeyState, p.State)
	if p.Connection != "" {
		query.Set(KeyConnection, p.Connection)
	} else {
		query.Del(KeyConnection)
	}
	query.Set(KeyClientID, p.ClientID)
	query.Set(KeyRedirectURI, p.RedirectURI)

	if p.CodeChallenge != "" {
		query.Set(KeyCodeChallenge, p.CodeChallenge)
		query.Set(KeyCodeChallengeMethod, codeChallengeMethodS256)
	} else {
		query.Del(KeyCodeChallenge)
		query.Del(KeyCodeChallengeMethod)
	}

	endpoint.RawQuery = query.Encode()
	return endpoint, nil
}

// ParseAuthorizeEndpoint checks that the authorize endpoint is an absolute URI.
func ParseAuthorizeEndpoint(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ConfigurationError{Field: "authorize_url", Err: ErrInvalidAuthorizeURL}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ConfigurationError{Field: "authorize_url", Err: fmt.Errorf("%w: %v", ErrInvalidAuthorizeURL, err)}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &ConfigurationError{Field: "authorize_url", Err: ErrInvalidAuthorizeURL}
	}
	return u, nil
}

// RedirectURI returns the custom scheme redirect bound to the client:
// a0{clientId lowercased}://{authorize host}/authorize.
func RedirectURI(clientID, authorizeEndpoint string) (string, error) {
	endpoint, err := ParseAuthorizeEndpoint(authorizeEndpoint)
	if err != nil {
		return "", err
	}
	if clientID == "" {
		return "", &ConfigurationError{Field: KeyClientID, Err: ErrMissingClientID}
	}
	return fmt.Sprintf(redirectURIFormat, strings.ToLower(clientID), endpoint.Hostname()), nil
}

// LoginHint derives a login_hint from a username, keeping the part before '@'.
func LoginHint(username string) string {
	if i := strings.Index(username, "@"); i >= 0 {
		return username[:i]
	}
	return username
}
