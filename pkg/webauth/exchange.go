package webauth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// CodeExchanger turns the authorization code of a PKCE redirect into tokens.
type CodeExchanger interface {
	Exchange(ctx context.Context, code string, pending PendingAuthorization) (Success, error)
}

// OAuth2Exchanger exchanges codes at a token endpoint as a public client.
type OAuth2Exchanger struct {
	ClientID   string
	TokenURL   string
	HTTPClient *http.Client
}

// Exchange code for token
func (e *OAuth2Exchanger) Exchange(ctx context.Context, code string, pending PendingAuthorization) (Success, error) {
	if e.HTTPClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.HTTPClient)
	}
	tok, err := e.oauth2Config(pending.RedirectURI).Exchange(ctx, code, oauth2.VerifierOption(pending.CodeVerifier))
	if err != nil {
		return Success{}, &ExchangeError{Err: err}
	}
	s := Success{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	if idToken, ok := tok.Extra(KeyIDToken).(string); ok {
		s.IDToken = idToken
	}
	return s, nil
}

func (e *OAuth2Exchanger) oauth2Config(redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     e.ClientID,
		ClientSecret: "", // Not required for public clients
		RedirectURL:  redirectURI,
		Endpoint: oauth2.Endpoint{
			TokenURL:  e.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// TokenURLFor derives the token endpoint that sits next to an authorize
// endpoint on the same host.
func TokenURLFor(authorizeEndpoint string) (string, error) {
	u, err := ParseAuthorizeEndpoint(authorizeEndpoint)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s://%s/oauth/token", u.Scheme, u.Host), nil
}
