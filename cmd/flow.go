package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/jrschumacher/lockflow/internal/db"
	"github.com/jrschumacher/lockflow/internal/jwtutil"
	"github.com/jrschumacher/lockflow/internal/logger"
	"github.com/jrschumacher/lockflow/internal/store"
	"github.com/jrschumacher/lockflow/pkg/webauth"
)

// flowOptions are the per command differences in coordinator wiring.
type flowOptions struct {
	redirectURI string
	store       webauth.PendingStore
	callback    webauth.Callback
}

// newCoordinator builds a coordinator from the loaded configuration.
func newCoordinator(launcher webauth.Launcher, fo flowOptions) (*webauth.Coordinator, error) {
	provider, err := webauth.ParseProviderKind(cfg.ResponseType)
	if err != nil {
		return nil, err
	}
	nonceSource, err := webauth.ParseNonceSource(cfg.NonceSource)
	if err != nil {
		return nil, err
	}

	callback := fo.callback
	if callback == nil {
		callback = logCallback()
	}

	opts := []webauth.Option{
		webauth.WithLogger(logger.With("webauth")),
		webauth.WithParameters(map[string]string{webauth.KeyScope: cfg.Scope}),
	}
	if fo.store != nil {
		opts = append(opts, webauth.WithStore(fo.store))
	}
	if provider == webauth.ProviderPKCE {
		opts = append(opts, webauth.WithExchanger(&webauth.OAuth2Exchanger{
			ClientID: cfg.ClientID,
			TokenURL: cfg.TokenEndpoint(),
		}))
	}

	return webauth.NewCoordinator(webauth.Config{
		AuthorizeURL: cfg.AuthorizeEndpoint(),
		ClientID:     cfg.ClientID,
		Provider:     provider,
		NonceSource:  nonceSource,
		RedirectURI:  fo.redirectURI,
		Telemetry: &webauth.Telemetry{
			Name:    cfg.TelemetryName,
			Version: cfg.TelemetryVersion,
		},
	}, launcher, callback, opts...), nil
}

func logCallback() webauth.Callback {
	return webauth.CallbackFuncs{
		Success: func(s webauth.Success) {
			logger.Debug("Login succeeded", "token_type", s.TokenType)
		},
		Failure: func(title, message string, cause error) {
			logger.Warn(title, "message", message, "error", cause)
		},
	}
}

func openService(ctx context.Context) (*db.Service, error) {
	svc, err := db.NewService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}
	return svc, nil
}

// outcomeError turns a failed outcome into the message the user sees.
func outcomeError(o webauth.Outcome) error {
	if _, ok := o.(webauth.Ignored); ok {
		return errors.New("login was not completed")
	}
	title, message, cause, ok := webauth.DefaultMessages.ForOutcome(o)
	if !ok {
		return nil
	}
	return fmt.Errorf("%s: %s: %w", title, message, cause)
}

// saveOutcome stores the tokens of a successful outcome and writes them to w.
func saveOutcome(ctx context.Context, w io.Writer, svc *db.Service, connection string, o webauth.Outcome) error {
	s, ok := o.(webauth.Success)
	if !ok {
		return outcomeError(o)
	}

	var subject string
	if s.IDToken != "" {
		sub, err := jwtutil.SubjectFromIDToken(s.IDToken)
		if err != nil {
			logger.Warn("Could not read subject from id_token", "error", err)
		}
		subject = sub
	}

	creds, err := store.NewCredentialStore(svc).Save(ctx, connection, subject, s)
	if err != nil {
		return err
	}
	logger.Info("Login succeeded", "credentials", creds.ID, "connection", connection, "subject", subject)
	return printJSON(w, creds)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
