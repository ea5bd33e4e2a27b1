// Package server runs the loopback receiver that catches the identity
// provider's redirect and completes the pending flow.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/jrschumacher/lockflow/internal/config"
	"github.com/jrschumacher/lockflow/internal/logger"
	"github.com/jrschumacher/lockflow/internal/middleware"
	"github.com/jrschumacher/lockflow/pkg/webauth"
	callback "github.com/jrschumacher/lockflow/server/callback-handlers"
	health "github.com/jrschumacher/lockflow/server/health-handlers"
)

const shutdownTimeout = 5 * time.Second

// Receiver serves the redirect URI on the loopback interface.
type Receiver struct {
	cfg      *config.Config
	handler  http.Handler
	outcomes chan webauth.Outcome
	listener net.Listener
}

// NewReceiver builds the routes. Outcomes handled by completer are published
// on Outcomes.
func NewReceiver(cfg *config.Config, completer callback.Completer) *Receiver {
	r := &Receiver{
		cfg:      cfg,
		outcomes: make(chan webauth.Outcome, 1),
	}

	mux := http.NewServeMux()
	health.RegisterRoutes(mux, "", cfg)
	callback.RegisterRoutes(mux, cfg.CallbackPath, cfg, completer, r.publish)

	log := logger.With("receiver")
	r.handler = middleware.NewChain(
		middleware.Recoverer(log),
		middleware.RequestLogger(log),
	).Then(mux)
	return r
}

// Handler returns the receiver's routes.
func (r *Receiver) Handler() http.Handler {
	return r.handler
}

// Outcomes delivers the outcome of each handled redirect.
func (r *Receiver) Outcomes() <-chan webauth.Outcome {
	return r.outcomes
}

func (r *Receiver) publish(o webauth.Outcome) {
	select {
	case r.outcomes <- o:
	default:
		logger.Warn("Dropping flow outcome, nobody is waiting", "kind", o.Kind().String())
	}
}

// Listen binds the callback address. It is separate from Serve so the browser
// is only launched once the redirect can be received.
func (r *Receiver) Listen() error {
	ln, err := net.Listen("tcp", r.cfg.CallbackAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", r.cfg.CallbackAddr, err)
	}
	r.listener = ln
	return nil
}

// Addr returns the bound address, useful when listening on port 0.
func (r *Receiver) Addr() string {
	if r.listener == nil {
		return r.cfg.CallbackAddr
	}
	return r.listener.Addr().String()
}

// Serve runs until ctx is canceled, then shuts the server down.
func (r *Receiver) Serve(ctx context.Context) error {
	if r.listener == nil {
		if err := r.Listen(); err != nil {
			return err
		}
	}
	srv := &http.Server{
		Handler:           r.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Debug("Callback receiver listening", "addr", r.Addr(), "path", r.cfg.CallbackPath)
		errCh <- srv.Serve(r.listener)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down receiver: %w", err)
		}
		return nil
	}
}
