package cmd

import (
	"context"
	"io"
	"net/url"

	"github.com/jrschumacher/lockflow/internal/db"
	"github.com/jrschumacher/lockflow/internal/logger"
	"github.com/jrschumacher/lockflow/internal/store"
	"github.com/jrschumacher/lockflow/pkg/webauth"
	"github.com/jrschumacher/lockflow/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"server"},
	Short:   "Run the callback receiver for flows started with authorize-url",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		svc, err := openService(ctx)
		if err != nil {
			return err
		}
		defer svc.Close()

		coordinator, err := newCoordinator(webauth.PrintLauncher{W: cmd.ErrOrStderr()}, flowOptions{
			redirectURI: cfg.CallbackURL(),
			store:       store.NewPendingStore(svc),
		})
		if err != nil {
			return err
		}

		receiver := server.NewReceiver(cfg, &savingCompleter{
			Coordinator: coordinator,
			svc:         svc,
			out:         cmd.OutOrStdout(),
		})
		if err := receiver.Listen(); err != nil {
			return err
		}
		logger.Info("Callback receiver started", "redirect_uri", cfg.CallbackURL())

		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case o := <-receiver.Outcomes():
					logger.Debug("Flow completed", "outcome", o.Kind().String())
				}
			}
		}()

		return receiver.Serve(ctx)
	},
}

// savingCompleter stores the tokens of every flow it completes.
type savingCompleter struct {
	*webauth.Coordinator
	svc *db.Service
	out io.Writer
}

func (s *savingCompleter) Complete(ctx context.Context, token string, result webauth.ResultCode, uri *url.URL) (webauth.Outcome, bool) {
	// The pending flow is gone once completed.
	pending, _ := s.Coordinator.Pending(ctx)
	outcome, handled := s.Coordinator.Complete(ctx, token, result, uri)
	if !handled {
		return outcome, false
	}
	if err := saveOutcome(ctx, s.out, s.svc, pending.Connection, outcome); err != nil {
		logger.Warn("Flow failed", "outcome", outcome.Kind().String(), "error", err)
	}
	return outcome, true
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
