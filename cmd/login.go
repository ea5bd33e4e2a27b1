package cmd

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jrschumacher/lockflow/internal/logger"
	"github.com/jrschumacher/lockflow/internal/validation"
	"github.com/jrschumacher/lockflow/pkg/webauth"
	"github.com/jrschumacher/lockflow/server"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var loginFlags struct {
	params    []string
	username  string
	pkce      bool
	noBrowser bool
}

var loginCmd = &cobra.Command{
	Use:   "login [connection]",
	Short: "Sign in through the browser and store the resulting tokens",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		connection := cfg.Connection
		if len(args) == 1 {
			connection = args[0]
		}
		if loginFlags.pkce {
			cfg.ResponseType = string(webauth.ProviderPKCE)
		}
		return runLogin(cmd, connection)
	},
}

func runLogin(cmd *cobra.Command, connection string) error {
	lv := validation.LoginValidation{Connection: connection, Username: loginFlags.username}
	if err := lv.Validate(); err != nil {
		return err
	}
	params, err := validation.ParseParameters(loginFlags.params)
	if err != nil {
		return err
	}

	var launcher webauth.Launcher = webauth.SystemBrowser{}
	if loginFlags.noBrowser {
		launcher = webauth.PrintLauncher{W: cmd.ErrOrStderr()}
	}

	coordinator, err := newCoordinator(launcher, flowOptions{redirectURI: cfg.CallbackURL()})
	if err != nil {
		return err
	}
	receiver := server.NewReceiver(cfg, coordinator)
	if err := receiver.Listen(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LoginTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	serveCtx, stopServe := context.WithCancel(gctx)
	defer stopServe()

	g.Go(func() error { return receiver.Serve(serveCtx) })

	handle, err := coordinator.Start(gctx, connection, webauth.StartOptions{
		Parameters: params,
		Username:   loginFlags.username,
	})
	if err != nil {
		stopServe()
		_ = g.Wait()
		return err
	}
	logger.Debug("Waiting for the browser to return", "redirect_uri", cfg.CallbackURL(), "connection", handle.Connection)

	var outcome webauth.Outcome
	g.Go(func() error {
		defer stopServe()
		select {
		case outcome = <-receiver.Outcomes():
			return nil
		case <-gctx.Done():
			coordinator.Complete(context.Background(), handle.CorrelationToken, webauth.ResultCanceled, &url.URL{})
			return fmt.Errorf("login did not complete: %w", gctx.Err())
		}
	})
	if err := g.Wait(); err != nil {
		return err
	}

	svc, err := openService(cmd.Context())
	if err != nil {
		return err
	}
	defer svc.Close()
	return saveOutcome(cmd.Context(), cmd.OutOrStdout(), svc, connection, outcome)
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringArrayVarP(&loginFlags.params, "param", "p", nil, "extra authorize parameter as key=value (repeatable)")
	loginCmd.Flags().StringVarP(&loginFlags.username, "username", "u", "", "username to pre-fill as login_hint")
	loginCmd.Flags().BoolVar(&loginFlags.pkce, "pkce", false, "use the authorization code flow with PKCE")
	loginCmd.Flags().BoolVar(&loginFlags.noBrowser, "no-browser", false, "print the URL instead of opening a browser")
}
