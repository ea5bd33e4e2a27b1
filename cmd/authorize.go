package cmd

import (
	"context"
	"fmt"

	"github.com/jrschumacher/lockflow/internal/logger"
	"github.com/jrschumacher/lockflow/internal/store"
	"github.com/jrschumacher/lockflow/internal/validation"
	"github.com/jrschumacher/lockflow/pkg/webauth"
	"github.com/spf13/cobra"
)

var authorizeFlags struct {
	params      []string
	username    string
	redirectURI string
}

var authorizeURLCmd = &cobra.Command{
	Use:   "authorize-url [connection]",
	Short: "Start a flow and print its authorize URL",
	Long: `Start a flow and print its authorize URL without opening a browser.
The pending flow is stored in the database so "lockflow callback" or
"lockflow serve" can complete it later.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		connection := cfg.Connection
		if len(args) == 1 {
			connection = args[0]
		}
		lv := validation.LoginValidation{
			Connection:  connection,
			Username:    authorizeFlags.username,
			RedirectURI: authorizeFlags.redirectURI,
		}
		if err := lv.Validate(); err != nil {
			return err
		}
		params, err := validation.ParseParameters(authorizeFlags.params)
		if err != nil {
			return err
		}

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		out := cmd.OutOrStdout()
		printer := webauth.LauncherFunc(func(_ context.Context, req webauth.LaunchRequest) error {
			_, err := fmt.Fprintln(out, req.URI.String())
			return err
		})
		coordinator, err := newCoordinator(printer, flowOptions{
			redirectURI: authorizeFlags.redirectURI,
			store:       store.NewPendingStore(svc),
		})
		if err != nil {
			return err
		}
		handle, err := coordinator.Start(cmd.Context(), connection, webauth.StartOptions{
			Parameters: params,
			Username:   authorizeFlags.username,
		})
		if err != nil {
			return err
		}
		logger.Debug("Flow pending", "correlation_token", handle.CorrelationToken, "connection", handle.Connection)
		return nil
	},
}

var callbackFlags struct {
	canceled bool
	token    string
}

var callbackCmd = &cobra.Command{
	Use:   "callback <redirect-uri>",
	Short: "Complete the pending flow with the URI the browser was redirected to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uri := webauth.RedirectURL(args[0])

		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		coordinator, err := newCoordinator(webauth.PrintLauncher{W: cmd.ErrOrStderr()}, flowOptions{
			store: store.NewPendingStore(svc),
		})
		if err != nil {
			return err
		}

		token := callbackFlags.token
		if token == "" {
			token = coordinator.CorrelationToken()
		}
		result := webauth.ResultOK
		if callbackFlags.canceled {
			result = webauth.ResultCanceled
		}

		pending, _ := coordinator.Pending(cmd.Context())
		outcome, handled := coordinator.Complete(cmd.Context(), token, result, uri)
		if !handled {
			return fmt.Errorf("redirect not handled: correlation token %q does not match", token)
		}
		return saveOutcome(cmd.Context(), cmd.OutOrStdout(), svc, pending.Connection, outcome)
	},
}

func init() {
	rootCmd.AddCommand(authorizeURLCmd, callbackCmd)
	authorizeURLCmd.Flags().StringArrayVarP(&authorizeFlags.params, "param", "p", nil, "extra authorize parameter as key=value (repeatable)")
	authorizeURLCmd.Flags().StringVarP(&authorizeFlags.username, "username", "u", "", "username to pre-fill as login_hint")
	authorizeURLCmd.Flags().StringVar(&authorizeFlags.redirectURI, "redirect-uri", "", "redirect URI to use instead of a0{client_id}://{domain}/authorize")

	callbackCmd.Flags().BoolVar(&callbackFlags.canceled, "canceled", false, "report that the user closed the browser")
	callbackCmd.Flags().StringVar(&callbackFlags.token, "token", "", "correlation token of the flow (defaults to this client's)")
}
