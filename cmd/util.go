package cmd

import (
	"errors"
	"fmt"

	"github.com/jrschumacher/lockflow/internal/jwtutil"
	"github.com/jrschumacher/lockflow/pkg/webauth"
	"github.com/spf13/cobra"
)

var utilCmd = &cobra.Command{
	Use:     "util",
	Aliases: []string{"utils"},
	Short:   "Utility commands for lockflow",
	// Utilities work without a configured client.
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error { return nil },
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

var nonceSource string

var utilNonceCmd = &cobra.Command{
	Use:   "nonce",
	Short: "Generate a state value the way flows do",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		src, err := webauth.ParseNonceSource(nonceSource)
		if err != nil {
			return err
		}
		n, err := src.Generate()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var verifyToken bool

var utilDecodeTokenCmd = &cobra.Command{
	Use:   "decode-token <id_token>",
	Short: "Print the claims of an ID token",
	Long: `Print the claims of an ID token. With --verify the signature is checked
against the tenant's JWKS and the issuer and audience must match the
configured domain and client id.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !verifyToken {
			claims, err := jwtutil.ParseWithoutVerification(args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), claims)
		}

		if cfg.JWKSEndpoint() == "" {
			return errors.New("--verify needs LOCKFLOW_DOMAIN or LOCKFLOW_JWKS_URL")
		}
		claims, err := jwtutil.Verify(cmd.Context(), args[0], cfg.JWKSEndpoint(), jwtutil.VerifyOptions{
			Issuer:   cfg.Issuer(),
			Audience: cfg.ClientID,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), claims)
	},
}

var utilTelemetryCmd = &cobra.Command{
	Use:   "decode-telemetry <auth0Client>",
	Short: "Decode an auth0Client telemetry value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := webauth.DecodeTelemetry(args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), info)
	},
}

func init() {
	rootCmd.AddCommand(utilCmd)
	utilCmd.AddCommand(utilNonceCmd, utilDecodeTokenCmd, utilTelemetryCmd)
	utilNonceCmd.Flags().StringVar(&nonceSource, "source", string(webauth.NonceUUID), "nonce source: uuid or ksuid")
	utilDecodeTokenCmd.Flags().BoolVar(&verifyToken, "verify", false, "verify signature, issuer and audience")
}
