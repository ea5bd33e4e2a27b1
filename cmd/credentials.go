package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/jrschumacher/lockflow/internal/store"
	"github.com/spf13/cobra"
)

var credentialsCmd = &cobra.Command{
	Use:     "credentials",
	Aliases: []string{"creds"},
	Short:   "Manage stored login results",
}

var listLimit int

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credentials, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		creds, err := store.NewCredentialStore(svc).List(cmd.Context(), listLimit)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCONNECTION\tSUBJECT\tCREATED")
		for _, c := range creds {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.Connection, c.Subject, c.CreatedAt.Local().Format(time.RFC3339))
		}
		return tw.Flush()
	},
}

var credentialsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print stored credentials as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		c, err := store.NewCredentialStore(svc).Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), c)
	},
}

var credentialsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete stored credentials",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService(cmd.Context())
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := store.NewCredentialStore(svc).Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Deleted", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(credentialsCmd)
	credentialsCmd.AddCommand(credentialsListCmd, credentialsShowCmd, credentialsDeleteCmd)
	credentialsListCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "maximum number of entries (default 50)")
}
