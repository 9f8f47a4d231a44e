package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pinecrest/jamfctl/internal/ui"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check or revoke API credentials",
}

var authCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Log in, confirm the token is accepted, then revoke it",
	Args:  cobra.NoArgs,
	RunE:  runAuthCheck,
}

var authInvalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Revoke the configured API token",
	Long: `Revoke the bearer token given by credentials.api_token or JAMF_API_TOKEN.
Without a configured token this logs in and revokes the new token, which is
only useful to confirm that invalidation works.`,
	Args: cobra.NoArgs,
	RunE: runAuthInvalidate,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authCheckCmd, authInvalidateCmd)
}

func runAuthCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	sess, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	ok, err := sess.Validate(ctx)
	if err != nil {
		reportError(err)
		return err
	}
	if !ok {
		ui.PrintError("Token rejected", "the server did not accept the new token", "check that the account has API privileges")
		return fmt.Errorf("token rejected by %s", cfg.Server.URL)
	}

	ui.Success(fmt.Sprintf("Authenticated to %s", cfg.Server.URL))
	if exp := sess.Expires(); !exp.IsZero() {
		fmt.Printf("  token valid until %s (%s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Second))
	} else {
		fmt.Println("  " + ui.Hint("the server did not report a token expiry"))
	}
	return nil
}

func runAuthInvalidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	sess, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	if err := sess.Invalidate(ctx); err != nil {
		reportError(err)
		return err
	}
	ui.Success("Token invalidated")
	return nil
}
