package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinecrest/jamfctl/internal/export"
	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/ui"
)

var offline bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate your jamfctl.yml configuration",
	Long: `Check that the config is complete and that the JAMF server answers.
No credentials are sent; use 'jamfctl auth check' to test them.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&offline, "offline", false, "skip the server reachability check")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println(ui.Bold("Validating jamfctl.yml..."))

	passed := 0
	failed := 0

	errs := cfg.Validate(export.Formats())
	for _, ve := range errs {
		ui.ValidationErr(ve.Field, ve.Message, ve.Suggestion)
		failed++
	}
	if len(errs) == 0 {
		ui.ValidationOK("config", "configuration valid")
		passed++
	}

	if !offline && cfg.Server.URL != "" {
		if jamf.Available(cmd.Context(), cfg.SessionOptions(logger)) {
			ui.ValidationOK("server.url", cfg.Server.URL+" is reachable")
			passed++
		} else {
			ui.ValidationErr("server.url", cfg.Server.URL+" did not answer", "check the URL, port and TLS settings, or rerun with -v")
			failed++
		}
	}

	fmt.Println()
	if failed == 0 {
		ui.Success(fmt.Sprintf("%d checks passed, 0 errors", passed))
	} else {
		fmt.Printf("%d checks passed, %d errors\n", passed, failed)
	}

	if failed > 0 {
		return fmt.Errorf("%d validation errors", failed)
	}
	return nil
}
