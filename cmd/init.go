package cmd

import (
	"fmt"
	"os"

	"github.com/pinecrest/jamfctl/internal/export"
	"github.com/pinecrest/jamfctl/internal/ui"
	"github.com/pinecrest/jamfctl/internal/wizard"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a jamfctl.yml config file interactively",
	Long: `Look for an existing config, a .env file and JAMF_ environment variables,
then generate a config file through an interactive wizard. Passwords are never
written to the config file.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath := "jamfctl.yml"

	fmt.Println(ui.Bold("Scanning environment..."))
	detection := wizard.Detect(nil)

	if detection.ExistingConfig != "" {
		configPath = detection.ExistingConfig
		fmt.Printf("%s already exists.\n", configPath)
		fmt.Print("Overwrite? [y/N] ")
		var answer string
		_, _ = fmt.Scanln(&answer)
		if answer != "y" && answer != "Y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	answers, err := wizard.Run(detection, export.Formats())
	if err != nil {
		return fmt.Errorf("wizard: %w", err)
	}

	content, err := wizard.GenerateConfig(*answers)
	if err != nil {
		return fmt.Errorf("generating config: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	ui.Success(fmt.Sprintf("Created %s", configPath))
	if !detection.PasswordSet && !detection.TokenSet {
		fmt.Printf("Set your password: %s\n", ui.Hint("export JAMF_PASSWORD=... or add it to .env"))
	}
	fmt.Println()
	fmt.Printf("Next step: %s\n", ui.Bold("jamfctl validate"))
	fmt.Printf("           %s\n", ui.Hint("then 'jamfctl auth check' to test your credentials"))

	return nil
}
