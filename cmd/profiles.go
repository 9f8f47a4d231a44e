package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/ui"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage configuration profile scope",
}

var excludeRemove bool

var profilesExcludeCmd = &cobra.Command{
	Use:   "exclude <profile-id> <device-id>...",
	Short: "Exclude devices from a configuration profile",
	Long: `Add devices to the exclusion list of a mobile device configuration
profile, or take them off it with --remove. Devices already in the requested
state are left alone.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runProfilesExclude,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesExcludeCmd)
	profilesExcludeCmd.Flags().BoolVar(&excludeRemove, "remove", false, "remove the devices from the exclusion list")
}

func runProfilesExclude(cmd *cobra.Command, args []string) error {
	profileID, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid profile id %q", args[0])
	}
	deviceIDs, err := parseIDs(args[1:])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		profile, err := ds.Profile(ctx, profileID)
		if err != nil {
			return err
		}
		fmt.Println(ui.Bold(fmt.Sprintf("Profile %d: %s", profile.ID, profile.Name)))

		failed := 0
		for _, id := range deviceIDs {
			label := fmt.Sprintf("device %d", id)
			changed, err := ds.SetProfileExclusion(ctx, profileID, id, !excludeRemove)
			switch {
			case err != nil:
				ui.Failed(label, err)
				failed++
			case !changed && excludeRemove:
				ui.Skipped(label, "not excluded")
			case !changed:
				ui.Skipped(label, "already excluded")
			case excludeRemove:
				ui.Done(label, "no longer excluded")
			default:
				ui.Done(label, "excluded")
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d devices failed", failed, len(deviceIDs))
		}
		return nil
	})
}
