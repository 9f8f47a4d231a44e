package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/report"
)

var reportQuick bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the inventory by device family, OS version and building",
	Long: `Summarize the inventory by device family, OS version and building.

Building and room come from each device's detail record, which costs one
request per device. --quick skips those requests and reports every device
under "(none)" for building.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportQuick, "quick", false, "skip per-device detail requests (no building breakdown)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		devices, err := report.Collect(ctx, ds, reportQuick)
		if err != nil {
			return err
		}
		fmt.Print(report.Render(report.Summarize(devices)))
		return nil
	})
}
