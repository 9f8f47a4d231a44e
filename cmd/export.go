package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pinecrest/jamfctl/internal/config"
	"github.com/pinecrest/jamfctl/internal/export"
	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/ui"
	"github.com/pinecrest/jamfctl/internal/util"
)

var (
	exportFormat string
	exportOutput string
	exportSheet  string
	exportOpen   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the device inventory to a CSV, Excel, JSON or YAML file",
	Long: `Export every device with the columns id, name, serial_number, udid,
asset_tag, model, os_version, wifi_mac_address, username, building, room.

With --details each device's detail record is fetched as well and its fields
are appended as extra columns. This makes one request per device.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "output format: csv, xlsx, json, yaml (default: from file extension or config)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file path")
	exportCmd.Flags().Bool("details", false, "include detail fields (slow)")
	exportCmd.Flags().StringVar(&exportSheet, "sheet", export.DefaultSheet, "worksheet name for xlsx output")
	exportCmd.Flags().BoolVar(&exportOpen, "open", false, "open the file when done")

	_ = viper.BindPFlag("export.details", exportCmd.Flags().Lookup("details"))
}

// resolveExport picks format and output path. The --format flag wins, then
// the output file's extension, then the config. Without an output path the
// file is named after the sheet.
func resolveExport(cfg config.Export, format, output, sheet string) (string, string, error) {
	if output == "" {
		output = cfg.Output
	}
	switch {
	case format != "":
	case output != "" && export.FormatFromPath(output) != "":
		format = export.FormatFromPath(output)
	default:
		format = cfg.Format
	}

	e, err := export.Get(format)
	if err != nil {
		return "", "", err
	}
	if output == "" {
		output = util.Slug(sheet) + e.Metadata().Extension
	}
	return e.Metadata().Name, output, nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	format, output, err := resolveExport(cfg.Export, exportFormat, exportOutput, exportSheet)
	if err != nil {
		ui.PrintError("Unknown export format", err.Error(), "")
		return err
	}

	var table export.Table
	err = withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		devices, err := ds.ListAll(ctx)
		if err != nil {
			return err
		}
		sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })

		if !cfg.Export.Details {
			table = export.DeviceTable(devices)
			return nil
		}
		fmt.Println(ui.Bold(fmt.Sprintf("Fetching details for %d devices...", len(devices))))
		details, err := ds.Details(ctx, devices)
		if err != nil {
			return err
		}
		table = export.DetailTable(details)
		return nil
	})
	if err != nil {
		return err
	}
	table.Name = exportSheet

	if err := export.WriteFile(output, format, table); err != nil {
		ui.PrintError("Failed to write export", err.Error(), "")
		return err
	}
	ui.Success(fmt.Sprintf("Exported %d devices to %s", len(table.Rows), output))

	if exportOpen {
		if err := openFile(output); err != nil {
			ui.PrintError("Could not open file", err.Error(), "open it manually")
		}
	}
	return nil
}

func openFile(path string) error {
	opener := "xdg-open"
	switch runtime.GOOS {
	case "darwin":
		opener = "open"
	case "windows":
		opener = "explorer"
	}

	bin, err := findExecutable(opener)
	if err != nil {
		return fmt.Errorf("%s not found in PATH", opener)
	}
	c := execCommand(bin, path)
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	logger.Debug("opening export", zap.String("command", bin), zap.String("path", path))
	return c.Start()
}
