package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/model"
	"github.com/pinecrest/jamfctl/internal/ui"
)

var devicesInventoryCmd = &cobra.Command{
	Use:   "inventory <id>...",
	Short: "Ask devices to send an inventory update",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDevicesInventory,
}

var osUpdateDownloadOnly bool

var devicesOSUpdateCmd = &cobra.Command{
	Use:   "os-update <id>...",
	Short: "Schedule an OS update",
	Long: `Flush pending and failed MDM commands, then schedule an OS update. The
update is downloaded and installed unless --download-only is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDevicesOSUpdate,
}

var eraseYes bool

var devicesEraseCmd = &cobra.Command{
	Use:   "erase <id>",
	Short: "Wipe a device",
	Args:  cobra.ExactArgs(1),
	RunE:  runDevicesErase,
}

var devicesSmartGroupsCmd = &cobra.Command{
	Use:   "smart-groups <id>...",
	Short: "Recalculate smart group membership",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDevicesSmartGroups,
}

var devicesClearLocationCmd = &cobra.Command{
	Use:   "clear-location <id>...",
	Short: "Remove user, building, department and room from devices",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDevicesClearLocation,
}

var devicesEnforceNameCmd = &cobra.Command{
	Use:   "enforce-name <id>...",
	Short: "Make JAMF keep the inventory name on devices",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDevicesEnforceName,
}

var flushStatus string

var devicesFlushCmd = &cobra.Command{
	Use:   "flush <id>...",
	Short: "Clear queued MDM commands",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDevicesFlush,
}

var devicesMatchCmd = &cobra.Command{
	Use:   "match <query>",
	Short: "Find devices with the classic match search",
	Long: `Search name, serial number, UDID, MAC address, asset tag and user at
once. Use * as a wildcard, e.g. 'fi-cartA-*'.`,
	Args: cobra.ExactArgs(1),
	RunE: runDevicesMatch,
}

func init() {
	devicesCmd.AddCommand(devicesInventoryCmd, devicesOSUpdateCmd, devicesEraseCmd,
		devicesSmartGroupsCmd, devicesClearLocationCmd, devicesEnforceNameCmd,
		devicesFlushCmd, devicesMatchCmd)

	devicesOSUpdateCmd.Flags().BoolVar(&osUpdateDownloadOnly, "download-only", false, "download the update without installing it")
	devicesEraseCmd.Flags().BoolVarP(&eraseYes, "yes", "y", false, "do not ask for confirmation")
	devicesFlushCmd.Flags().StringVar(&flushStatus, "status", string(jamf.CommandsPendingFailed), "Pending, Failed or Pending+Failed")
}

func parseIDs(args []string) ([]int, error) {
	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// eachDevice runs fn for every id and reports each outcome. fn returns the
// detail shown on success.
func eachDevice(ids []int, fn func(id int) (string, error)) error {
	failed := 0
	for _, id := range ids {
		label := fmt.Sprintf("device %d", id)
		detail, err := fn(id)
		if err != nil {
			ui.Failed(label, err)
			failed++
			continue
		}
		ui.Done(label, detail)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d devices failed", failed, len(ids))
	}
	return nil
}

// onDevices parses the id arguments and runs fn for each inside a session.
func onDevices(cmd *cobra.Command, args []string, fn func(ctx context.Context, ds *jamf.DeviceService, id int) (string, error)) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		return eachDevice(ids, func(id int) (string, error) {
			return fn(ctx, ds, id)
		})
	})
}

func runDevicesInventory(cmd *cobra.Command, args []string) error {
	return onDevices(cmd, args, func(ctx context.Context, ds *jamf.DeviceService, id int) (string, error) {
		return "inventory update requested", ds.UpdateInventory(ctx, id)
	})
}

func runDevicesOSUpdate(cmd *cobra.Command, args []string) error {
	return onDevices(cmd, args, func(ctx context.Context, ds *jamf.DeviceService, id int) (string, error) {
		if osUpdateDownloadOnly {
			return "update download scheduled", ds.ScheduleOSUpdate(ctx, id, false)
		}
		return "update install scheduled", ds.ScheduleOSUpdate(ctx, id, true)
	})
}

func runDevicesSmartGroups(cmd *cobra.Command, args []string) error {
	return onDevices(cmd, args, func(ctx context.Context, ds *jamf.DeviceService, id int) (string, error) {
		n, err := ds.RecalculateSmartGroups(ctx, id)
		return fmt.Sprintf("member of %d smart groups", n), err
	})
}

func runDevicesClearLocation(cmd *cobra.Command, args []string) error {
	return onDevices(cmd, args, func(ctx context.Context, ds *jamf.DeviceService, id int) (string, error) {
		d, err := ds.ClearLocation(ctx, id)
		return d.Name + " location cleared", err
	})
}

func runDevicesEnforceName(cmd *cobra.Command, args []string) error {
	return onDevices(cmd, args, func(ctx context.Context, ds *jamf.DeviceService, id int) (string, error) {
		d, err := ds.EnforceName(ctx, id)
		return "name " + d.Name + " enforced", err
	})
}

func runDevicesFlush(cmd *cobra.Command, args []string) error {
	status, err := jamf.ParseCommandStatus(flushStatus)
	if err != nil {
		return err
	}
	return onDevices(cmd, args, func(ctx context.Context, ds *jamf.DeviceService, id int) (string, error) {
		return string(status) + " commands flushed", ds.FlushCommandsWithStatus(ctx, id, status)
	})
}

func runDevicesErase(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		d, err := ds.Get(ctx, id)
		if err != nil {
			return err
		}
		if !eraseYes {
			confirmed := false
			err := huh.NewConfirm().
				Title(fmt.Sprintf("Erase %d %s (%s)?", d.ID, d.Name, d.SerialNumber)).
				Description("All content and settings on the device will be wiped.").
				Value(&confirmed).
				Run()
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Aborted.")
				return nil
			}
		}
		if err := ds.EraseDevice(ctx, id); err != nil {
			return err
		}
		ui.Success(fmt.Sprintf("Erase command sent to %d %s", d.ID, d.Name))
		return nil
	})
}

func runDevicesMatch(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		devices, err := matchDevices(ctx, ds, args[0])
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			ui.Warn(fmt.Sprintf("No devices match %q", args[0]))
			return nil
		}
		fmt.Println(ui.DeviceTable(devices))
		return nil
	})
}

// matchDevices runs a match search and fetches each matching device.
func matchDevices(ctx context.Context, ds *jamf.DeviceService, query string) ([]model.Device, error) {
	ids, err := ds.Match(ctx, query)
	if err != nil {
		return nil, err
	}
	devices := make([]model.Device, 0, len(ids))
	for _, id := range ids {
		d, err := ds.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}
