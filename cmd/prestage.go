package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/ui"
)

var devicesPrestageCmd = &cobra.Command{
	Use:   "prestage",
	Short: "Assign devices to prestage enrollments",
	Long: `Prestage enrollments are scoped by serial number. Changes are sent with the
scope's version lock, so a concurrent edit by someone else makes the change
fail instead of overwriting theirs.`,
}

var prestageShowCmd = &cobra.Command{
	Use:   "show <device-id>...",
	Short: "Show which prestage each device is assigned to",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrestageShow,
}

var prestageAddCmd = &cobra.Command{
	Use:   "add <prestage-id> <device-id>...",
	Short: "Add devices to a prestage",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPrestageAdd,
}

var prestageRemoveCmd = &cobra.Command{
	Use:   "remove <device-id>...",
	Short: "Remove devices from whichever prestage they are in",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrestageRemove,
}

func init() {
	devicesCmd.AddCommand(devicesPrestageCmd)
	devicesPrestageCmd.AddCommand(prestageShowCmd, prestageAddCmd, prestageRemoveCmd)
}

func runPrestageShow(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		rows := make([][]string, 0, len(ids))
		for _, id := range ids {
			d, err := ds.Get(ctx, id)
			if err != nil {
				return err
			}
			prestage := "-"
			if pid, ok, err := ds.PrestageOf(ctx, d.SerialNumber); err != nil {
				return err
			} else if ok {
				prestage = strconv.Itoa(pid)
			}
			rows = append(rows, []string{strconv.Itoa(d.ID), d.Name, d.SerialNumber, prestage})
		}
		fmt.Println(ui.Table([]string{"ID", "Name", "Serial", "Prestage"}, rows))
		return nil
	})
}

func runPrestageAdd(cmd *cobra.Command, args []string) error {
	prestageID, err := parseID(args[0])
	if err != nil {
		return fmt.Errorf("invalid prestage id %q", args[0])
	}
	ids, err := parseIDs(args[1:])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		failed := 0
		for _, id := range ids {
			label := fmt.Sprintf("device %d", id)
			added, err := ds.AddToPrestage(ctx, prestageID, id)
			switch {
			case err != nil:
				ui.Failed(label, err)
				failed++
			case !added:
				ui.Skipped(label, fmt.Sprintf("already in prestage %d", prestageID))
			default:
				ui.Done(label, fmt.Sprintf("added to prestage %d", prestageID))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d devices failed", failed, len(ids))
		}
		return nil
	})
}

func runPrestageRemove(cmd *cobra.Command, args []string) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		failed := 0
		for _, id := range ids {
			label := fmt.Sprintf("device %d", id)
			from, removed, err := ds.RemoveFromPrestage(ctx, id)
			switch {
			case err != nil:
				ui.Failed(label, err)
				failed++
			case !removed:
				ui.Skipped(label, "not in a prestage")
			default:
				ui.Done(label, fmt.Sprintf("removed from prestage %d", from))
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d devices failed", failed, len(ids))
		}
		return nil
	})
}
