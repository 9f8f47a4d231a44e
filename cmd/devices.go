package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pinecrest/jamfctl/internal/config"
	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/model"
	"github.com/pinecrest/jamfctl/internal/ui"
)

var devicesCmd = &cobra.Command{
	Use:     "devices",
	Aliases: []string{"device", "d"},
	Short:   "List, search and modify mobile devices",
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every mobile device in the inventory",
	Args:  cobra.NoArgs,
	RunE:  runDevicesList,
}

var getDetail bool

var devicesGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one device by its JAMF id",
	Args:  cobra.ExactArgs(1),
	RunE:  runDevicesGet,
}

var searchField string

var devicesSearchCmd = &cobra.Command{
	Use:   "search <value>",
	Short: "Find devices by serial number, name, UDID or asset tag",
	Long: `Search the inventory on one field. Serial number and UDID lookups must
match exactly one device; name and asset tag lookups may return several.

The field defaults to search.default_field from the config.`,
	Args: cobra.ExactArgs(1),
	RunE: runDevicesSearch,
}

var (
	renameFile    string
	renameFlush   bool
	renameEnforce bool
	dryRun        bool
)

var devicesRenameCmd = &cobra.Command{
	Use:   "rename [<id> <name>]",
	Short: "Rename a device, or many from a YAML file of id: name pairs",
	Long: `Send a DeviceName MDM command. With --file, every id: name pair in the
YAML file is applied in id order and failures are reported at the end.

--flush clears pending and failed MDM commands for a device before renaming,
which helps when an earlier rename is stuck. Name enforcement is turned on
before the command is sent unless --enforce=false is given, so the device
cannot be renamed back locally.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if renameFile != "" {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	RunE: runDevicesRename,
}

var devicesUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a device's asset tag or location",
	Long: `Change inventory attributes. Only the flags given are sent, and an empty
value clears the attribute. --building and --department take names, which
must match a JAMF building or department exactly.`,
	Args: cobra.ExactArgs(1),
	RunE: runDevicesUpdate,
}

var deleteYes bool

var devicesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a device record from JAMF",
	Args:  cobra.ExactArgs(1),
	RunE:  runDevicesDelete,
}

var (
	padPrefix string
	padWidth  int
)

var devicesPadCmd = &cobra.Command{
	Use:   "pad-asset-tags",
	Short: "Zero-pad asset tags that start with a prefix to a fixed width",
	Long: `Left-pad every asset tag that starts with --prefix with zeros until it
is --width characters long, e.g. 2001234 becomes 002001234. Tags that are
already long enough are left alone.`,
	Args: cobra.NoArgs,
	RunE: runDevicesPad,
}

func init() {
	rootCmd.AddCommand(devicesCmd)
	devicesCmd.AddCommand(devicesListCmd, devicesGetCmd, devicesSearchCmd,
		devicesRenameCmd, devicesUpdateCmd, devicesDeleteCmd, devicesPadCmd)

	devicesGetCmd.Flags().BoolVar(&getDetail, "detail", false, "show the full detail record")

	devicesSearchCmd.Flags().StringVarP(&searchField, "field", "f", "", "serial, name, udid or asset_tag")
	_ = viper.BindPFlag("search.default_field", devicesSearchCmd.Flags().Lookup("field"))

	devicesRenameCmd.Flags().StringVar(&renameFile, "file", "", "YAML file mapping device ids to names")
	devicesRenameCmd.Flags().BoolVar(&renameFlush, "flush", false, "flush pending and failed commands first")
	devicesRenameCmd.Flags().BoolVar(&renameEnforce, "enforce", true, "enforce the new name on the device")
	devicesRenameCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without changing it")

	devicesUpdateCmd.Flags().String("asset-tag", "", "new asset tag")
	devicesUpdateCmd.Flags().String("username", "", "assigned user")
	devicesUpdateCmd.Flags().String("real-name", "", "assigned user's full name")
	devicesUpdateCmd.Flags().String("email", "", "assigned user's email address")
	devicesUpdateCmd.Flags().String("building", "", "building name")
	devicesUpdateCmd.Flags().String("department", "", "department name")
	devicesUpdateCmd.Flags().String("room", "", "room")

	devicesDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")

	devicesPadCmd.Flags().StringVar(&padPrefix, "prefix", "200", "only pad tags starting with this")
	devicesPadCmd.Flags().IntVar(&padWidth, "width", 9, "target tag length")
	devicesPadCmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would change without changing it")
}

func runDevicesList(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		devices, err := ds.ListAll(ctx)
		if err != nil {
			return err
		}
		sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
		fmt.Println(ui.DeviceTable(devices))
		fmt.Printf("%d devices\n", len(devices))
		return nil
	})
}

func runDevicesGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		if !getDetail {
			d, err := ds.Get(ctx, id)
			if err != nil {
				return err
			}
			fmt.Println(ui.DeviceTable([]model.Device{d}))
			return nil
		}

		detail, err := ds.Detail(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println(ui.DeviceTable([]model.Device{detail.Device}))
		fmt.Println(ui.Table([]string{"Field", "Value"}, detailRows(detail)))
		return nil
	})
}

func detailRows(d model.DeviceDetail) [][]string {
	flat := d.Flatten()
	keys := model.FlatKeys([]map[string]any{flat})
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		if v := flat[k]; v != nil {
			rows = append(rows, []string{k, fmt.Sprint(v)})
		}
	}
	return rows
}

func runDevicesSearch(cmd *cobra.Command, args []string) error {
	field, err := jamf.ParseSearchField(viper.GetString("search.default_field"))
	if err != nil {
		return err
	}
	query := jamf.SearchQuery{Field: field, Value: args[0]}

	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		devices, err := ds.Find(ctx, query)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			ui.Warn(fmt.Sprintf("no device with %s %q", field, query.Value))
			return nil
		}
		fmt.Println(ui.DeviceTable(devices))
		return nil
	})
}

func runDevicesRename(cmd *cobra.Command, args []string) error {
	var renames []config.Rename
	if renameFile != "" {
		loaded, err := config.LoadRenames(renameFile)
		if err != nil {
			ui.PrintError("Failed to read rename file", err.Error(), "the file must map numeric device ids to names")
			return err
		}
		renames = loaded
	} else {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		renames = []config.Rename{{ID: id, Name: args[1]}}
	}

	opts := renameOptions{Flush: renameFlush, Enforce: renameEnforce, DryRun: dryRun}
	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		return applyRenames(ctx, ds, renames, opts)
	})
}

type renameOptions struct {
	Flush   bool
	Enforce bool
	DryRun  bool
}

func applyRenames(ctx context.Context, ds *jamf.DeviceService, renames []config.Rename, opts renameOptions) error {
	failed := 0
	for _, r := range renames {
		current, err := ds.Get(ctx, r.ID)
		if err != nil {
			ui.Failed(fmt.Sprintf("%d", r.ID), err)
			failed++
			continue
		}
		label := fmt.Sprintf("%d %s", r.ID, current.Name)
		if current.Name == r.Name {
			ui.Skipped(label, "already named")
			continue
		}
		if opts.DryRun {
			ui.Step("%s -> %s", label, r.Name)
			continue
		}
		if opts.Flush {
			if err := ds.FlushCommands(ctx, r.ID); err != nil {
				ui.Failed(label, err)
				failed++
				continue
			}
		}
		if opts.Enforce {
			if _, err := ds.EnforceName(ctx, r.ID); err != nil {
				ui.Failed(label, err)
				failed++
				continue
			}
		}
		if _, err := ds.UpdateName(ctx, r.ID, r.Name); err != nil {
			ui.Failed(label, err)
			failed++
			continue
		}
		ui.Done(label, "-> "+r.Name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d renames failed", failed, len(renames))
	}
	return nil
}

func runDevicesUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	req := updateFromFlags(cmd)
	if req.Empty() {
		return fmt.Errorf("nothing to update: pass --asset-tag, --username, --real-name, --email, --building, --department or --room")
	}

	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		update, err := req.resolve(ctx, ds)
		if err != nil {
			return err
		}
		d, err := ds.Update(ctx, id, update)
		if err != nil {
			return err
		}
		ui.Success(fmt.Sprintf("Updated %d %s", d.ID, d.Name))
		fmt.Println(ui.DeviceTable([]model.Device{d}))
		return nil
	})
}

// updateRequest is a DeviceUpdate whose building and department are still
// names to be resolved to IDs.
type updateRequest struct {
	Update     model.DeviceUpdate
	Building   *string
	Department *string
}

func (r updateRequest) Empty() bool {
	return r.Update.Empty() && r.Building == nil && r.Department == nil
}

// namedLookup resolves a building or department name.
type namedLookup func(ctx context.Context, name string) (model.NamedObject, error)

func (r updateRequest) resolve(ctx context.Context, ds *jamf.DeviceService) (model.DeviceUpdate, error) {
	u := r.Update
	resolve := func(name *string, lookup namedLookup) (*string, error) {
		if name == nil {
			return nil, nil
		}
		id := ""
		if *name != "" {
			obj, err := lookup(ctx, *name)
			if err != nil {
				return nil, err
			}
			id = strconv.Itoa(obj.ID)
		}
		return &id, nil
	}

	building, err := resolve(r.Building, ds.Building)
	if err != nil {
		return u, err
	}
	department, err := resolve(r.Department, ds.Department)
	if err != nil {
		return u, err
	}
	if building == nil && department == nil {
		return u, nil
	}

	loc := model.LocationUpdate{}
	if u.Location != nil {
		loc = *u.Location
	}
	loc.BuildingID = building
	loc.DepartmentID = department
	u.Location = &loc
	return u, nil
}

// updateFromFlags sets only the fields whose flags were given, so an empty
// value clears the attribute on the server.
func updateFromFlags(cmd *cobra.Command) updateRequest {
	var r updateRequest
	str := func(name string) *string {
		if cmd.Flags().Lookup(name) == nil || !cmd.Flags().Changed(name) {
			return nil
		}
		v, _ := cmd.Flags().GetString(name)
		v = strings.TrimSpace(v)
		return &v
	}

	r.Update.AssetTag = str("asset-tag")
	loc := model.LocationUpdate{
		Username:     str("username"),
		RealName:     str("real-name"),
		EmailAddress: str("email"),
		Room:         str("room"),
	}
	if !(model.DeviceUpdate{Location: &loc}).Empty() {
		r.Update.Location = &loc
	}
	r.Building = str("building")
	r.Department = str("department")
	return r
}

func runDevicesDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		d, err := ds.Get(ctx, id)
		if err != nil {
			return err
		}
		if !deleteYes {
			confirmed := false
			err := huh.NewConfirm().
				Title(fmt.Sprintf("Delete %d %s (%s)?", d.ID, d.Name, d.SerialNumber)).
				Description("The device will have to re-enroll to be managed again.").
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
		if err := ds.Delete(ctx, id); err != nil {
			return err
		}
		ui.Success(fmt.Sprintf("Deleted %d %s", d.ID, d.Name))
		return nil
	})
}

// tagChange is one asset tag rewrite planned by pad-asset-tags.
type tagChange struct {
	Device model.Device
	NewTag string
}

func planPadding(devices []model.Device, prefix string, width int) []tagChange {
	var plan []tagChange
	for _, d := range devices {
		if padded, changed := model.PadAssetTag(d.AssetTag, prefix, width); changed {
			plan = append(plan, tagChange{Device: d, NewTag: padded})
		}
	}
	sort.Slice(plan, func(i, j int) bool { return plan[i].Device.ID < plan[j].Device.ID })
	return plan
}

func runDevicesPad(cmd *cobra.Command, args []string) error {
	if padWidth <= len(padPrefix) {
		return fmt.Errorf("--width must be longer than --prefix")
	}

	return withSession(cmd, func(ctx context.Context, ds *jamf.DeviceService) error {
		devices, err := ds.ListAll(ctx)
		if err != nil {
			return err
		}
		plan := planPadding(devices, padPrefix, padWidth)
		if len(plan) == 0 {
			ui.Success("All asset tags are already padded")
			return nil
		}

		failed := 0
		for _, c := range plan {
			label := fmt.Sprintf("%d %s", c.Device.ID, c.Device.Name)
			if dryRun {
				ui.Step("%s: %s -> %s", label, c.Device.AssetTag, c.NewTag)
				continue
			}
			tag := c.NewTag
			if _, err := ds.Update(ctx, c.Device.ID, model.DeviceUpdate{AssetTag: &tag}); err != nil {
				ui.Failed(label, err)
				failed++
				continue
			}
			ui.Done(label, c.Device.AssetTag+" -> "+c.NewTag)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d asset tags failed to update", failed, len(plan))
		}
		return nil
	})
}
