package cmd

import (
	"context"
	"errors"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pinecrest/jamfctl/internal/config"
	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/jamftest"
	"github.com/pinecrest/jamfctl/internal/model"
)

func deviceService(t *testing.T, devices ...jamftest.Device) (*jamftest.Server, *jamf.DeviceService) {
	t.Helper()
	fake := jamftest.New("apiuser", "s3cret", devices...)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	sess, err := jamf.Authenticate(context.Background(), jamf.Options{
		ServerURL:   srv.URL,
		Credentials: jamf.Credentials{Username: "apiuser", Password: "s3cret"},
		HTTPClient:  srv.Client(),
		Logger:      zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return fake, jamf.NewDeviceService(sess)
}

func TestParseID(t *testing.T) {
	id, err := parseID(" 2243 ")
	require.NoError(t, err)
	assert.Equal(t, 2243, id)

	for _, bad := range []string{"", "abc", "0", "-4", "1.5"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err   error
		title string
	}{
		{&jamf.AuthError{Op: "login", Err: jamf.ErrNoCredentials}, "No credentials"},
		{&jamf.AuthError{Op: "ensure valid", Err: jamf.ErrInvalidated}, "Session closed"},
		{&jamf.AuthError{Op: "login", StatusCode: 401}, "Authentication failed"},
		{&jamf.AuthError{Op: "login", Err: errors.New("connection refused")}, "Could not reach JAMF"},
		{&jamf.AuthError{Op: "login", Err: &jamf.SchemaError{Field: "token"}}, "Unexpected response from JAMF"},
		{&jamf.NotFoundError{Field: "serial", Value: "X"}, "Device not found"},
		{&jamf.NotFoundError{Kind: "building", Field: "name", Value: "Gym"}, "Unknown building"},
		{&jamf.NotFoundError{Kind: "prestage", Field: "id", Value: "4"}, "Unknown prestage"},
		{&jamf.ValidationError{Field: "name", Message: "must not be empty"}, "Rejected"},
		{&jamf.APIError{Method: "GET", URL: "/x", StatusCode: 500}, "JAMF returned 500"},
		{errors.New("other"), "Command failed"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			title, _ := describeError(tt.err)
			assert.Equal(t, tt.title, title)
		})
	}
}

func TestResolveExport(t *testing.T) {
	cfg := config.Export{Format: "csv"}

	format, output, err := resolveExport(cfg, "", "", "Devices")
	require.NoError(t, err)
	assert.Equal(t, "csv", format)
	assert.Equal(t, "devices.csv", output)

	format, output, err = resolveExport(cfg, "", "cart-a.xlsx", "Devices")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", format)
	assert.Equal(t, "cart-a.xlsx", output)

	format, output, err = resolveExport(cfg, "json", "out.txt", "Devices")
	require.NoError(t, err)
	assert.Equal(t, "json", format)
	assert.Equal(t, "out.txt", output)

	format, output, err = resolveExport(config.Export{Format: "yaml", Output: "inv.yml"}, "", "", "Devices")
	require.NoError(t, err)
	assert.Equal(t, "yaml", format)
	assert.Equal(t, "inv.yml", output)

	_, _, err = resolveExport(cfg, "pdf", "", "Devices")
	assert.Error(t, err)
}

func updateCommand() *cobra.Command {
	c := &cobra.Command{Use: "update"}
	for _, name := range []string{"asset-tag", "username", "real-name", "email", "building", "department", "room"} {
		c.Flags().String(name, "", "")
	}
	return c
}

func TestUpdateFromFlags(t *testing.T) {
	c := updateCommand()
	assert.True(t, updateFromFlags(c).Empty())

	require.NoError(t, c.Flags().Parse([]string{"--asset-tag", " 200001234 ", "--room", ""}))
	r := updateFromFlags(c)
	u := r.Update
	require.NotNil(t, u.AssetTag)
	assert.Equal(t, "200001234", *u.AssetTag)
	require.NotNil(t, u.Location)
	require.NotNil(t, u.Location.Room)
	assert.Equal(t, "", *u.Location.Room)
	assert.Nil(t, u.Location.BuildingID)
	assert.Nil(t, u.Location.Username)
	assert.Nil(t, r.Building)
}

func TestUpdateFromFlagsBuildingOnly(t *testing.T) {
	c := updateCommand()
	require.NoError(t, c.Flags().Parse([]string{"--building", "Upper School"}))

	r := updateFromFlags(c)
	assert.False(t, r.Empty())
	assert.True(t, r.Update.Empty())
	require.NotNil(t, r.Building)
	assert.Equal(t, "Upper School", *r.Building)
}

func TestUpdateRequestResolve(t *testing.T) {
	fake, ds := deviceService(t,
		jamftest.Device{ID: 7, Name: "iPad-Old", SerialNumber: "ABC123", UDID: "U-1", Building: "Upper School"},
	)
	lower := fake.AddBuilding("Lower School")
	science := fake.AddDepartment("Science")
	ctx := context.Background()

	building, department, room := "Lower School", "Science", "B12"
	u, err := updateRequest{
		Update:     model.DeviceUpdate{Location: &model.LocationUpdate{Room: &room}},
		Building:   &building,
		Department: &department,
	}.resolve(ctx, ds)
	require.NoError(t, err)
	require.NotNil(t, u.Location.BuildingID)
	assert.Equal(t, strconv.Itoa(lower), *u.Location.BuildingID)
	assert.Equal(t, strconv.Itoa(science), *u.Location.DepartmentID)
	assert.Equal(t, "B12", *u.Location.Room)

	_, err = ds.Update(ctx, 7, u)
	require.NoError(t, err)
	stored, _ := fake.Device(7)
	assert.Equal(t, "Lower School", stored.Building)
	assert.Equal(t, "Science", stored.Department)

	none := ""
	u, err = updateRequest{Building: &none}.resolve(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, "", *u.Location.BuildingID)
	assert.Nil(t, u.Location.DepartmentID)

	missing := "Gym"
	_, err = updateRequest{Building: &missing}.resolve(ctx, ds)
	var nf *jamf.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "building", nf.Kind)
}

func TestPlanPadding(t *testing.T) {
	plan := planPadding([]model.Device{
		{ID: 9, AssetTag: "2001234"},
		{ID: 3, AssetTag: "200001234"},
		{ID: 4, AssetTag: "ABC"},
		{ID: 1, AssetTag: "20077"},
	}, "200", 9)

	require.Len(t, plan, 2)
	assert.Equal(t, 1, plan[0].Device.ID)
	assert.Equal(t, "000020077", plan[0].NewTag)
	assert.Equal(t, 9, plan[1].Device.ID)
	assert.Equal(t, "002001234", plan[1].NewTag)
}

func TestApplyRenames(t *testing.T) {
	fake, ds := deviceService(t,
		jamftest.Device{ID: 8, Name: "fi-cartA-001", SerialNumber: "DMP001", UDID: "U-2"},
		jamftest.Device{ID: 9, Name: "fi-cartA-002", SerialNumber: "DMP002", UDID: "U-3"},
		jamftest.Device{ID: 10, Name: "fi-cartA-003", SerialNumber: "DMP003", UDID: "U-4"},
		jamftest.Device{ID: 11, Name: "library-ipad", SerialNumber: "XYZ999", UDID: "U-5"},
	)

	err := applyRenames(context.Background(), ds, []config.Rename{
		{ID: 8, Name: "fi-cartA-010"},
		{ID: 9, Name: "library-ipad"},
		{ID: 10, Name: "fi-cartA-003"},
		{ID: 99, Name: "ghost"},
	}, renameOptions{Flush: true, Enforce: true})
	require.EqualError(t, err, "2 of 4 renames failed")

	d, ok := fake.Device(8)
	require.True(t, ok)
	assert.Equal(t, "fi-cartA-010", d.Name)
	assert.True(t, d.EnforceName)

	d, _ = fake.Device(9)
	assert.Equal(t, "fi-cartA-002", d.Name)

	assert.Equal(t, 1, fake.Flushes(8))
	assert.Equal(t, 1, fake.Flushes(9))
	assert.Zero(t, fake.Flushes(10))

	d, _ = fake.Device(10)
	assert.False(t, d.EnforceName)
}

func TestApplyRenamesWithoutEnforce(t *testing.T) {
	fake, ds := deviceService(t,
		jamftest.Device{ID: 7, Name: "iPad-Old", SerialNumber: "ABC123", UDID: "U-1"},
	)

	require.NoError(t, applyRenames(context.Background(), ds, []config.Rename{{ID: 7, Name: "iPad-New"}}, renameOptions{}))

	d, _ := fake.Device(7)
	assert.Equal(t, "iPad-New", d.Name)
	assert.False(t, d.EnforceName)
	assert.Zero(t, fake.Flushes(7))
}

func TestApplyRenamesDryRun(t *testing.T) {
	fake, ds := deviceService(t,
		jamftest.Device{ID: 7, Name: "iPad-Old", SerialNumber: "ABC123", UDID: "U-1"},
	)

	require.NoError(t, applyRenames(context.Background(), ds, []config.Rename{{ID: 7, Name: "iPad-New"}}, renameOptions{Flush: true, Enforce: true, DryRun: true}))

	d, _ := fake.Device(7)
	assert.Equal(t, "iPad-Old", d.Name)
	assert.Zero(t, fake.Flushes(7))
}

func TestDetailRows(t *testing.T) {
	rows := detailRows(model.DeviceDetail{
		Device:     model.Device{ID: 7},
		Attributes: map[string]any{"supervised": true, "lastInventoryUpdate": nil},
		IOS:        map[string]any{"applications": []any{"Pages"}},
	})
	assert.Equal(t, [][]string{
		{"application_count", "1"},
		{"supervised", "true"},
	}, rows)
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"7", " 8"})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8}, ids)

	_, err = parseIDs([]string{"7", "x"})
	assert.Error(t, err)
}

func TestEachDevice(t *testing.T) {
	var seen []int
	err := eachDevice([]int{7, 8, 9}, func(id int) (string, error) {
		seen = append(seen, id)
		if id == 8 {
			return "", &jamf.NotFoundError{Field: "id", Value: "8"}
		}
		return "ok", nil
	})
	require.EqualError(t, err, "1 of 3 devices failed")
	assert.Equal(t, []int{7, 8, 9}, seen)

	require.NoError(t, eachDevice([]int{7}, func(int) (string, error) { return "ok", nil }))
}

func TestMatchDevices(t *testing.T) {
	_, ds := deviceService(t,
		jamftest.Device{ID: 8, Name: "fi-cartA-001", SerialNumber: "DMP001", UDID: "U-2"},
		jamftest.Device{ID: 9, Name: "fi-cartA-002", SerialNumber: "DMP002", UDID: "U-3"},
		jamftest.Device{ID: 11, Name: "library-ipad", SerialNumber: "XYZ999", UDID: "U-5"},
	)

	devices, err := matchDevices(context.Background(), ds, "fi-cart*")
	require.NoError(t, err)
	require.Len(t, devices, 2)
	assert.Equal(t, "fi-cartA-001", devices[0].Name)
	assert.Equal(t, "DMP002", devices[1].SerialNumber)
}

func TestLocationLists(t *testing.T) {
	fake, ds := deviceService(t,
		jamftest.Device{ID: 7, Name: "iPad-Old", SerialNumber: "ABC123", UDID: "U-1", Building: "Upper School"},
	)
	fake.AddSite("North Campus")

	lists := locationLists(ds)
	require.Len(t, lists, 3)

	buildings, err := lists["buildings"].list(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.NamedObject{{ID: 1, Name: "Upper School"}}, buildings)

	sites, err := lists["sites"].list(context.Background())
	require.NoError(t, err)
	assert.Contains(t, namedTable(sites), "North Campus")
}
