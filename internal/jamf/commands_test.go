package jamf

import (
	"context"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinecrest/jamfctl/internal/model"
)

func TestUpdateInventoryAndErase(t *testing.T) {
	fake, srv := startServer(t, ipadOld())
	ds := NewDeviceService(authenticate(t, srv))
	ctx := context.Background()

	require.NoError(t, ds.UpdateInventory(ctx, 7))
	require.NoError(t, ds.EraseDevice(ctx, 7))
	assert.Equal(t, []string{"UpdateInventory", "EraseDevice"}, fake.Commands(7))

	assert.True(t, IsNotFound(ds.UpdateInventory(ctx, 99)))
	assert.True(t, IsNotFound(ds.EraseDevice(ctx, 99)))
}

func TestScheduleOSUpdateFlushesFirst(t *testing.T) {
	tests := []struct {
		name    string
		install bool
		command string
	}{
		{"install", true, "ScheduleOSUpdate/2"},
		{"download only", false, "ScheduleOSUpdate/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake, srv := startServer(t, ipadOld())
			ds := NewDeviceService(authenticate(t, srv))

			require.NoError(t, ds.ScheduleOSUpdate(context.Background(), 7, tt.install))
			assert.Equal(t, 1, fake.Flushes(7))
			assert.Equal(t, []string{tt.command}, fake.Commands(7))

			reqs := fake.Requests()
			require.GreaterOrEqual(t, len(reqs), 2)
			assert.Equal(t, "DELETE /JSSResource/commandflush/mobiledevices/id/7/status/Pending+Failed", reqs[len(reqs)-2])
			assert.Equal(t, "POST /JSSResource/mobiledevicecommands/command/"+tt.command+"/id/7", reqs[len(reqs)-1])
		})
	}
}

func TestScheduleOSUpdateMissingDevice(t *testing.T) {
	fake, srv := startServer(t, ipadOld())
	ds := NewDeviceService(authenticate(t, srv))

	err := ds.ScheduleOSUpdate(context.Background(), 99, true)
	assert.True(t, IsNotFound(err))
	assert.Empty(t, fake.Commands(99))
}

func TestFlushCommandsWithStatus(t *testing.T) {
	fake, srv := startServer(t, ipadOld())
	ds := NewDeviceService(authenticate(t, srv))
	ctx := context.Background()

	require.NoError(t, ds.FlushCommandsWithStatus(ctx, 7, "failed"))
	assert.Contains(t, fake.Requests(), "DELETE /JSSResource/commandflush/mobiledevices/id/7/status/Failed")

	err := ds.FlushCommandsWithStatus(ctx, 7, "Completed")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Zero(t, ve.StatusCode)
	assert.Equal(t, 1, fake.Flushes(7))
}

func TestParseCommandStatus(t *testing.T) {
	for in, want := range map[string]CommandStatus{
		"Pending":        CommandsPending,
		" failed ":       CommandsFailed,
		"pending+failed": CommandsPendingFailed,
		"Pending+Failed": CommandsPendingFailed,
	} {
		got, err := ParseCommandStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := ParseCommandStatus("all")
	assert.Error(t, err)
}

func TestRecalculateSmartGroups(t *testing.T) {
	d := ipadOld()
	d.SmartGroups = 4
	fake, srv := startServer(t, d)
	ds := NewDeviceService(authenticate(t, srv))

	n, err := ds.RecalculateSmartGroups(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Contains(t, fake.Requests(), "POST /api/v1/mobile-devices/7/recalculate-smart-groups")

	_, err = ds.RecalculateSmartGroups(context.Background(), 99)
	assert.True(t, IsNotFound(err))
}

func TestEnforceName(t *testing.T) {
	fake, srv := startServer(t, ipadOld())
	ds := NewDeviceService(authenticate(t, srv))

	_, err := ds.EnforceName(context.Background(), 7)
	require.NoError(t, err)
	stored, _ := fake.Device(7)
	assert.True(t, stored.EnforceName)

	detail, err := ds.Detail(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, true, detail.Attributes["enforceName"])
}

func TestClearLocation(t *testing.T) {
	d := ipadOld()
	d.Username = "jdoe"
	d.Department = "Science"
	fake, srv := startServer(t, d)
	ds := NewDeviceService(authenticate(t, srv))

	got, err := ds.ClearLocation(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, got.Username)

	stored, _ := fake.Device(7)
	assert.Empty(t, stored.Building)
	assert.Empty(t, stored.Department)
	assert.Empty(t, stored.Room)
	assert.Empty(t, stored.Username)
	assert.Equal(t, "ABC123", stored.SerialNumber)

	detail, err := ds.Detail(context.Background(), 7)
	require.NoError(t, err)
	assert.Nil(t, detail.Location["building"])
}

func TestUpdateBuildingByID(t *testing.T) {
	fake, srv := startServer(t, ipadOld())
	lower := fake.AddBuilding("Lower School")
	ds := NewDeviceService(authenticate(t, srv))
	ctx := context.Background()

	b, err := ds.Building(ctx, "Lower School")
	require.NoError(t, err)
	assert.Equal(t, lower, b.ID)

	id := strconv.Itoa(lower)
	_, err = ds.Update(ctx, 7, model.DeviceUpdate{Location: &model.LocationUpdate{BuildingID: &id}})
	require.NoError(t, err)
	detail, err := ds.Detail(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "Lower School", detail.Building)

	bad := "42"
	_, err = ds.Update(ctx, 7, model.DeviceUpdate{Location: &model.LocationUpdate{BuildingID: &bad}})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, http.StatusBadRequest, ve.StatusCode)
}
