package jamf

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/pinecrest/jamfctl/internal/model"
)

// Classic API paths. MDM commands are queued for the device and the server
// answers 201 once queued. The DeviceName command is the only way to rename
// a managed device; the inventory record follows once the device reports.
const (
	deviceCommandPath = "mobiledevicecommands/command"
	commandFlushPath  = "commandflush/mobiledevices/id"
	mobileDevicesPath = "mobiledevices/id"

	recalculateEndpoint = "v1/mobile-devices/%d/recalculate-smart-groups"
)

// CommandStatus selects which queued MDM commands a flush clears.
type CommandStatus string

const (
	CommandsPending       CommandStatus = "Pending"
	CommandsFailed        CommandStatus = "Failed"
	CommandsPendingFailed CommandStatus = "Pending+Failed"
)

// ParseCommandStatus accepts Pending, Failed or Pending+Failed in any case.
func ParseCommandStatus(s string) (CommandStatus, error) {
	for _, st := range []CommandStatus{CommandsPending, CommandsFailed, CommandsPendingFailed} {
		if strings.EqualFold(strings.TrimSpace(s), string(st)) {
			return st, nil
		}
	}
	return "", &ValidationError{
		Field:   "command status",
		Value:   s,
		Message: "must be Pending, Failed or Pending+Failed",
	}
}

// UpdateName sends a DeviceName command and returns the device re-fetched
// from the server.
func (ds *DeviceService) UpdateName(ctx context.Context, id int, name string) (model.Device, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Device{}, &ValidationError{Field: "name", Value: name, Message: "name must not be empty"}
	}

	path := fmt.Sprintf("%s/DeviceName/%s/id/%d", deviceCommandPath, url.PathEscape(name), id)
	if _, err := ds.session.classic(ctx, http.MethodPost, path, nil); err != nil {
		return model.Device{}, rejected(notFoundByID(err, id), "name", name)
	}
	ds.session.logger.Info("sent device name command", zap.Int("id", id), zap.String("name", name))
	return ds.Get(ctx, id)
}

// EnforceName turns on name enforcement, so JAMF renames the device back
// if it is renamed on the device itself.
func (ds *DeviceService) EnforceName(ctx context.Context, id int) (model.Device, error) {
	enforce := true
	return ds.Update(ctx, id, model.DeviceUpdate{EnforceName: &enforce})
}

// FlushCommands clears pending and failed MDM commands for a device, so a
// new command is not queued behind stale ones.
func (ds *DeviceService) FlushCommands(ctx context.Context, id int) error {
	return ds.FlushCommandsWithStatus(ctx, id, CommandsPendingFailed)
}

// FlushCommandsWithStatus clears the device's queued commands in status.
func (ds *DeviceService) FlushCommandsWithStatus(ctx context.Context, id int, status CommandStatus) error {
	status, err := ParseCommandStatus(string(status))
	if err != nil {
		return err
	}
	path := fmt.Sprintf("%s/%d/status/%s", commandFlushPath, id, status)
	if _, err := ds.session.classic(ctx, http.MethodDelete, path, nil); err != nil {
		return notFoundByID(err, id)
	}
	ds.session.logger.Debug("flushed device commands", zap.Int("id", id), zap.String("status", string(status)))
	return nil
}

func (ds *DeviceService) sendCommand(ctx context.Context, id int, command string) error {
	path := fmt.Sprintf("%s/%s/id/%d", deviceCommandPath, command, id)
	if _, err := ds.session.classic(ctx, http.MethodPost, path, nil); err != nil {
		return rejected(notFoundByID(err, id), "command", command)
	}
	ds.session.logger.Info("sent device command", zap.Int("id", id), zap.String("command", command))
	return nil
}

// UpdateInventory asks the device to report its inventory.
func (ds *DeviceService) UpdateInventory(ctx context.Context, id int) error {
	return ds.sendCommand(ctx, id, "UpdateInventory")
}

// ScheduleOSUpdate flushes the device's pending and failed commands, then
// schedules an OS update. With install set the update is downloaded and
// installed; otherwise it is only downloaded.
func (ds *DeviceService) ScheduleOSUpdate(ctx context.Context, id int, install bool) error {
	if err := ds.FlushCommands(ctx, id); err != nil {
		return err
	}
	action := 1
	if install {
		action = 2
	}
	return ds.sendCommand(ctx, id, fmt.Sprintf("ScheduleOSUpdate/%d", action))
}

// EraseDevice wipes the device. It cannot be undone.
func (ds *DeviceService) EraseDevice(ctx context.Context, id int) error {
	return ds.sendCommand(ctx, id, "EraseDevice")
}

// RecalculateSmartGroups re-evaluates smart group membership for the
// device and returns how many groups it now belongs to.
func (ds *DeviceService) RecalculateSmartGroups(ctx context.Context, id int) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	if _, err := ds.session.pro(ctx, http.MethodPost, fmt.Sprintf(recalculateEndpoint, id), nil, &out); err != nil {
		return 0, notFoundByID(err, id)
	}
	ds.session.logger.Debug("recalculated smart groups", zap.Int("id", id), zap.Int("count", out.Count))
	return out.Count, nil
}

// clearedLocation blanks every location field. Building and department are
// sent as JSON null, which is how the server removes an assignment.
var clearedLocation = map[string]any{
	"location": map[string]any{
		"buildingId":   nil,
		"departmentId": nil,
		"emailAddress": "",
		"realName":     "",
		"position":     "",
		"phoneNumber":  "",
		"room":         "",
		"username":     "",
	},
}

// ClearLocation removes the user, building, department and room from the
// device and returns it re-fetched.
func (ds *DeviceService) ClearLocation(ctx context.Context, id int) (model.Device, error) {
	if _, err := ds.session.call(ctx, http.MethodPost, deviceEndpoint(id, "update"), clearedLocation, nil); err != nil {
		return model.Device{}, rejected(notFoundByID(err, id), "location", strconv.Itoa(id))
	}
	ds.session.logger.Info("cleared device location", zap.Int("id", id))
	return ds.Get(ctx, id)
}

// Delete removes a device record from the inventory.
func (ds *DeviceService) Delete(ctx context.Context, id int) error {
	path := mobileDevicesPath + "/" + strconv.Itoa(id)
	if _, err := ds.session.classic(ctx, http.MethodDelete, path, nil); err != nil {
		return notFoundByID(err, id)
	}
	ds.session.logger.Info("deleted device", zap.Int("id", id))
	return nil
}
