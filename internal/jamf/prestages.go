package jamf

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"go.uber.org/zap"
)

const prestagesEndpoint = "v2/mobile-device-prestages"

// PrestageScope is the set of serial numbers assigned to a mobile device
// prestage enrollment. VersionLock must be sent back unchanged with an
// update; the server rejects the update if the scope changed in between.
type PrestageScope struct {
	PrestageID    int
	SerialNumbers []string
	VersionLock   int
}

type wirePrestageScope struct {
	PrestageID  flexID `json:"prestageId"`
	Assignments []struct {
		SerialNumber string `json:"serialNumber"`
	} `json:"assignments"`
	VersionLock int `json:"versionLock"`
}

type prestageScopeUpdate struct {
	SerialNumbers []string `json:"serialNumbers"`
	VersionLock   int      `json:"versionLock"`
}

func prestageScopeEndpoint(prestageID int) string {
	return prestagesEndpoint + "/" + strconv.Itoa(prestageID) + "/scope"
}

func prestageNotFound(err error, prestageID int) error {
	if statusCode(err) == http.StatusNotFound {
		return &NotFoundError{Kind: "prestage", Field: "id", Value: strconv.Itoa(prestageID)}
	}
	return err
}

// PrestageScope fetches the serial numbers assigned to a prestage.
func (ds *DeviceService) PrestageScope(ctx context.Context, prestageID int) (PrestageScope, error) {
	var w wirePrestageScope
	if _, err := ds.session.pro(ctx, http.MethodGet, prestageScopeEndpoint(prestageID), nil, &w); err != nil {
		return PrestageScope{}, prestageNotFound(err, prestageID)
	}
	scope := PrestageScope{PrestageID: prestageID, VersionLock: w.VersionLock}
	for _, a := range w.Assignments {
		scope.SerialNumbers = append(scope.SerialNumbers, a.SerialNumber)
	}
	return scope, nil
}

func (ds *DeviceService) putPrestageScope(ctx context.Context, scope PrestageScope) error {
	body := prestageScopeUpdate{SerialNumbers: scope.SerialNumbers, VersionLock: scope.VersionLock}
	if body.SerialNumbers == nil {
		body.SerialNumbers = []string{}
	}
	if _, err := ds.session.pro(ctx, http.MethodPut, prestageScopeEndpoint(scope.PrestageID), body, nil); err != nil {
		return rejected(prestageNotFound(err, scope.PrestageID), "prestage scope", strconv.Itoa(scope.PrestageID))
	}
	return nil
}

// PrestageOf returns the ID of the prestage the serial number is assigned
// to, and false when it is in none.
func (ds *DeviceService) PrestageOf(ctx context.Context, serial string) (int, bool, error) {
	var out struct {
		SerialsByPrestageID map[string]flexID `json:"serialsByPrestageId"`
	}
	if _, err := ds.session.pro(ctx, http.MethodGet, prestagesEndpoint+"/scope", nil, &out); err != nil {
		return 0, false, fmt.Errorf("reading prestage assignments: %w", err)
	}
	id, ok := out.SerialsByPrestageID[serial]
	return int(id), ok, nil
}

// AddToPrestage assigns the device's serial number to a prestage. It
// reports false when the serial was already assigned there.
func (ds *DeviceService) AddToPrestage(ctx context.Context, prestageID, deviceID int) (bool, error) {
	d, err := ds.Get(ctx, deviceID)
	if err != nil {
		return false, err
	}
	scope, err := ds.PrestageScope(ctx, prestageID)
	if err != nil {
		return false, err
	}
	if slices.Contains(scope.SerialNumbers, d.SerialNumber) {
		return false, nil
	}
	scope.SerialNumbers = append(scope.SerialNumbers, d.SerialNumber)
	if err := ds.putPrestageScope(ctx, scope); err != nil {
		return false, err
	}
	ds.session.logger.Info("added device to prestage",
		zap.Int("id", deviceID),
		zap.String("serial", d.SerialNumber),
		zap.Int("prestage", prestageID))
	return true, nil
}

// RemoveFromPrestage unassigns the device from whichever prestage holds its
// serial number and returns that prestage's ID. It reports false when the
// device is in no prestage.
func (ds *DeviceService) RemoveFromPrestage(ctx context.Context, deviceID int) (int, bool, error) {
	d, err := ds.Get(ctx, deviceID)
	if err != nil {
		return 0, false, err
	}
	prestageID, ok, err := ds.PrestageOf(ctx, d.SerialNumber)
	if err != nil || !ok {
		return 0, false, err
	}
	scope, err := ds.PrestageScope(ctx, prestageID)
	if err != nil {
		return 0, false, err
	}
	scope.SerialNumbers = slices.DeleteFunc(scope.SerialNumbers, func(s string) bool { return s == d.SerialNumber })
	if err := ds.putPrestageScope(ctx, scope); err != nil {
		return 0, false, err
	}
	ds.session.logger.Info("removed device from prestage",
		zap.Int("id", deviceID),
		zap.String("serial", d.SerialNumber),
		zap.Int("prestage", prestageID))
	return prestageID, true, nil
}
