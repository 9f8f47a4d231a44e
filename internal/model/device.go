package model

import "strconv"

// Device is a snapshot of a managed mobile device as reported by the JAMF
// inventory. Only ID is stable; every other field is stale once the device
// is renamed or updated until it is fetched again.
type Device struct {
	ID              int    `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	SerialNumber    string `json:"serial_number" yaml:"serial_number"`
	UDID            string `json:"udid" yaml:"udid"`
	AssetTag        string `json:"asset_tag,omitempty" yaml:"asset_tag,omitempty"`
	Model           string `json:"model,omitempty" yaml:"model,omitempty"`
	ModelIdentifier string `json:"model_identifier,omitempty" yaml:"model_identifier,omitempty"`
	OSVersion       string `json:"os_version,omitempty" yaml:"os_version,omitempty"`
	WifiMacAddress  string `json:"wifi_mac_address,omitempty" yaml:"wifi_mac_address,omitempty"`
	Username        string `json:"username,omitempty" yaml:"username,omitempty"`
	Building        string `json:"building,omitempty" yaml:"building,omitempty"`
	Room            string `json:"room,omitempty" yaml:"room,omitempty"`
}

// Columns is the export column order. Identity and name come first so
// downstream spreadsheets can rely on positions A-D.
var Columns = []string{
	"id",
	"name",
	"serial_number",
	"udid",
	"asset_tag",
	"model",
	"os_version",
	"wifi_mac_address",
	"username",
	"building",
	"room",
}

// Record returns the device's values in Columns order.
func (d Device) Record() []string {
	return []string{
		strconv.Itoa(d.ID),
		d.Name,
		d.SerialNumber,
		d.UDID,
		d.AssetTag,
		d.Model,
		d.OSVersion,
		d.WifiMacAddress,
		d.Username,
		d.Building,
		d.Room,
	}
}

// Family returns the product family derived from the model name.
func (d Device) Family() Family {
	return ClassifyModel(d.Model, d.ModelIdentifier)
}

// DeviceUpdate holds inventory attributes to change. Nil fields are left
// untouched on the server.
type DeviceUpdate struct {
	AssetTag *string `json:"assetTag,omitempty"`
	// EnforceName makes JAMF rename the device back whenever it reports a
	// name other than the inventory one.
	EnforceName *bool           `json:"enforceName,omitempty"`
	Location    *LocationUpdate `json:"location,omitempty"`
}

// LocationUpdate is the location part of a DeviceUpdate. Buildings and
// departments are set by ID; an empty ID removes the assignment.
type LocationUpdate struct {
	Username     *string `json:"username,omitempty"`
	RealName     *string `json:"realName,omitempty"`
	EmailAddress *string `json:"emailAddress,omitempty"`
	BuildingID   *string `json:"buildingId,omitempty"`
	DepartmentID *string `json:"departmentId,omitempty"`
	Room         *string `json:"room,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u DeviceUpdate) Empty() bool {
	if u.AssetTag != nil || u.EnforceName != nil {
		return false
	}
	return u.Location.empty()
}

func (l *LocationUpdate) empty() bool {
	if l == nil {
		return true
	}
	for _, f := range []*string{l.Username, l.RealName, l.EmailAddress, l.BuildingID, l.DepartmentID, l.Room} {
		if f != nil {
			return false
		}
	}
	return true
}
