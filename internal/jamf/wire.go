package jamf

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pinecrest/jamfctl/internal/model"
)

// flexID decodes a device ID sent either as a JSON number or as a numeric
// string, which the universal API does depending on server version.
type flexID int

func (f *flexID) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case float64:
		if val != float64(int(val)) {
			return fmt.Errorf("id: %v is not an integer", val)
		}
		*f = flexID(val)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(val))
		if err != nil {
			return fmt.Errorf("id: cannot parse %q as integer: %w", val, err)
		}
		*f = flexID(n)
	default:
		return fmt.Errorf("id: unexpected type %T", v)
	}
	return nil
}

// nameRef decodes either a plain string or an object with a "name" field,
// as used for buildings and departments.
type nameRef string

func (n *nameRef) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch val := v.(type) {
	case nil:
		*n = ""
	case string:
		*n = nameRef(val)
	case map[string]any:
		name, _ := val["name"].(string)
		*n = nameRef(name)
	default:
		return fmt.Errorf("unexpected type %T for named reference", v)
	}
	return nil
}

type wireLocation struct {
	Username string  `json:"username"`
	Room     string  `json:"room"`
	Building nameRef `json:"building"`
}

type wireIOS struct {
	OSVersion string `json:"osVersion"`
	Model     string `json:"model"`
}

// wireDevice is the universal API shape of a mobile device. Identity fields
// are pointers so a missing field can be told apart from an empty one.
type wireDevice struct {
	ID              *flexID       `json:"id"`
	Name            *string       `json:"name"`
	SerialNumber    *string       `json:"serialNumber"`
	UDID            *string       `json:"udid"`
	AssetTag        string        `json:"assetTag"`
	Model           string        `json:"model"`
	ModelIdentifier string        `json:"modelIdentifier"`
	OSVersion       string        `json:"osVersion"`
	WifiMacAddress  string        `json:"wifiMacAddress"`
	Username        string        `json:"username"`
	Location        *wireLocation `json:"location"`
	IOS             *wireIOS      `json:"ios"`
}

func (w wireDevice) toDevice() (model.Device, error) {
	switch {
	case w.ID == nil:
		return model.Device{}, &SchemaError{Field: "id"}
	case w.Name == nil:
		return model.Device{}, &SchemaError{Field: "name"}
	case w.SerialNumber == nil:
		return model.Device{}, &SchemaError{Field: "serialNumber"}
	case w.UDID == nil:
		return model.Device{}, &SchemaError{Field: "udid"}
	}

	d := model.Device{
		ID:              int(*w.ID),
		Name:            *w.Name,
		SerialNumber:    *w.SerialNumber,
		UDID:            *w.UDID,
		AssetTag:        w.AssetTag,
		Model:           w.Model,
		ModelIdentifier: w.ModelIdentifier,
		OSVersion:       w.OSVersion,
		WifiMacAddress:  w.WifiMacAddress,
		Username:        w.Username,
	}
	if w.Location != nil {
		if d.Username == "" {
			d.Username = w.Location.Username
		}
		d.Room = w.Location.Room
		d.Building = string(w.Location.Building)
	}
	if w.IOS != nil {
		if d.OSVersion == "" {
			d.OSVersion = w.IOS.OSVersion
		}
		if d.Model == "" {
			d.Model = w.IOS.Model
		}
	}
	return d, nil
}

func decodeDevice(data []byte) (model.Device, error) {
	var w wireDevice
	if err := json.Unmarshal(data, &w); err != nil {
		return model.Device{}, &SchemaError{Field: "device", Err: err}
	}
	return w.toDevice()
}

func toDevices(ws []wireDevice) ([]model.Device, error) {
	out := make([]model.Device, 0, len(ws))
	for i, w := range ws {
		d, err := w.toDevice()
		if err != nil {
			return nil, fmt.Errorf("device %d: %w", i, err)
		}
		out = append(out, d)
	}
	return out, nil
}

func decodeDetail(data []byte) (model.DeviceDetail, error) {
	device, err := decodeDevice(data)
	if err != nil {
		return model.DeviceDetail{}, err
	}
	var attrs map[string]any
	if err := json.Unmarshal(data, &attrs); err != nil {
		return model.DeviceDetail{}, &SchemaError{Field: "detail", Err: err}
	}
	detail := model.DeviceDetail{Device: device, Attributes: attrs}
	if loc, ok := attrs["location"].(map[string]any); ok {
		detail.Location = loc
	}
	if ios, ok := attrs["ios"].(map[string]any); ok {
		detail.IOS = ios
	}
	return detail, nil
}
