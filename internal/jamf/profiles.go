package jamf

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"
)

const configurationProfilePath = "mobiledeviceconfigurationprofiles/id"

// ProfileDevice is a mobile device entry in a configuration profile scope.
type ProfileDevice struct {
	ID             int    `xml:"id"`
	Name           string `xml:"name,omitempty"`
	UDID           string `xml:"udid,omitempty"`
	WifiMacAddress string `xml:"wifi_mac_address,omitempty"`
}

// ConfigurationProfile is the part of a classic mobile device configuration
// profile that deals with exclusions.
type ConfigurationProfile struct {
	XMLName  xml.Name        `xml:"configuration_profile"`
	ID       int             `xml:"general>id"`
	Name     string          `xml:"general>name"`
	Excluded []ProfileDevice `xml:"scope>exclusions>mobile_devices>mobile_device"`
}

// Excludes reports whether the device is in the profile's exclusion list.
func (p *ConfigurationProfile) Excludes(deviceID int) bool {
	for _, d := range p.Excluded {
		if d.ID == deviceID {
			return true
		}
	}
	return false
}

// exclusionUpdate is the partial document PUT back to the server; only the
// mobile device exclusions are replaced. Nested structs keep an empty
// <mobile_devices/> element when the last exclusion is removed.
type exclusionUpdate struct {
	XMLName xml.Name       `xml:"configuration_profile"`
	Scope   exclusionScope `xml:"scope"`
}

type exclusionScope struct {
	Exclusions struct {
		MobileDevices struct {
			Devices []ProfileDevice `xml:"mobile_device"`
		} `xml:"mobile_devices"`
	} `xml:"exclusions"`
}

// Profile fetches a mobile device configuration profile.
func (ds *DeviceService) Profile(ctx context.Context, profileID int) (*ConfigurationProfile, error) {
	resp, err := ds.session.classic(ctx, http.MethodGet, configurationProfilePath+"/"+strconv.Itoa(profileID), nil)
	if err != nil {
		if statusCode(err) == http.StatusNotFound {
			return nil, &NotFoundError{Kind: "profile", Field: "id", Value: strconv.Itoa(profileID)}
		}
		return nil, err
	}
	var p ConfigurationProfile
	if err := xml.Unmarshal(resp.Body, &p); err != nil {
		return nil, &SchemaError{Field: "configuration_profile", Err: err}
	}
	return &p, nil
}

// SetProfileExclusion adds the device to, or removes it from, the
// exclusion list of a configuration profile. It reports whether the
// profile was changed; a device already in the requested state is left
// alone.
func (ds *DeviceService) SetProfileExclusion(ctx context.Context, profileID, deviceID int, exclude bool) (bool, error) {
	profile, err := ds.Profile(ctx, profileID)
	if err != nil {
		return false, err
	}
	if profile.Excludes(deviceID) == exclude {
		return false, nil
	}

	var excluded []ProfileDevice
	if exclude {
		device, err := ds.Get(ctx, deviceID)
		if err != nil {
			return false, err
		}
		excluded = append(profile.Excluded, ProfileDevice{
			ID:             device.ID,
			Name:           device.Name,
			UDID:           device.UDID,
			WifiMacAddress: device.WifiMacAddress,
		})
	} else {
		for _, d := range profile.Excluded {
			if d.ID != deviceID {
				excluded = append(excluded, d)
			}
		}
	}

	var update exclusionUpdate
	update.Scope.Exclusions.MobileDevices.Devices = excluded
	body, err := xml.Marshal(update)
	if err != nil {
		return false, fmt.Errorf("encoding profile scope: %w", err)
	}
	if _, err := ds.session.classic(ctx, http.MethodPut, configurationProfilePath+"/"+strconv.Itoa(profileID), body); err != nil {
		return false, err
	}
	ds.session.logger.Info("updated profile exclusions",
		zap.Int("profile", profileID),
		zap.Int("device", deviceID),
		zap.Bool("excluded", exclude))
	return true, nil
}
