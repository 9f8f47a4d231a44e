package jamf

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pinecrest/jamfctl/internal/model"
)

const (
	searchEndpoint = "inventory/searchMobileDevices"
	matchPath      = "mobiledevices/match"
)

// SearchField names the single device attribute a SearchQuery filters on.
type SearchField string

const (
	SearchSerial   SearchField = "serial"
	SearchName     SearchField = "name"
	SearchUDID     SearchField = "udid"
	SearchAssetTag SearchField = "asset_tag"
)

// SearchFields lists the accepted search fields.
var SearchFields = []SearchField{SearchSerial, SearchName, SearchUDID, SearchAssetTag}

// ParseSearchField converts a user supplied field name.
func ParseSearchField(s string) (SearchField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "serial", "serial_number", "serialnumber":
		return SearchSerial, nil
	case "name":
		return SearchName, nil
	case "udid":
		return SearchUDID, nil
	case "asset_tag", "assettag", "asset":
		return SearchAssetTag, nil
	}
	return "", &ValidationError{
		Field:   "search field",
		Value:   s,
		Message: "must be one of serial, name, udid, asset_tag",
	}
}

// SearchQuery is a predicate over one device field.
type SearchQuery struct {
	Field SearchField
	Value string
}

type searchRequest struct {
	PageNumber   int    `json:"pageNumber"`
	PageSize     int    `json:"pageSize"`
	Name         string `json:"name,omitempty"`
	SerialNumber string `json:"serialNumber,omitempty"`
	UDID         string `json:"udid,omitempty"`
	AssetTag     string `json:"assetTag,omitempty"`
}

type searchResponse struct {
	TotalCount int          `json:"totalCount"`
	Results    []wireDevice `json:"results"`
}

// ListAll returns the full mobile device inventory.
func (ds *DeviceService) ListAll(ctx context.Context) ([]model.Device, error) {
	var ws []wireDevice
	if _, err := ds.session.call(ctx, http.MethodGet, mobileDeviceEndpoint, nil, &ws); err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	return toDevices(ws)
}

// Search runs a server-side search and collects every page of results.
func (ds *DeviceService) Search(ctx context.Context, q SearchQuery) ([]model.Device, error) {
	value := strings.TrimSpace(q.Value)
	if value == "" {
		return nil, &ValidationError{Field: string(q.Field), Message: "a search term is required"}
	}

	req := searchRequest{PageSize: ds.session.pageSize}
	switch q.Field {
	case SearchSerial:
		req.SerialNumber = value
	case SearchName:
		req.Name = value
	case SearchUDID:
		req.UDID = value
	case SearchAssetTag:
		req.AssetTag = value
	default:
		return nil, &ValidationError{Field: "search field", Value: string(q.Field), Message: "unsupported search field"}
	}

	var results []wireDevice
	for {
		var page searchResponse
		if _, err := ds.session.call(ctx, http.MethodPost, searchEndpoint, req, &page); err != nil {
			return nil, fmt.Errorf("searching devices by %s: %w", q.Field, err)
		}
		results = append(results, page.Results...)
		if len(page.Results) == 0 || len(results) >= page.TotalCount {
			break
		}
		req.PageNumber++
	}
	return toDevices(results)
}

// SearchBySerial returns the device with exactly this serial number. The
// comparison is case-sensitive.
func (ds *DeviceService) SearchBySerial(ctx context.Context, serial string) (model.Device, error) {
	return ds.searchOne(ctx, SearchSerial, serial, func(d model.Device) string { return d.SerialNumber })
}

// SearchByUDID returns the device with exactly this UDID. The comparison is
// case-sensitive.
func (ds *DeviceService) SearchByUDID(ctx context.Context, udid string) (model.Device, error) {
	return ds.searchOne(ctx, SearchUDID, udid, func(d model.Device) string { return d.UDID })
}

// SearchByName returns every device with this name, compared without
// regard to case. Names are not unique, and no match yields an empty
// result rather than an error.
func (ds *DeviceService) SearchByName(ctx context.Context, name string) ([]model.Device, error) {
	return ds.searchExact(ctx, SearchName, name, strings.EqualFold, func(d model.Device) string { return d.Name })
}

// SearchByAssetTag returns every device carrying this asset tag, compared
// without regard to case.
func (ds *DeviceService) SearchByAssetTag(ctx context.Context, tag string) ([]model.Device, error) {
	return ds.searchExact(ctx, SearchAssetTag, tag, strings.EqualFold, func(d model.Device) string { return d.AssetTag })
}

// searchExact narrows the server's results, which may be prefix matches,
// to devices whose field is equal to value under equal.
func (ds *DeviceService) searchExact(ctx context.Context, field SearchField, value string, equal func(a, b string) bool, get func(model.Device) string) ([]model.Device, error) {
	found, err := ds.Search(ctx, SearchQuery{Field: field, Value: value})
	if err != nil {
		return nil, err
	}
	value = strings.TrimSpace(value)
	matches := make([]model.Device, 0, len(found))
	for _, d := range found {
		if equal(get(d), value) {
			matches = append(matches, d)
		}
	}
	return matches, nil
}

func (ds *DeviceService) searchOne(ctx context.Context, field SearchField, value string, get func(model.Device) string) (model.Device, error) {
	matches, err := ds.searchExact(ctx, field, value, sameString, get)
	if err != nil {
		return model.Device{}, err
	}
	if len(matches) == 0 {
		return model.Device{}, &NotFoundError{Field: string(field), Value: value}
	}
	return matches[0], nil
}

func sameString(a, b string) bool { return a == b }

// Find dispatches a query to the matching lookup and always returns a
// slice. Serial and UDID lookups that find nothing return *NotFoundError.
func (ds *DeviceService) Find(ctx context.Context, q SearchQuery) ([]model.Device, error) {
	switch q.Field {
	case SearchSerial:
		d, err := ds.SearchBySerial(ctx, q.Value)
		if err != nil {
			return nil, err
		}
		return []model.Device{d}, nil
	case SearchUDID:
		d, err := ds.SearchByUDID(ctx, q.Value)
		if err != nil {
			return nil, err
		}
		return []model.Device{d}, nil
	case SearchName:
		return ds.SearchByName(ctx, q.Value)
	case SearchAssetTag:
		return ds.SearchByAssetTag(ctx, q.Value)
	}
	return nil, &ValidationError{Field: "search field", Value: string(q.Field), Message: "unsupported search field"}
}

type matchResponse struct {
	XMLName xml.Name `xml:"mobile_devices"`
	Devices []struct {
		ID int `xml:"id"`
	} `xml:"mobile_device"`
}

// Match runs the classic API's match search, which looks at name, serial
// number, UDID, MAC addresses, asset tag and user in one go and accepts
// "*" as a wildcard. It returns the IDs of the matching devices.
func (ds *DeviceService) Match(ctx context.Context, query string) ([]int, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &ValidationError{Field: "match query", Value: query, Message: "query must not be empty"}
	}
	resp, err := ds.session.classic(ctx, http.MethodGet, matchPath+"/"+url.PathEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("matching %q: %w", query, err)
	}
	var m matchResponse
	if err := xml.Unmarshal(resp.Body, &m); err != nil {
		return nil, &SchemaError{Field: "mobile_devices", Err: err}
	}
	ids := make([]int, 0, len(m.Devices))
	for _, d := range m.Devices {
		ids = append(ids, d.ID)
	}
	return ids, nil
}
