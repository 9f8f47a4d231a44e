package model

import (
	"fmt"
	"sort"
)

// DeviceDetail is the extended inventory record returned by the detail
// endpoint. Nested sections are kept as decoded JSON so that new server
// fields show up in exports without code changes.
type DeviceDetail struct {
	Device
	Attributes map[string]any
	Location   map[string]any
	IOS        map[string]any
}

// Flatten turns the detail record into a single-level map suitable for a
// spreadsheet row. Scalar top-level attributes keep their names, location
// scalars are prefixed "location_", named location objects become
// "location_<key>_name", iOS scalars keep their names, the application list
// becomes "application_count" and network fields are prefixed "network_".
func (d DeviceDetail) Flatten() map[string]any {
	out := make(map[string]any)
	for k, v := range d.Attributes {
		if isScalar(v) {
			out[k] = v
		}
	}

	for k, v := range d.Location {
		switch val := v.(type) {
		case map[string]any:
			if name, ok := val["name"]; ok {
				out[fmt.Sprintf("location_%s_name", k)] = name
			}
		case []any:
			continue
		default:
			out["location_"+k] = val
		}
	}

	if d.IOS != nil {
		for k, v := range d.IOS {
			if isScalar(v) {
				out[k] = v
			}
		}
		if apps, ok := d.IOS["applications"].([]any); ok {
			out["application_count"] = len(apps)
		} else {
			out["application_count"] = 0
		}
		if network, ok := d.IOS["network"].(map[string]any); ok {
			for k, v := range network {
				out["network_"+k] = v
			}
		}
	}
	return out
}

// FlatKeys returns the union of keys over all flattened rows, sorted.
func FlatKeys(rows []map[string]any) []string {
	seen := make(map[string]bool)
	var keys []string
	for _, row := range rows {
		for k := range row {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

func isScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return false
	}
	return true
}
