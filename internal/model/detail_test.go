package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeviceDetailFlatten(t *testing.T) {
	d := DeviceDetail{
		Attributes: map[string]any{
			"id":       float64(7),
			"name":     "iPad-Old",
			"location": map[string]any{"room": "ignored"},
			"tags":     []any{"a"},
		},
		Location: map[string]any{
			"room":     "Library",
			"building": map[string]any{"id": float64(2), "name": "Upper School"},
			"groups":   []any{"x"},
		},
		IOS: map[string]any{
			"osVersion":    "17.4",
			"applications": []any{map[string]any{"name": "Pages"}, map[string]any{"name": "Keynote"}},
			"network": map[string]any{
				"carrier": "none",
				"roaming": false,
			},
		},
	}

	flat := d.Flatten()
	assert.Equal(t, float64(7), flat["id"])
	assert.Equal(t, "iPad-Old", flat["name"])
	assert.NotContains(t, flat, "location")
	assert.NotContains(t, flat, "tags")
	assert.Equal(t, "Library", flat["location_room"])
	assert.Equal(t, "Upper School", flat["location_building_name"])
	assert.NotContains(t, flat, "location_groups")
	assert.Equal(t, "17.4", flat["osVersion"])
	assert.Equal(t, 2, flat["application_count"])
	assert.Equal(t, "none", flat["network_carrier"])
	assert.Equal(t, false, flat["network_roaming"])
}

func TestFlatKeysSortedUnion(t *testing.T) {
	rows := []map[string]any{
		{"b": 1, "a": 2},
		{"c": 3, "a": 4},
	}
	assert.Equal(t, []string{"a", "b", "c"}, FlatKeys(rows))
}
