package export

import (
	"fmt"
	"slices"

	"github.com/pinecrest/jamfctl/internal/model"
)

// DefaultSheet is the sheet or document name used when a Table has none.
const DefaultSheet = "Devices"

// Table is an inventory in row form. Every row has len(Header) cells.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

// DeviceTable lays devices out in model.Columns order.
func DeviceTable(devices []model.Device) Table {
	t := Table{Name: DefaultSheet, Header: slices.Clone(model.Columns)}
	for _, d := range devices {
		t.Rows = append(t.Rows, d.Record())
	}
	return t
}

// DetailTable lays out detail records: the model.Columns first, then every
// flattened detail key in sorted order. Keys missing from a record are left
// empty.
func DetailTable(details []model.DeviceDetail) Table {
	flat := make([]map[string]any, len(details))
	for i, d := range details {
		flat[i] = d.Flatten()
	}

	var extra []string
	for _, k := range model.FlatKeys(flat) {
		if !slices.Contains(model.Columns, k) {
			extra = append(extra, k)
		}
	}

	t := Table{Name: DefaultSheet, Header: append(slices.Clone(model.Columns), extra...)}
	for i, d := range details {
		row := d.Record()
		for _, k := range extra {
			row = append(row, cell(flat[i][k]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func cell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; integral values print without ".0".
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprint(val)
	default:
		return fmt.Sprint(val)
	}
}
