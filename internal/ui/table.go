package ui

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/pinecrest/jamfctl/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
)

// Table renders rows under headers with a rounded border.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	return t.String()
}

// DeviceTable renders the columns an operator needs to identify a device.
func DeviceTable(devices []model.Device) string {
	rows := make([][]string, len(devices))
	for i, d := range devices {
		rows[i] = []string{
			strconv.Itoa(d.ID),
			d.Name,
			d.SerialNumber,
			d.AssetTag,
			d.Model,
			d.OSVersion,
		}
	}
	return Table([]string{"ID", "Name", "Serial", "Asset Tag", "Model", "OS"}, rows)
}
