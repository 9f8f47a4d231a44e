package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pinecrest/jamfctl/internal/ui"
)

// Render formats the summary as titled terminal tables.
func Render(s Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d devices\n\n", ui.Bold("Inventory:"), s.Total)

	section(&b, "By family", "Family", s.ByFamily)
	section(&b, "By OS version", "Version", s.ByOSVersion)
	section(&b, "By building", "Building", s.ByBuilding)

	if len(s.MissingAssetTag) > 0 {
		b.WriteString(ui.Bold(fmt.Sprintf("Missing asset tag (%d)", len(s.MissingAssetTag))) + "\n")
		b.WriteString(ui.DeviceTable(s.MissingAssetTag) + "\n")
	}
	return b.String()
}

func section(b *strings.Builder, title, heading string, counts []Count) {
	if len(counts) == 0 {
		return
	}
	rows := make([][]string, len(counts))
	for i, c := range counts {
		rows[i] = []string{c.Label, strconv.Itoa(c.Count)}
	}
	b.WriteString(ui.Bold(title) + "\n")
	b.WriteString(ui.Table([]string{heading, "Devices"}, rows) + "\n\n")
}
