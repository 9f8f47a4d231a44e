// Package report summarizes a device inventory.
package report

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pinecrest/jamfctl/internal/model"
)

const (
	noBuilding = "(none)"
	noVersion  = "unknown"
)

// Count is one row of a grouped summary.
type Count struct {
	Label string
	Count int
}

// Summary is the grouped view of an inventory.
type Summary struct {
	Total           int
	ByFamily        []Count
	ByOSVersion     []Count
	ByBuilding      []Count
	MissingAssetTag []model.Device
}

// familyOrder is the display order of product families.
var familyOrder = []model.Family{
	model.FamilyIPad,
	model.FamilyIPadAir,
	model.FamilyIPadPro,
	model.FamilyIPadMini,
	model.FamilyIPhone,
	model.FamilyAppleTV,
	model.FamilyOther,
}

// Summarize groups devices by family, OS version and building, and
// collects devices that have no asset tag.
func Summarize(devices []model.Device) Summary {
	s := Summary{Total: len(devices)}

	families := map[model.Family]int{}
	versions := map[string]int{}
	buildings := map[string]int{}

	for _, d := range devices {
		families[d.Family()]++

		v := strings.TrimSpace(d.OSVersion)
		if v == "" {
			v = noVersion
		}
		versions[v]++

		b := strings.TrimSpace(d.Building)
		if b == "" {
			b = noBuilding
		}
		buildings[b]++

		if strings.TrimSpace(d.AssetTag) == "" {
			s.MissingAssetTag = append(s.MissingAssetTag, d)
		}
	}

	for _, f := range familyOrder {
		if n := families[f]; n > 0 {
			s.ByFamily = append(s.ByFamily, Count{Label: string(f), Count: n})
		}
	}

	s.ByOSVersion = counts(versions)
	sort.SliceStable(s.ByOSVersion, func(i, j int) bool {
		return versionLess(s.ByOSVersion[j].Label, s.ByOSVersion[i].Label)
	})

	s.ByBuilding = counts(buildings)
	sort.SliceStable(s.ByBuilding, func(i, j int) bool {
		a, b := s.ByBuilding[i], s.ByBuilding[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Label < b.Label
	})

	sort.Slice(s.MissingAssetTag, func(i, j int) bool {
		return s.MissingAssetTag[i].ID < s.MissingAssetTag[j].ID
	})
	return s
}

func counts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// versionLess compares dotted versions numerically ("9.3" < "17.4"). Labels
// that are not versions sort before all versions.
func versionLess(a, b string) bool {
	pa, okA := parseVersion(a)
	pb, okB := parseVersion(b)
	if okA != okB {
		return !okA
	}
	if !okA {
		return a < b
	}
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var x, y int
		if i < len(pa) {
			x = pa[i]
		}
		if i < len(pb) {
			y = pb[i]
		}
		if x != y {
			return x < y
		}
	}
	return false
}

func parseVersion(s string) ([]int, bool) {
	parts := strings.Split(s, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, false
		}
		out[i] = n
	}
	return out, true
}
