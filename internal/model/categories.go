package model

import "strings"

// Family groups devices by Apple product line.
type Family string

const (
	FamilyIPad     Family = "iPad"
	FamilyIPadAir  Family = "iPad Air"
	FamilyIPadPro  Family = "iPad Pro"
	FamilyIPadMini Family = "iPad mini"
	FamilyIPhone   Family = "iPhone"
	FamilyAppleTV  Family = "Apple TV"
	FamilyOther    Family = "Other"
)

// familyPatterns is checked in order; the more specific iPad lines must
// come before plain "ipad".
var familyPatterns = []struct {
	pattern string
	family  Family
}{
	{"ipad air", FamilyIPadAir},
	{"ipad pro", FamilyIPadPro},
	{"ipad mini", FamilyIPadMini},
	{"ipad", FamilyIPad},
	{"iphone", FamilyIPhone},
	{"apple tv", FamilyAppleTV},
	{"appletv", FamilyAppleTV},
}

// ClassifyModel determines the product family from the marketing model name,
// falling back to the model identifier (e.g. "iPad7,5").
func ClassifyModel(modelName, identifier string) Family {
	lower := strings.ToLower(modelName)
	for _, p := range familyPatterns {
		if strings.Contains(lower, p.pattern) {
			return p.family
		}
	}

	id := strings.ToLower(identifier)
	switch {
	case strings.HasPrefix(id, "ipad"):
		return FamilyIPad
	case strings.HasPrefix(id, "iphone"):
		return FamilyIPhone
	case strings.HasPrefix(id, "appletv"):
		return FamilyAppleTV
	}
	return FamilyOther
}
