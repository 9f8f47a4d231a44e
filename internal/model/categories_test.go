package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyModel(t *testing.T) {
	tests := []struct {
		model      string
		identifier string
		expected   Family
	}{
		{"iPad 6th Generation (Wi-Fi)", "iPad7,5", FamilyIPad},
		{"iPad Air (3rd Generation)", "iPad11,3", FamilyIPadAir},
		{"iPad Pro (11-inch)", "iPad8,1", FamilyIPadPro},
		{"iPad mini 5", "iPad11,1", FamilyIPadMini},
		{"iPhone 12", "iPhone13,2", FamilyIPhone},
		{"Apple TV 4K", "AppleTV6,2", FamilyAppleTV},
		{"", "iPad7,6", FamilyIPad},
		{"", "AppleTV5,3", FamilyAppleTV},
		{"", "", FamilyOther},
		{"Vision Pro", "RealityDevice14,1", FamilyOther},
	}

	for _, tt := range tests {
		t.Run(tt.model+"/"+tt.identifier, func(t *testing.T) {
			assert.Equal(t, tt.expected, ClassifyModel(tt.model, tt.identifier))
		})
	}
}

func TestDeviceFamily(t *testing.T) {
	d := Device{Model: "iPad Air 2"}
	assert.Equal(t, FamilyIPadAir, d.Family())
}
