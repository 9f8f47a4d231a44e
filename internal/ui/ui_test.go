package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pinecrest/jamfctl/internal/model"
)

func TestFormatError(t *testing.T) {
	out := FormatError("Device not found", "serial ABC123", "check the serial number")
	assert.Contains(t, out, "Error: Device not found")
	assert.Contains(t, out, "serial ABC123")
	assert.Contains(t, out, "Hint: check the serial number")

	bare := FormatError("boom", "", "")
	assert.NotContains(t, bare, "Hint")
}

func TestDeviceTable(t *testing.T) {
	out := DeviceTable([]model.Device{
		{ID: 7, Name: "iPad-Old", SerialNumber: "ABC123", AssetTag: "200000123"},
	})
	assert.Contains(t, out, "Serial")
	assert.Contains(t, out, "iPad-Old")
	assert.Contains(t, out, "ABC123")
	assert.Contains(t, out, "200000123")
}

func TestFailedDoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { Failed("iPad-Old", errors.New("boom")) })
}
