package jamf

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pinecrest/jamfctl/internal/jamftest"
)

const (
	testUser     = "apiuser"
	testPassword = "s3cret"
)

func ipadOld() jamftest.Device {
	return jamftest.Device{
		ID:           7,
		Name:         "iPad-Old",
		SerialNumber: "ABC123",
		UDID:         "U-1",
		Model:        "iPad 6th Generation (Wi-Fi)",
		OSVersion:    "17.4",
		WifiMac:      "aa:bb:cc:dd:ee:01",
		Building:     "Upper School",
		Room:         "Library",
		Applications: []string{"Pages", "Keynote"},
	}
}

func cartDevices() []jamftest.Device {
	return []jamftest.Device{
		ipadOld(),
		{ID: 8, Name: "fi-cartA-001", SerialNumber: "DMP001", UDID: "U-2", AssetTag: "2001234"},
		{ID: 9, Name: "fi-cartA-002", SerialNumber: "DMP002", UDID: "U-3", AssetTag: "000200999"},
		{ID: 10, Name: "fi-cartA-002", SerialNumber: "DMP0021", UDID: "U-4"},
		{ID: 11, Name: "library-ipad", SerialNumber: "XYZ999", UDID: "U-5"},
	}
}

func startServer(t *testing.T, devices ...jamftest.Device) (*jamftest.Server, *httptest.Server) {
	t.Helper()
	fake := jamftest.New(testUser, testPassword, devices...)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv
}

func testOptions(t *testing.T, srv *httptest.Server) Options {
	return Options{
		ServerURL:   srv.URL,
		Credentials: Credentials{Username: testUser, Password: testPassword},
		HTTPClient:  srv.Client(),
		Logger:      zaptest.NewLogger(t),
	}
}

func authenticate(t *testing.T, srv *httptest.Server) *Session {
	t.Helper()
	s, err := Authenticate(context.Background(), testOptions(t, srv))
	require.NoError(t, err)
	return s
}
