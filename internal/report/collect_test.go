package report

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinecrest/jamfctl/internal/jamf"
	"github.com/pinecrest/jamfctl/internal/jamftest"
)

func deviceService(t *testing.T, devices ...jamftest.Device) *jamf.DeviceService {
	t.Helper()
	srv := httptest.NewServer(jamftest.New("apiuser", "s3cret", devices...))
	t.Cleanup(srv.Close)

	sess, err := jamf.Authenticate(context.Background(), jamf.Options{
		ServerURL:   srv.URL,
		Credentials: jamf.Credentials{Username: "apiuser", Password: "s3cret"},
		HTTPClient:  srv.Client(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sess.Close() })
	return jamf.NewDeviceService(sess)
}

func fleet() []jamftest.Device {
	return []jamftest.Device{
		{ID: 7, Name: "iPad-Old", SerialNumber: "ABC123", UDID: "U-1", Building: "Upper School", Room: "Library", OSVersion: "17.4"},
		{ID: 8, Name: "fi-cartA-001", SerialNumber: "DMP001", UDID: "U-2", Building: "Upper School"},
		{ID: 9, Name: "fi-cartA-002", SerialNumber: "DMP002", UDID: "U-3", Building: "Fine Arts"},
		{ID: 10, Name: "spare", SerialNumber: "DMP003", UDID: "U-4"},
	}
}

func TestCollectReadsLocationFromDetails(t *testing.T) {
	ds := deviceService(t, fleet()...)

	devices, err := Collect(context.Background(), ds, false)
	require.NoError(t, err)
	require.Len(t, devices, 4)
	assert.Equal(t, "Upper School", devices[0].Building)
	assert.Equal(t, "Library", devices[0].Room)

	s := Summarize(devices)
	assert.Equal(t, []Count{
		{"Upper School", 2},
		{"(none)", 1},
		{"Fine Arts", 1},
	}, s.ByBuilding)
}

func TestCollectQuickSkipsDetails(t *testing.T) {
	ds := deviceService(t, fleet()...)

	devices, err := Collect(context.Background(), ds, true)
	require.NoError(t, err)
	require.Len(t, devices, 4)

	s := Summarize(devices)
	assert.Equal(t, []Count{{"(none)", 4}}, s.ByBuilding)
}
