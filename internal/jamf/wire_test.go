package jamf

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexID(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{`7`, 7, false},
		{`"7"`, 7, false},
		{`" 42 "`, 42, false},
		{`"abc"`, 0, true},
		{`7.5`, 0, true},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var id flexID
			err := json.Unmarshal([]byte(tt.input), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, int(id))
		})
	}
}

func TestExpiryTime(t *testing.T) {
	want := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var e expiryTime
	require.NoError(t, json.Unmarshal([]byte(`1714564800000`), &e))
	assert.True(t, want.Equal(e.Time))

	require.NoError(t, json.Unmarshal([]byte(`"2024-05-01T12:00:00Z"`), &e))
	assert.True(t, want.Equal(e.Time))

	require.NoError(t, json.Unmarshal([]byte(`"1714564800000"`), &e))
	assert.True(t, want.Equal(e.Time))

	require.NoError(t, json.Unmarshal([]byte(`null`), &e))
	assert.True(t, e.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`"next tuesday"`), &e))
}

func TestTokenExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("any key"))
	require.NoError(t, err)

	assert.True(t, exp.Equal(tokenExpiry(token)))
	assert.True(t, tokenExpiry("not-a-jwt").IsZero())
}

func TestDecodeDevice(t *testing.T) {
	d, err := decodeDevice([]byte(`{
		"id": 7,
		"name": "iPad-Old",
		"serialNumber": "ABC123",
		"udid": "U-1",
		"location": {"username": "jdoe", "room": "B12", "building": "Upper School"},
		"ios": {"osVersion": "17.4", "model": "iPad Air 2"}
	}`))
	require.NoError(t, err)
	assert.Equal(t, 7, d.ID)
	assert.Equal(t, "jdoe", d.Username)
	assert.Equal(t, "B12", d.Room)
	assert.Equal(t, "Upper School", d.Building)
	assert.Equal(t, "17.4", d.OSVersion)
	assert.Equal(t, "iPad Air 2", d.Model)
}

func TestDecodeDeviceMissingFields(t *testing.T) {
	tests := []struct {
		body  string
		field string
	}{
		{`{"name":"a","serialNumber":"b","udid":"c"}`, "id"},
		{`{"id":1,"serialNumber":"b","udid":"c"}`, "name"},
		{`{"id":1,"name":"a","udid":"c"}`, "serialNumber"},
		{`{"id":1,"name":"a","serialNumber":"b"}`, "udid"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			_, err := decodeDevice([]byte(tt.body))
			var se *SchemaError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.field, se.Field)
		})
	}

	_, err := decodeDevice([]byte(`{"id":{"nested":true}}`))
	var se *SchemaError
	assert.ErrorAs(t, err, &se)
}
