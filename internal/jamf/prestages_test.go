package jamf

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrestageScope(t *testing.T) {
	fake, srv := startServer(t, cartDevices()...)
	fake.AddPrestage(3, "DMP001", "DMP002")
	ds := NewDeviceService(authenticate(t, srv))

	scope, err := ds.PrestageScope(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, scope.PrestageID)
	assert.Equal(t, []string{"DMP001", "DMP002"}, scope.SerialNumbers)
	assert.Equal(t, 0, scope.VersionLock)

	_, err = ds.PrestageScope(context.Background(), 4)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "prestage", nf.Kind)
}

func TestAddToPrestage(t *testing.T) {
	fake, srv := startServer(t, cartDevices()...)
	fake.AddPrestage(3, "DMP001")
	ds := NewDeviceService(authenticate(t, srv))
	ctx := context.Background()

	added, err := ds.AddToPrestage(ctx, 3, 7)
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, []string{"DMP001", "ABC123"}, fake.PrestageSerials(3))

	added, err = ds.AddToPrestage(ctx, 3, 7)
	require.NoError(t, err)
	assert.False(t, added)

	id, ok, err := ds.PrestageOf(ctx, "ABC123")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, id)

	scope, err := ds.PrestageScope(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, scope.VersionLock)
}

func TestAddToPrestageRejectsStaleVersionLock(t *testing.T) {
	fake, srv := startServer(t, cartDevices()...)
	fake.AddPrestage(3)
	ds := NewDeviceService(authenticate(t, srv))
	ctx := context.Background()

	scope, err := ds.PrestageScope(ctx, 3)
	require.NoError(t, err)
	fake.BumpPrestage(3)

	scope.SerialNumbers = append(scope.SerialNumbers, "ABC123")
	err = ds.putPrestageScope(ctx, scope)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, http.StatusConflict, ve.StatusCode)
	assert.Empty(t, fake.PrestageSerials(3))
}

func TestAddToPrestageWhileInAnother(t *testing.T) {
	fake, srv := startServer(t, cartDevices()...)
	fake.AddPrestage(3, "ABC123")
	fake.AddPrestage(5)
	ds := NewDeviceService(authenticate(t, srv))

	_, err := ds.AddToPrestage(context.Background(), 5, 7)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, http.StatusBadRequest, ve.StatusCode)
}

func TestRemoveFromPrestage(t *testing.T) {
	fake, srv := startServer(t, cartDevices()...)
	fake.AddPrestage(3, "DMP001", "ABC123", "DMP002")
	ds := NewDeviceService(authenticate(t, srv))
	ctx := context.Background()

	from, removed, err := ds.RemoveFromPrestage(ctx, 7)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 3, from)
	assert.Equal(t, []string{"DMP001", "DMP002"}, fake.PrestageSerials(3))

	_, removed, err = ds.RemoveFromPrestage(ctx, 7)
	require.NoError(t, err)
	assert.False(t, removed)

	_, _, err = ds.RemoveFromPrestage(ctx, 99)
	assert.True(t, IsNotFound(err))
}

func TestRemoveLastSerialFromPrestage(t *testing.T) {
	fake, srv := startServer(t, ipadOld())
	fake.AddPrestage(3, "ABC123")
	ds := NewDeviceService(authenticate(t, srv))

	_, removed, err := ds.RemoveFromPrestage(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, fake.PrestageSerials(3))
}
