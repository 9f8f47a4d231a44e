package jamf

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinecrest/jamfctl/internal/model"
)

func TestBuildingsFollowPages(t *testing.T) {
	fake, srv := startServer(t, ipadOld())
	for i := 1; i <= 4; i++ {
		fake.AddBuilding(fmt.Sprintf("Annex %d", i))
	}
	opts := testOptions(t, srv)
	opts.PageSize = 2
	s, err := Authenticate(context.Background(), opts)
	require.NoError(t, err)
	ds := NewDeviceService(s)

	buildings, err := ds.Buildings(context.Background())
	require.NoError(t, err)
	require.Len(t, buildings, 5)
	assert.Equal(t, model.NamedObject{ID: 1, Name: "Upper School"}, buildings[0])
	assert.Equal(t, "Annex 4", buildings[4].Name)
	assert.Contains(t, fake.Requests(), "GET /api/v1/buildings")
}

func TestLookupByName(t *testing.T) {
	fake, srv := startServer(t, ipadOld())
	science := fake.AddDepartment("Science")
	north := fake.AddSite("North Campus")
	fake.AddSite("South Campus")
	ds := NewDeviceService(authenticate(t, srv))
	ctx := context.Background()

	b, err := ds.Building(ctx, "Upper School")
	require.NoError(t, err)
	assert.Equal(t, 1, b.ID)

	d, err := ds.Department(ctx, " Science ")
	require.NoError(t, err)
	assert.Equal(t, science, d.ID)

	site, err := ds.Site(ctx, "North Campus")
	require.NoError(t, err)
	assert.Equal(t, model.NamedObject{ID: north, Name: "North Campus"}, site)
}

func TestLookupByNameIsExact(t *testing.T) {
	_, srv := startServer(t, ipadOld())
	ds := NewDeviceService(authenticate(t, srv))

	_, err := ds.Building(context.Background(), "upper school")
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "building", nf.Kind)
	assert.Equal(t, `no building with name "upper school"`, nf.Error())

	_, err = ds.Site(context.Background(), "Anywhere")
	assert.True(t, IsNotFound(err))
}
