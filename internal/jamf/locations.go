package jamf

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pinecrest/jamfctl/internal/model"
)

// Jamf Pro API endpoints for the objects a device location refers to.
const (
	buildingsEndpoint   = "v1/buildings"
	departmentsEndpoint = "v1/departments"
	sitesEndpoint       = "settings/sites"
)

type wireNamed struct {
	ID   flexID `json:"id"`
	Name string `json:"name"`
}

type namedPage struct {
	TotalCount int         `json:"totalCount"`
	Results    []wireNamed `json:"results"`
}

func toNamed(ws []wireNamed) []model.NamedObject {
	out := make([]model.NamedObject, 0, len(ws))
	for _, w := range ws {
		out = append(out, model.NamedObject{ID: int(w.ID), Name: w.Name})
	}
	return out
}

// listPaged collects every page of a paginated Jamf Pro API collection.
func (ds *DeviceService) listPaged(ctx context.Context, endpoint string) ([]model.NamedObject, error) {
	var all []wireNamed
	for page := 0; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("page-size", strconv.Itoa(ds.session.pageSize))

		var p namedPage
		if _, err := ds.session.pro(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil, &p); err != nil {
			return nil, fmt.Errorf("listing %s: %w", endpoint, err)
		}
		all = append(all, p.Results...)
		if len(p.Results) == 0 || len(all) >= p.TotalCount {
			break
		}
	}
	return toNamed(all), nil
}

// Buildings lists every building.
func (ds *DeviceService) Buildings(ctx context.Context) ([]model.NamedObject, error) {
	return ds.listPaged(ctx, buildingsEndpoint)
}

// Departments lists every department.
func (ds *DeviceService) Departments(ctx context.Context) ([]model.NamedObject, error) {
	return ds.listPaged(ctx, departmentsEndpoint)
}

// Sites lists every site. The server returns them in one unpaged list.
func (ds *DeviceService) Sites(ctx context.Context) ([]model.NamedObject, error) {
	var ws []wireNamed
	if _, err := ds.session.pro(ctx, http.MethodGet, sitesEndpoint, nil, &ws); err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	return toNamed(ws), nil
}

// Building returns the building with exactly this name.
func (ds *DeviceService) Building(ctx context.Context, name string) (model.NamedObject, error) {
	return findNamed(ctx, "building", name, ds.Buildings)
}

// Department returns the department with exactly this name.
func (ds *DeviceService) Department(ctx context.Context, name string) (model.NamedObject, error) {
	return findNamed(ctx, "department", name, ds.Departments)
}

// Site returns the site with exactly this name.
func (ds *DeviceService) Site(ctx context.Context, name string) (model.NamedObject, error) {
	return findNamed(ctx, "site", name, ds.Sites)
}

// findNamed matches names exactly, including case.
func findNamed(ctx context.Context, kind, name string, list func(context.Context) ([]model.NamedObject, error)) (model.NamedObject, error) {
	name = strings.TrimSpace(name)
	objects, err := list(ctx)
	if err != nil {
		return model.NamedObject{}, err
	}
	for _, o := range objects {
		if o.Name == name {
			return o, nil
		}
	}
	return model.NamedObject{}, &NotFoundError{Kind: kind, Field: "name", Value: name}
}
