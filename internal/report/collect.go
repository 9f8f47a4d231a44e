package report

import (
	"context"

	"github.com/pinecrest/jamfctl/internal/model"
)

// Inventory is the device source a report reads from. *jamf.DeviceService
// satisfies it.
type Inventory interface {
	ListAll(ctx context.Context) ([]model.Device, error)
	Details(ctx context.Context, devices []model.Device) ([]model.DeviceDetail, error)
}

// Collect lists every device. The inventory list carries no location, so
// unless quick is set each device's detail record is fetched to fill in
// building and room.
func Collect(ctx context.Context, inv Inventory, quick bool) ([]model.Device, error) {
	devices, err := inv.ListAll(ctx)
	if err != nil || quick {
		return devices, err
	}
	details, err := inv.Details(ctx, devices)
	if err != nil {
		return nil, err
	}
	out := make([]model.Device, 0, len(details))
	for _, d := range details {
		out = append(out, d.Device)
	}
	return out, nil
}
