package jamf

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/pinecrest/jamfctl/internal/model"
)

const mobileDeviceEndpoint = "inventory/obj/mobileDevice"

// DeviceService provides the mobile device endpoints over a Session.
type DeviceService struct {
	session *Session
}

// NewDeviceService creates a DeviceService.
func NewDeviceService(s *Session) *DeviceService {
	return &DeviceService{session: s}
}

func deviceEndpoint(id int, suffix string) string {
	ep := mobileDeviceEndpoint + "/" + strconv.Itoa(id)
	if suffix != "" {
		ep += "/" + suffix
	}
	return ep
}

// Get fetches one device by its JAMF ID.
func (ds *DeviceService) Get(ctx context.Context, id int) (model.Device, error) {
	resp, err := ds.session.call(ctx, http.MethodGet, deviceEndpoint(id, ""), nil, nil)
	if err != nil {
		return model.Device{}, notFoundByID(err, id)
	}
	return decodeDevice(resp.Body)
}

// Detail fetches the extended inventory record of a device.
func (ds *DeviceService) Detail(ctx context.Context, id int) (model.DeviceDetail, error) {
	resp, err := ds.session.call(ctx, http.MethodGet, deviceEndpoint(id, "detail"), nil, nil)
	if err != nil {
		return model.DeviceDetail{}, notFoundByID(err, id)
	}
	return decodeDetail(resp.Body)
}

// Details fetches the detail record of every given device, one at a time.
func (ds *DeviceService) Details(ctx context.Context, devices []model.Device) ([]model.DeviceDetail, error) {
	out := make([]model.DeviceDetail, 0, len(devices))
	for _, d := range devices {
		detail, err := ds.Detail(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("device %d: %w", d.ID, err)
		}
		out = append(out, detail)
	}
	return out, nil
}

// Update changes inventory attributes of a device and returns the device
// as the server reports it afterwards.
func (ds *DeviceService) Update(ctx context.Context, id int, update model.DeviceUpdate) (model.Device, error) {
	if update.Empty() {
		return model.Device{}, &ValidationError{
			Field:   "update",
			Value:   strconv.Itoa(id),
			Message: "nothing to update",
		}
	}
	if _, err := ds.session.call(ctx, http.MethodPost, deviceEndpoint(id, "update"), update, nil); err != nil {
		return model.Device{}, rejected(notFoundByID(err, id), "update", strconv.Itoa(id))
	}
	ds.session.logger.Info("updated device", zap.Int("id", id))
	return ds.Get(ctx, id)
}

// notFoundByID maps a 404 response to a *NotFoundError for the given ID.
func notFoundByID(err error, id int) error {
	if statusCode(err) == http.StatusNotFound {
		return &NotFoundError{Field: "id", Value: strconv.Itoa(id)}
	}
	return err
}

// rejected maps 400/409/422 responses to a *ValidationError.
func rejected(err error, field, value string) error {
	switch code := statusCode(err); code {
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		msg := "rejected by server"
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Body != "" {
			msg = apiErr.Body
		}
		return &ValidationError{Field: field, Value: value, Message: msg, StatusCode: code}
	}
	return err
}
