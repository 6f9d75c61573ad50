package storage

import (
	"context"
	"fmt"

	"github.com/immune-gmbh/hwdb/pkg/storage/models"
)

// GetOrCreateDriver returns the driver identified by (packageName, name),
// creating it if it does not exist, yet. An empty packageName means the
// package is unknown.
func (tx *Tx) GetOrCreateDriver(
	ctx context.Context,
	packageName string,
	name string,
) (*models.HWDriver, error) {
	cacheKey := fmt.Sprintf("hw_driver\x00%s\x00%s", packageName, name)
	if row, ok := tx.lookupIdentity(cacheKey); ok {
		drv := row.(models.HWDriver)
		return &drv, nil
	}

	drv := models.HWDriver{
		PackageName: packageName,
		Name:        name,
	}
	id, err := tx.getOrInsert(ctx, "hw_driver", &drv, func() int64 { return drv.ID },
		"`package_name` = ? AND `name` = ?", packageName, name)
	if err != nil {
		return nil, err
	}
	drv.ID = id

	tx.rememberIdentity(cacheKey, drv)
	return &drv, nil
}

// GetOrCreateDeviceDriverLink returns the link between the device and
// the driver, creating it if it does not exist, yet. A nil driverID means
// "no specific driver".
func (tx *Tx) GetOrCreateDeviceDriverLink(
	ctx context.Context,
	deviceID int64,
	driverID *int64,
) (*models.HWDeviceDriverLink, error) {
	cacheKey := fmt.Sprintf("hw_device_driver_link\x00%d", deviceID)
	where := "`device_id` = ? AND `driver_id` IS NULL"
	args := []any{deviceID}
	if driverID != nil {
		cacheKey += fmt.Sprintf("\x00%d", *driverID)
		where = "`device_id` = ? AND `driver_id` = ?"
		args = append(args, *driverID)
	}
	if row, ok := tx.lookupIdentity(cacheKey); ok {
		link := row.(models.HWDeviceDriverLink)
		return &link, nil
	}

	link := models.HWDeviceDriverLink{
		DeviceID: deviceID,
		DriverID: driverID,
	}
	id, err := tx.getOrInsert(ctx, "hw_device_driver_link", &link, func() int64 { return link.ID },
		where, args...)
	if err != nil {
		return nil, err
	}
	link.ID = id

	tx.rememberIdentity(cacheKey, link)
	return &link, nil
}

// CreateSubmissionDevice inserts the submission device and sets its ID.
func (tx *Tx) CreateSubmissionDevice(
	ctx context.Context,
	submissionDevice *models.HWSubmissionDevice,
) error {
	if tx.isClosed {
		return ErrTxClosed{}
	}
	id, err := insertRow(ctx, tx.tx, "hw_submission_device", submissionDevice)
	if err != nil {
		return err
	}
	submissionDevice.ID = id
	return nil
}
