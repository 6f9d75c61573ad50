package storage

import (
	"context"
	"fmt"

	"github.com/immune-gmbh/hwdb/pkg/storage/models"
)

// GetOrCreateDevice returns the device identified by (bus, vendorID, productID),
// creating it with the given name if it does not exist, yet.
func (tx *Tx) GetOrCreateDevice(
	ctx context.Context,
	bus models.HWBus,
	vendorID string,
	productID string,
	name string,
) (*models.HWDevice, error) {
	cacheKey := fmt.Sprintf("hw_device\x00%s\x00%s\x00%s", bus, vendorID, productID)
	if row, ok := tx.lookupIdentity(cacheKey); ok {
		device := row.(models.HWDevice)
		return &device, nil
	}

	device := models.HWDevice{
		Bus:       bus,
		VendorID:  vendorID,
		ProductID: productID,
		Name:      name,
	}
	id, err := tx.getOrInsert(ctx, "hw_device", &device, func() int64 { return device.ID },
		"`bus` = ? AND `vendor_id` = ? AND `product_id` = ?", bus.String(), vendorID, productID)
	if err != nil {
		return nil, err
	}
	device.ID = id

	tx.rememberIdentity(cacheKey, device)
	return &device, nil
}

// EnsureVendorName makes sure the vendor ID of the bus is mapped to a vendor
// name. An already existing mapping is left as is.
func (tx *Tx) EnsureVendorName(
	ctx context.Context,
	bus models.HWBus,
	vendorID string,
	vendorName string,
) error {
	cacheKey := fmt.Sprintf("hw_vendor_id\x00%s\x00%s", bus, vendorID)
	if _, ok := tx.lookupIdentity(cacheKey); ok {
		return nil
	}

	name := models.HWVendorName{Name: vendorName}
	nameID, err := tx.getOrInsert(ctx, "hw_vendor_name", &name, func() int64 { return name.ID },
		"`name` = ?", vendorName)
	if err != nil {
		return err
	}

	vendor := models.HWVendorID{
		Bus:          bus,
		VendorID:     vendorID,
		VendorNameID: nameID,
	}
	id, err := tx.getOrInsert(ctx, "hw_vendor_id", &vendor, func() int64 { return vendor.ID },
		"`bus` = ? AND `vendor_id_for_bus` = ?", bus.String(), vendorID)
	if err != nil {
		return err
	}
	vendor.ID = id

	tx.rememberIdentity(cacheKey, vendor)
	return nil
}

// EnsureDeviceClass makes sure the device has the class assigned. It is a
// no-op if mainClass is nil.
func (tx *Tx) EnsureDeviceClass(
	ctx context.Context,
	deviceID int64,
	mainClass *int,
	subClass *int,
) error {
	if mainClass == nil {
		return nil
	}

	deviceClass := models.HWDeviceClass{
		DeviceID:  deviceID,
		MainClass: *mainClass,
		SubClass:  subClass,
	}
	cacheKey := fmt.Sprintf("hw_device_class\x00%d\x00%d", deviceID, *mainClass)
	if subClass != nil {
		cacheKey += fmt.Sprintf("\x00%d", *subClass)
	}
	if _, ok := tx.lookupIdentity(cacheKey); ok {
		return nil
	}

	where := "`device_id` = ? AND `main_class` = ? AND `sub_class` IS NULL"
	args := []any{deviceID, *mainClass}
	if subClass != nil {
		where = "`device_id` = ? AND `main_class` = ? AND `sub_class` = ?"
		args = append(args, *subClass)
	}
	id, err := tx.getOrInsert(ctx, "hw_device_class", &deviceClass, func() int64 { return deviceClass.ID },
		where, args...)
	if err != nil {
		return err
	}
	deviceClass.ID = id

	tx.rememberIdentity(cacheKey, deviceClass)
	return nil
}
