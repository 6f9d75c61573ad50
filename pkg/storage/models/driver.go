package models

// HWDriver is a kernel (or other) driver. An empty PackageName means the
// package providing the driver is unknown.
type HWDriver struct {
	ID          int64  `db:"id"`
	PackageName string `db:"package_name"`
	Name        string `db:"name"`
}

// HWDeviceDriverLink is the pair (device, driver) which is referenced by
// submissions. A nil DriverID means no specific driver is bound.
type HWDeviceDriverLink struct {
	ID       int64  `db:"id"`
	DeviceID int64  `db:"device_id"`
	DriverID *int64 `db:"driver_id"`
}
