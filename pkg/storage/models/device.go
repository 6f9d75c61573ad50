package models

// HWDevice is a distinct device identity, shared by all submissions.
type HWDevice struct {
	ID        int64  `db:"id"`
	Bus       HWBus  `db:"bus"`
	VendorID  string `db:"vendor_id"`
	ProductID string `db:"product_id"`
	Name      string `db:"name"`
}

// HWVendorName is a vendor name, shared by all buses.
type HWVendorName struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

// HWVendorID maps a bus-specific vendor ID to a vendor name.
type HWVendorID struct {
	ID           int64  `db:"id"`
	Bus          HWBus  `db:"bus"`
	VendorID     string `db:"vendor_id_for_bus"`
	VendorNameID int64  `db:"vendor_name_id"`
}

// HWDeviceClass is the bus-specific class of a device (PCI class or
// USB device class). SubClass is nil if only the main class is known.
type HWDeviceClass struct {
	ID        int64 `db:"id"`
	DeviceID  int64 `db:"device_id"`
	MainClass int   `db:"main_class"`
	SubClass  *int  `db:"sub_class"`
}
