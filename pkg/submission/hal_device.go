package submission

import (
	"fmt"
	"strconv"
	"strings"
)

// HALRootUDI is the UDI of the root device in the HAL format.
const HALRootUDI = "/org/freedesktop/Hal/devices/computer"

// HALDevice is a DeviceNode reported in the HAL format.
type HALDevice struct {
	baseDevice
	Record HALDeviceRecord
}

var _ DeviceNode = (*HALDevice)(nil)

func newHALDevice(parser *Parser, record HALDeviceRecord) *HALDevice {
	d := &HALDevice{Record: record}
	d.baseDevice = baseDevice{self: d, parser: parser}
	return d
}

func (d *HALDevice) DeviceID() string {
	return d.Record.UDI
}

func (d *HALDevice) LocalID() string {
	return strconv.Itoa(d.Record.ID)
}

func (d *HALDevice) GetProperty(name string) (any, bool) {
	prop, ok := d.Record.Properties[name]
	if !ok {
		return nil, false
	}
	return prop.Value, true
}

func (d *HALDevice) getString(names ...string) (string, bool) {
	for _, name := range names {
		v, ok := d.GetProperty(name)
		if !ok {
			continue
		}
		if s, ok := asString(v); ok {
			return s, true
		}
	}
	return "", false
}

func (d *HALDevice) getInt(name string) (int, bool) {
	v, ok := d.GetProperty(name)
	if !ok {
		return 0, false
	}
	if _, isString := v.(string); isString {
		// HAL reports IDs as numbers, never as strings.
		return 0, false
	}
	return asInt(v)
}

// RawBus returns "info.bus", or "info.subsystem" which replaced it in newer
// HAL versions.
func (d *HALDevice) RawBus() string {
	bus, _ := d.getString("info.bus", "info.subsystem")
	return bus
}

func (d *HALDevice) IsRootDevice() bool {
	return d.Record.UDI == HALRootUDI
}

// ParentUDI returns the UDI of the parent device.
func (d *HALDevice) ParentUDI() (string, bool) {
	return d.getString("info.parent")
}

// SCSIController returns the grandparent of a SCSI device: the parent is
// the SCSI host, its parent is the controller.
func (d *HALDevice) SCSIController() DeviceNode {
	if d.RawBus() != "scsi" {
		return nil
	}
	if d.parent == nil {
		d.parser.logWarning(fmt.Sprintf("Found SCSI device without a parent: %s", d.DeviceID()))
		return nil
	}
	grandparent := d.parent.Parent()
	if grandparent == nil {
		d.parser.logWarning(fmt.Sprintf("Found SCSI device without a grandparent: %s", d.DeviceID()))
		return nil
	}
	return grandparent
}

// scsiVendorModel returns the vendor and the model of a SCSI device,
// nil if not reported.
func (d *HALDevice) scsiVendorModel() (*string, *string) {
	vendor, vendorOK := d.getString("scsi.vendor")
	model, modelOK := d.getString("scsi.model")
	if vendorOK && modelOK {
		vendor, model = splitATAVendor(strings.TrimSpace(vendor), strings.TrimSpace(model))
	}
	return stringPtr(vendor, vendorOK), stringPtr(model, modelOK)
}

func (d *HALDevice) Vendor() *string {
	switch {
	case d.IsRootDevice():
		return stringPtr(d.getString("system.hardware.vendor", "system.vendor"))
	case d.RawBus() == "scsi":
		vendor, _ := d.scsiVendorModel()
		return vendor
	}
	return stringPtr(d.getString(d.RawBus()+".vendor", "info.vendor"))
}

func (d *HALDevice) Product() *string {
	switch {
	case d.IsRootDevice():
		return stringPtr(d.getString("system.hardware.product", "system.product"))
	case d.RawBus() == "scsi":
		_, model := d.scsiVendorModel()
		return model
	}
	return stringPtr(d.getString(d.RawBus()+".product", "info.product"))
}

func (d *HALDevice) VendorID() any {
	if d.IsRootDevice() || d.RawBus() == "scsi" {
		return derefOrNil(d.Vendor())
	}
	if id, ok := d.getInt(d.RawBus() + ".vendor_id"); ok {
		return id
	}
	return nil
}

func (d *HALDevice) ProductID() any {
	if d.IsRootDevice() || d.RawBus() == "scsi" {
		return derefOrNil(d.Product())
	}
	if id, ok := d.getInt(d.RawBus() + ".product_id"); ok {
		return id
	}
	return nil
}

func (d *HALDevice) DriverName() string {
	driver, _ := d.getString("info.linux.driver")
	return driver
}

func (d *HALDevice) PCIClass() (int, int, bool) {
	if d.RawBus() != "pci" {
		return 0, 0, false
	}
	class, classOK := d.getInt("pci.device_class")
	subclass, subclassOK := d.getInt("pci.device_subclass")
	return class, subclass, classOK && subclassOK
}

func (d *HALDevice) DeviceClass() (*int, *int) {
	var prefix string
	switch d.RawBus() {
	case "pci":
		prefix = "pci."
	case "usb_device":
		prefix = "usb_device."
	default:
		return nil, nil
	}
	mainClass := intPtr(d.getInt(prefix + "device_class"))
	if mainClass == nil {
		return nil, nil
	}
	return mainClass, intPtr(d.getInt(prefix + "device_subclass"))
}

// KernelVersion returns the version of the running kernel reported by
// the root device.
func (d *HALDevice) KernelVersion() (string, bool) {
	return d.getString("system.kernel.version")
}
