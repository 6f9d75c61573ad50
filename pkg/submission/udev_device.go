package submission

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// UdevRootPath is the sysfs path of the root device in the udev format.
const UdevRootPath = "/devices/LNXSYSTM:00"

// DMI attributes describing the machine itself.
const (
	dmiSystemVendor  = "/sys/class/dmi/id/sys_vendor"
	dmiSystemProduct = "/sys/class/dmi/id/product_name"
)

// UdevDevice is a DeviceNode reported in the udev format.
type UdevDevice struct {
	baseDevice
	Record UdevRecord

	// SysfsAttributes are the attributes of the device from the
	// <sysfs-attributes> section (may be nil).
	SysfsAttributes map[string]string

	// DMI is the content of the <dmi> section, used by the root device only.
	DMI map[string]string
}

var _ DeviceNode = (*UdevDevice)(nil)

func newUdevDevice(
	parser *Parser,
	record UdevRecord,
	sysfsAttributes map[string]string,
	dmi map[string]string,
) *UdevDevice {
	d := &UdevDevice{
		Record:          record,
		SysfsAttributes: sysfsAttributes,
		DMI:             dmi,
	}
	d.baseDevice = baseDevice{self: d, parser: parser}
	return d
}

func (d *UdevDevice) DeviceID() string {
	return d.Record.Path
}

func (d *UdevDevice) LocalID() string {
	return d.Record.Path
}

// GetProperty returns a property from the udev database record ("E:"
// lines). Sysfs attributes are accessible with the prefix "sysfs:".
func (d *UdevDevice) GetProperty(name string) (any, bool) {
	if attrName, ok := strings.CutPrefix(name, "sysfs:"); ok {
		v, ok := d.SysfsAttributes[attrName]
		return v, ok
	}
	v, ok := d.Record.Properties[name]
	return v, ok
}

func (d *UdevDevice) env(name string) (string, bool) {
	v, ok := d.Record.Properties[name]
	return v, ok
}

func (d *UdevDevice) sysfs(name string) (string, bool) {
	v, ok := d.SysfsAttributes[name]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// RawBus returns the subsystem of the device. udev uses the same
// subsystem for different kinds of nodes (for example SCSI hosts, targets
// and devices), those are distinguished by DEVTYPE.
func (d *UdevDevice) RawBus() string {
	subsystem, _ := d.env("SUBSYSTEM")
	devType, _ := d.env("DEVTYPE")
	switch subsystem {
	case "usb":
		if devType != "" {
			return devType
		}
		return subsystem
	case "scsi":
		if devType == "scsi_device" {
			return "scsi"
		}
		return devType
	case "":
		// Old udev versions do not always report the subsystem.
	default:
		return subsystem
	}

	if _, ok := d.env("PCI_CLASS"); ok {
		return "pci"
	}
	if _, ok := d.env("PCI_ID"); ok {
		return "pci"
	}
	if _, ok := d.env("PRODUCT"); ok {
		if strings.Contains(path.Base(d.Record.Path), ":") {
			return "usb_interface"
		}
		return "usb_device"
	}
	return ""
}

func (d *UdevDevice) IsRootDevice() bool {
	return d.Record.Path == UdevRootPath
}

// SCSIController skips the SCSI target and the SCSI host nodes (and nodes
// without a bus) above a SCSI device, the first other ancestor is the
// controller.
func (d *UdevDevice) SCSIController() DeviceNode {
	if d.RawBus() != "scsi" {
		return nil
	}
	for ancestor := d.parent; ancestor != nil; ancestor = ancestor.Parent() {
		if ancestor.IsRootDevice() {
			break
		}
		switch ancestor.RawBus() {
		case "scsi_target", "scsi_host", "":
			continue
		}
		return ancestor
	}
	d.parser.logWarning(fmt.Sprintf("Found SCSI device without a controller: %s", d.DeviceID()))
	return nil
}

func (d *UdevDevice) scsiVendorModel() (*string, *string) {
	vendor, vendorOK := d.sysfs("vendor")
	model, modelOK := d.sysfs("model")
	if vendorOK && modelOK {
		vendor, model = splitATAVendor(vendor, model)
	}
	return stringPtr(vendor, vendorOK), stringPtr(model, modelOK)
}

func (d *UdevDevice) firstEnv(names ...string) *string {
	for _, name := range names {
		if v, ok := d.env(name); ok && v != "" {
			return &v
		}
	}
	return nil
}

func (d *UdevDevice) Vendor() *string {
	switch {
	case d.IsRootDevice():
		v, ok := d.DMI[dmiSystemVendor]
		return stringPtr(v, ok)
	case d.RawBus() == "scsi":
		vendor, _ := d.scsiVendorModel()
		return vendor
	}
	return d.firstEnv("ID_VENDOR_FROM_DATABASE", "ID_VENDOR")
}

func (d *UdevDevice) Product() *string {
	switch {
	case d.IsRootDevice():
		v, ok := d.DMI[dmiSystemProduct]
		return stringPtr(v, ok)
	case d.RawBus() == "scsi":
		_, model := d.scsiVendorModel()
		return model
	}
	return d.firstEnv("ID_MODEL_FROM_DATABASE", "ID_MODEL")
}

// pciIDs parses PCI_ID, for example "8086:27C5".
func (d *UdevDevice) pciIDs() (vendorID int, productID int, ok bool) {
	pciID, ok := d.env("PCI_ID")
	if !ok {
		return 0, 0, false
	}
	vendor, product, ok := strings.Cut(pciID, ":")
	if !ok {
		return 0, 0, false
	}
	return parseHexPair(vendor, product)
}

// usbIDs parses PRODUCT, for example "46d/a01/1013" (vendor ID, product ID,
// device release).
func (d *UdevDevice) usbIDs() (vendorID int, productID int, ok bool) {
	product, ok := d.env("PRODUCT")
	if !ok {
		return 0, 0, false
	}
	parts := strings.Split(product, "/")
	if len(parts) != 3 {
		return 0, 0, false
	}
	return parseHexPair(parts[0], parts[1])
}

func parseHexPair(a, b string) (int, int, bool) {
	x, err := strconv.ParseUint(strings.TrimSpace(a), 16, 32)
	if err != nil {
		return 0, 0, false
	}
	y, err := strconv.ParseUint(strings.TrimSpace(b), 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return int(x), int(y), true
}

func (d *UdevDevice) numericIDs() (int, int, bool) {
	switch d.RawBus() {
	case "pci":
		return d.pciIDs()
	case "usb_device":
		return d.usbIDs()
	}
	return 0, 0, false
}

func (d *UdevDevice) VendorID() any {
	if d.IsRootDevice() || d.RawBus() == "scsi" {
		return derefOrNil(d.Vendor())
	}
	if vendorID, _, ok := d.numericIDs(); ok {
		return vendorID
	}
	return nil
}

func (d *UdevDevice) ProductID() any {
	if d.IsRootDevice() || d.RawBus() == "scsi" {
		return derefOrNil(d.Product())
	}
	if _, productID, ok := d.numericIDs(); ok {
		return productID
	}
	return nil
}

func (d *UdevDevice) DriverName() string {
	driver, _ := d.env("DRIVER")
	return driver
}

// PCIClass parses PCI_CLASS, for example "C0320": class 0x0c,
// subclass 0x03, programming interface 0x20.
func (d *UdevDevice) PCIClass() (int, int, bool) {
	if d.RawBus() != "pci" {
		return 0, 0, false
	}
	pciClass, ok := d.env("PCI_CLASS")
	if !ok {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(strings.TrimSpace(pciClass), 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return int(v >> 16), int((v >> 8) & 0xff), true
}

func (d *UdevDevice) DeviceClass() (*int, *int) {
	switch d.RawBus() {
	case "pci":
		class, subclass, ok := d.PCIClass()
		if !ok {
			return nil, nil
		}
		return &class, &subclass
	case "usb_device":
		return d.usbDeviceClass()
	}
	return nil, nil
}

// usbDeviceClass returns the class from the sysfs attributes, or from
// TYPE (for example "9/0/1": class, subclass, protocol).
func (d *UdevDevice) usbDeviceClass() (*int, *int) {
	if class, ok := d.sysfs("bDeviceClass"); ok {
		mainClass, err := strconv.ParseUint(class, 16, 8)
		if err != nil {
			return nil, nil
		}
		result := int(mainClass)
		var subClass *int
		if sub, ok := d.sysfs("bDeviceSubClass"); ok {
			if v, err := strconv.ParseUint(sub, 16, 8); err == nil {
				subClass = intPtr(int(v), true)
			}
		}
		return &result, subClass
	}

	usbType, ok := d.env("TYPE")
	if !ok {
		return nil, nil
	}
	parts := strings.Split(usbType, "/")
	if len(parts) != 3 {
		return nil, nil
	}
	mainClass, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, nil
	}
	subClass, err := strconv.Atoi(parts[1])
	return &mainClass, intPtr(subClass, err == nil)
}
