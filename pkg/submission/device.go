// Copyright 2023 Meta Platforms, Inc. and affiliates.
//
// Redistribution and use in source and binary forms, with or without modification, are permitted provided that the following conditions are met:
//
// 1. Redistributions of source code must retain the above copyright notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright notice, this list of conditions and the following disclaimer in the documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its contributors may be used to endorse or promote products derived from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.
package submission

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/immune-gmbh/hwdb/pkg/storage/models"
)

const (
	scsiVendorIDLength  = 8
	scsiProductIDLength = 16
)

// DeviceNode is a node of the device tree of a submission, no matter which
// format (HAL or udev) it was reported in.
type DeviceNode interface {
	// DeviceID is the ID of the node unique within the submission: the UDI
	// for HAL, the sysfs path for udev.
	DeviceID() string

	// LocalID is the ID of the record within the document: the "id"
	// attribute for HAL, the sysfs path for udev.
	LocalID() string

	Parent() DeviceNode
	Children() []DeviceNode

	// GetProperty returns a raw property of the node.
	GetProperty(name string) (any, bool)

	// RawBus is the bus as reported by the submission, or an empty string
	// if it is not reported.
	RawBus() string
	IsRootDevice() bool

	// RealBus returns the bus the device is attached to. The second value is
	// false if the bus could not be determined.
	RealBus() (models.HWBus, bool)

	// SCSIController returns the controller of a device on the "scsi" raw
	// bus, or nil.
	SCSIController() DeviceNode

	// IsRealDevice returns false for nodes which are only an aspect of
	// another (physical) device.
	IsRealDevice() bool

	// HasReliableData returns true if the node is a real device and all
	// the data required to store it are available.
	HasReliableData() bool

	Vendor() *string
	Product() *string

	// VendorID and ProductID return an int for numeric IDs (PCI, USB) or
	// a string, or nil if unknown.
	VendorID() any
	ProductID() any

	// VendorIDForDB and ProductIDForDB return the IDs formatted according to
	// the bus of the device.
	VendorIDForDB() *string
	ProductIDForDB() *string

	// DriverName returns the name of the driver bound to the node, or
	// an empty string.
	DriverName() string

	// PCIClass returns the class and subclass of a PCI device.
	PCIClass() (class, subclass int, ok bool)

	// DeviceClass returns the bus-specific class of the device (PCI class
	// or USB device class), nil if unknown.
	DeviceClass() (mainClass, subClass *int)

	// RealChildren returns the nearest real devices among descendants.
	RealChildren() []DeviceNode

	base() *baseDevice
}

// baseDevice implements the format-independent logic of DeviceNode, format
// specific data are accessed through "self".
type baseDevice struct {
	self     DeviceNode
	parser   *Parser
	parent   DeviceNode
	children []DeviceNode
}

func (d *baseDevice) base() *baseDevice {
	return d
}

func (d *baseDevice) Parent() DeviceNode {
	return d.parent
}

func (d *baseDevice) Children() []DeviceNode {
	return d.children
}

func (d *baseDevice) addChild(child DeviceNode) {
	child.base().parent = d.self
	d.children = append(d.children, child)
}

func (d *baseDevice) RealBus() (models.HWBus, bool) {
	if d.self.IsRootDevice() {
		return models.HWBusSystem, true
	}

	rawBus := d.self.RawBus()
	switch rawBus {
	case "pci":
		return d.translatePCIBus(), true
	case "scsi":
		return d.translateSCSIBus()
	}
	if bus, ok := simpleBuses[rawBus]; ok {
		return bus, true
	}

	d.parser.logWarning(fmt.Sprintf("Unknown bus '%s' for device %s", rawBus, d.self.DeviceID()))
	return models.HWBusUndefined, false
}

// translatePCIBus tells apart PCI devices and PCCard (CardBus) devices,
// which are reported as PCI devices too, but have a CardBus bridge as
// the parent.
func (d *baseDevice) translatePCIBus() models.HWBus {
	if d.parent == nil {
		return models.HWBusPCI
	}
	class, subclass, ok := d.parent.PCIClass()
	if ok && class == pciClassBridge && subclass == pciSubclassCardBus {
		return models.HWBusPCCard
	}
	return models.HWBusPCI
}

// translateSCSIBus finds the bus of a device which talks the SCSI command
// set: it is either a real SCSI device, or an ATA/SATA/... device using
// the SCSI emulation of the kernel, or USB storage (which has no bus on
// its own).
func (d *baseDevice) translateSCSIBus() (models.HWBus, bool) {
	controller := d.self.SCSIController()
	if controller == nil {
		return models.HWBusUndefined, false
	}

	if _, ok := fakeSCSIControllerBuses[controller.RawBus()]; ok {
		return models.HWBusUndefined, false
	}

	class, subclass, ok := controller.PCIClass()
	if !ok {
		d.parser.logWarning(fmt.Sprintf(
			"Unexpected bus '%s' of the controller %s of the SCSI device %s",
			controller.RawBus(), controller.DeviceID(), d.self.DeviceID(),
		))
		return models.HWBusUndefined, false
	}
	if class != pciClassStorage {
		d.parser.logWarning(fmt.Sprintf(
			"A (possibly fake) SCSI device %s is connected to PCI device %s that has the PCI device class %d; expected class 1 (storage).",
			d.self.DeviceID(), controller.DeviceID(), class,
		))
		return models.HWBusUndefined, false
	}

	bus, ok := pciStorageSubclassBuses[subclass]
	return bus, ok
}

func (d *baseDevice) IsRealDevice() bool {
	if d.self.IsRootDevice() {
		return true
	}

	rawBus := d.self.RawBus()
	if rawBus == "" {
		return false
	}
	if _, ok := neverRealBuses[rawBus]; ok {
		return false
	}

	switch rawBus {
	case "usb_device":
		vendorID, vendorOK := asInt(d.self.VendorID())
		productID, productOK := asInt(d.self.ProductID())
		if vendorOK && productOK && vendorID == 0 && productID == 0 {
			return d.isUSBHostControllerOutput()
		}
	case "scsi":
		bus, ok := d.RealBus()
		if !ok {
			return false
		}
		_, ok = realSCSIBuses[bus]
		return ok
	}
	return true
}

// isUSBHostControllerOutput checks if the USB device with vendor ID 0 and
// product ID 0 is the "output side" of a USB host controller, which is
// a PCI device.
func (d *baseDevice) isUSBHostControllerOutput() bool {
	if d.parent != nil {
		class, subclass, ok := d.parent.PCIClass()
		if ok && class == pciClassSerialBus && subclass == pciSubclassSerialUSB {
			return true
		}
	}
	d.parser.logWarning(fmt.Sprintf(
		"USB device found with vendor ID==0, product ID==0, where the parent device does not look like a USB host controller: %s",
		d.self.DeviceID(),
	))
	return false
}

func (d *baseDevice) HasReliableData() bool {
	if !d.self.IsRealDevice() {
		return false
	}

	if d.self.IsRootDevice() {
		isReliable := true
		if d.self.Vendor() == nil {
			d.parser.logWarning(fmt.Sprintf("The root device %s does not provide a vendor name", d.self.DeviceID()))
			isReliable = false
		}
		if d.self.Product() == nil {
			d.parser.logWarning(fmt.Sprintf("The root device %s does not provide a product name", d.self.DeviceID()))
			isReliable = false
		}
		return isReliable
	}

	bus, ok := d.RealBus()
	if !ok {
		return false
	}

	var missing []string
	if d.self.VendorID() == nil {
		missing = append(missing, "vendor ID")
	}
	if d.self.ProductID() == nil {
		missing = append(missing, "product ID")
	}
	if d.self.Product() == nil {
		missing = append(missing, "product name")
	}
	for _, what := range missing {
		d.parser.logWarning(fmt.Sprintf(
			"A %s device that is supposed to be a real device does not provide %s: %s",
			bus, what, d.self.DeviceID(),
		))
	}
	return len(missing) == 0
}

func (d *baseDevice) VendorIDForDB() *string {
	return d.idForDB(d.self.VendorID(), scsiVendorIDLength)
}

func (d *baseDevice) ProductIDForDB() *string {
	return d.idForDB(d.self.ProductID(), scsiProductIDLength)
}

func (d *baseDevice) idForDB(id any, scsiLength int) *string {
	if id == nil {
		return nil
	}

	if !d.self.IsRootDevice() && d.self.RawBus() == "scsi" {
		s, _ := asString(id)
		s = fixedLength(s, scsiLength)
		return &s
	}

	bus, ok := d.RealBus()
	if !ok {
		return nil
	}
	if _, isNumeric := numericIDBuses[bus]; isNumeric {
		if i, ok := asInt(id); ok {
			s := fmt.Sprintf("0x%04x", i)
			return &s
		}
	}

	s := fmt.Sprint(id)
	return &s
}

// fixedLength pads the string with spaces or truncates it, like the fixed
// length fields of the response of the SCSI INQUIRY command. The length is
// in bytes; a multi-byte character is never cut in half.
func fixedLength(s string, length int) string {
	if len(s) > length {
		s = s[:length]
		for len(s) > 0 && !utf8.ValidString(s) {
			s = s[:len(s)-1]
		}
	}
	return s + strings.Repeat(" ", length-len(s))
}

func (d *baseDevice) RealChildren() []DeviceNode {
	var result []DeviceNode
	for _, child := range d.children {
		if !child.IsRealDevice() {
			result = append(result, child.RealChildren()...)
			continue
		}
		// IEEE1394 devices do not provide usable vendor and product IDs,
		// thus they are not stored at all.
		if child.RawBus() == "ieee1394" {
			continue
		}
		result = append(result, child)
	}
	return result
}

// splitATAVendor handles ATA disks behind the SCSI emulation: the kernel
// reports "ATA" as the vendor and "<vendor> <model>" as the model.
func splitATAVendor(vendor, model string) (string, string) {
	if vendor != "ATA" {
		return vendor, model
	}
	realVendor, realModel, ok := strings.Cut(model, " ")
	if !ok {
		return vendor, model
	}
	return realVendor, strings.TrimSpace(realModel)
}

func stringPtr(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return &s
}

func intPtr(i int, ok bool) *int {
	if !ok {
		return nil
	}
	return &i
}

// derefOrNil returns the string as an untyped value, or an untyped nil.
func derefOrNil(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
