package submission

import (
	"github.com/immune-gmbh/hwdb/pkg/storage/models"
)

// PCI classes and subclasses, see the PCI Code and ID Assignment
// Specification.
const (
	pciClassStorage      = 1
	pciClassBridge       = 6
	pciClassSerialBus    = 0x0c
	pciSubclassCardBus   = 7
	pciSubclassSerialUSB = 3
)

// simpleBuses are raw bus tokens which are translated into HWBus without
// looking at other devices.
var simpleBuses = map[string]models.HWBus{
	"usb_device": models.HWBusUSB,
	"pcmcia":     models.HWBusPCMCIA,
	"ide":        models.HWBusIDE,
	"serio":      models.HWBusSerial,
	"ieee1394":   models.HWBusIEEE1394,
}

// pciStorageSubclassBuses maps subclasses of PCI storage controllers to
// the bus of the attached devices. Subclass 4 (RAID) is intentionally
// absent: the bus of the physical disks is unknown.
var pciStorageSubclassBuses = map[int]models.HWBus{
	0: models.HWBusSCSI,
	1: models.HWBusIDE,
	2: models.HWBusFloppy,
	3: models.HWBusIPI,
	5: models.HWBusATA,
	6: models.HWBusSATA,
	7: models.HWBusSAS,
}

// realSCSIBuses are the buses on which a device reported on the "scsi" raw
// bus is a device on its own (rather than an emulation of another device).
var realSCSIBuses = map[models.HWBus]struct{}{
	models.HWBusSCSI: {},
	models.HWBusIDE:  {},
	models.HWBusATA:  {},
	models.HWBusSATA: {},
	models.HWBusSAS:  {},
}

// neverRealBuses are raw bus tokens of nodes which describe an aspect of
// a device (an interface, a function, a kernel object) rather than
// a physical device.
var neverRealBuses = map[string]struct{}{
	"ac97":          {},
	"acpi":          {},
	"backlight":     {},
	"bdi":           {},
	"block":         {},
	"bluetooth":     {},
	"bttv-sub":      {},
	"disk":          {},
	"dmi":           {},
	"drm":           {},
	"drm_minor":     {},
	"enclosure":     {},
	"firmware":      {},
	"gameport":      {},
	"graphics":      {},
	"hid":           {},
	"host":          {},
	"ide_host":      {},
	"ieee80211":     {},
	"input":         {},
	"leds":          {},
	"mem":           {},
	"misc":          {},
	"mmc_host":      {},
	"net":           {},
	"partition":     {},
	"pci_bus":       {},
	"pci_express":   {},
	"platform":      {},
	"pnp":           {},
	"power_supply":  {},
	"pvr":           {},
	"rfkill":        {},
	"scsi_device":   {},
	"scsi_disk":     {},
	"scsi_generic":  {},
	"scsi_host":     {},
	"scsi_target":   {},
	"sound":         {},
	"spi_transport": {},
	"ssb":           {},
	"thermal":       {},
	"tty":           {},
	"usb":           {},
	"usb_endpoint":  {},
	"usb_host":      {},
	"usb_interface": {},
	"usbmon":        {},
	"vc":            {},
	"video4linux":   {},
	"vtconsole":     {},
	"wlan":          {},
}

// fakeSCSIControllerBuses are raw buses of SCSI controllers which are
// an emulation layer over USB mass storage.
var fakeSCSIControllerBuses = map[string]struct{}{
	"usb":           {},
	"usb_interface": {},
}

// numericIDBuses are buses where vendor and product IDs are 16 bit numbers.
var numericIDBuses = map[models.HWBus]struct{}{
	models.HWBusPCI:    {},
	models.HWBusPCCard: {},
	models.HWBusUSB:    {},
}
