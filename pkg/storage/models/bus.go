package models

import (
	"database/sql/driver"
	"fmt"
)

// HWBus is the interconnect a device is attached to on the host side.
type HWBus uint

const (
	HWBusUndefined = HWBus(iota)
	HWBusSystem
	HWBusPCI
	HWBusPCCard
	HWBusUSB
	HWBusIEEE1394
	HWBusSCSI
	HWBusIDE
	HWBusFloppy
	HWBusIPI
	HWBusATA
	HWBusSATA
	HWBusSAS
	HWBusPCMCIA
	HWBusSerial

	EndOfHWBus
)

func (bus HWBus) String() string {
	switch bus {
	case HWBusUndefined:
		return "NULL"
	case HWBusSystem:
		return "SYSTEM"
	case HWBusPCI:
		return "PCI"
	case HWBusPCCard:
		return "PCCARD"
	case HWBusUSB:
		return "USB"
	case HWBusIEEE1394:
		return "IEEE1394"
	case HWBusSCSI:
		return "SCSI"
	case HWBusIDE:
		return "IDE"
	case HWBusFloppy:
		return "FLOPPY"
	case HWBusIPI:
		return "IPI"
	case HWBusATA:
		return "ATA"
	case HWBusSATA:
		return "SATA"
	case HWBusSAS:
		return "SAS"
	case HWBusPCMCIA:
		return "PCMCIA"
	case HWBusSerial:
		return "SERIAL"
	default:
		return fmt.Sprintf("unknown_bus_%d", uint(bus))
	}
}

// ParseHWBus is the inverse of HWBus.String.
func ParseHWBus(s string) (HWBus, error) {
	for candidate := HWBusUndefined + 1; candidate < EndOfHWBus; candidate++ {
		if s == candidate.String() {
			return candidate, nil
		}
	}
	return HWBusUndefined, fmt.Errorf("unknown bus: '%s'", s)
}

func (bus HWBus) Value() (driver.Value, error) {
	if bus <= HWBusUndefined || bus >= EndOfHWBus {
		return nil, fmt.Errorf("unexpected value: %s", bus.String())
	}

	return bus.String(), nil
}

func (bus *HWBus) Scan(srcI interface{}) error {
	src, err := scanString(srcI)
	if err != nil {
		return err
	}

	*bus, err = ParseHWBus(src)
	return err
}

func scanString(srcI interface{}) (string, error) {
	switch src := srcI.(type) {
	case []byte:
		return string(src), nil
	case string:
		return src, nil
	default:
		return "", fmt.Errorf("expected []byte or string, received %T", srcI)
	}
}
