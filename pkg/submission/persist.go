package submission

import (
	"context"

	"github.com/immune-gmbh/hwdb/pkg/storage/models"
)

// createDBData stores the node and (recursively) its real children.
// A node without reliable data is skipped together with its subtree.
func (p *Parser) createDBData(
	ctx context.Context,
	persister Persister,
	submissionID int64,
	node DeviceNode,
	parentID *int64,
) error {
	if !node.HasReliableData() {
		return nil
	}
	bus, _ := node.RealBus()

	device, err := persister.GetOrCreateDevice(ctx, bus,
		*node.VendorIDForDB(), *node.ProductIDForDB(), derefString(node.Product()))
	if err != nil {
		return ErrPersist{DeviceID: node.DeviceID(), Err: err}
	}

	if vendorName := node.Vendor(); vendorName != nil {
		if _, isNumeric := numericIDBuses[bus]; isNumeric {
			err := persister.EnsureVendorName(ctx, bus, *node.VendorIDForDB(), *vendorName)
			if err != nil {
				return ErrPersist{DeviceID: node.DeviceID(), Err: err}
			}
		}
	}

	mainClass, subClass := node.DeviceClass()
	if err := persister.EnsureDeviceClass(ctx, device.ID, mainClass, subClass); err != nil {
		return ErrPersist{DeviceID: node.DeviceID(), Err: err}
	}

	link, err := persister.GetOrCreateDeviceDriverLink(ctx, device.ID, nil)
	if err != nil {
		return ErrPersist{DeviceID: node.DeviceID(), Err: err}
	}
	submissionDevice := &models.HWSubmissionDevice{
		SubmissionID:       submissionID,
		DeviceDriverLinkID: link.ID,
		ParentID:           parentID,
		HALDeviceID:        node.LocalID(),
	}
	if err := persister.CreateSubmissionDevice(ctx, submissionDevice); err != nil {
		return ErrPersist{DeviceID: node.DeviceID(), Err: err}
	}

	if err := p.createDriverData(ctx, persister, submissionID, node, device, parentID); err != nil {
		return err
	}

	for _, child := range node.RealChildren() {
		err := p.createDBData(ctx, persister, submissionID, child, &submissionDevice.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// createDriverData stores a device-driver link and a submission device for
// every distinct driver bound to the device. The submission devices share
// the parent with the driver-less one.
func (p *Parser) createDriverData(
	ctx context.Context,
	persister Persister,
	submissionID int64,
	node DeviceNode,
	device *models.HWDevice,
	parentID *int64,
) error {
	packageName := derefString(p.KernelPackageName())
	for _, bound := range boundDrivers(node) {
		driver, err := persister.GetOrCreateDriver(ctx, packageName, bound.name)
		if err != nil {
			return ErrPersist{DeviceID: bound.reportedBy.DeviceID(), Err: err}
		}
		link, err := persister.GetOrCreateDeviceDriverLink(ctx, device.ID, &driver.ID)
		if err != nil {
			return ErrPersist{DeviceID: bound.reportedBy.DeviceID(), Err: err}
		}
		err = persister.CreateSubmissionDevice(ctx, &models.HWSubmissionDevice{
			SubmissionID:       submissionID,
			DeviceDriverLinkID: link.ID,
			ParentID:           parentID,
			HALDeviceID:        bound.reportedBy.LocalID(),
		})
		if err != nil {
			return ErrPersist{DeviceID: bound.reportedBy.DeviceID(), Err: err}
		}
	}
	return nil
}

type boundDriver struct {
	name       string
	reportedBy DeviceNode
}

// boundDrivers collects the drivers of the device: drivers of the node
// itself and of the nodes which are aspects of it (non-real descendants
// up to the next real devices). For example a USB device has its driver
// bound to its interfaces.
//
// Pseudo-devices directly below the root device (ACPI, platform, etc)
// are not aspects of the machine, so only the own driver of the root device
// is taken.
func boundDrivers(node DeviceNode) []boundDriver {
	var result []boundDriver
	seen := map[string]struct{}{}
	var collect func(n DeviceNode)
	collect = func(n DeviceNode) {
		if name := n.DriverName(); name != "" {
			if _, ok := seen[name]; !ok {
				seen[name] = struct{}{}
				result = append(result, boundDriver{name: name, reportedBy: n})
			}
		}
		if n.IsRootDevice() {
			return
		}
		for _, child := range n.Children() {
			if child.IsRealDevice() {
				continue
			}
			collect(child)
		}
	}
	collect(node)
	return result
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
