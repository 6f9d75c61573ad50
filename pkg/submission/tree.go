package submission

import (
	"path"
	"strings"
)

// BuildDeviceTree creates the DeviceNode-s of the submission and links them
// into a tree. It returns the nodes by DeviceID and the root node.
//
// Children are kept in the order of the records in the document.
func BuildDeviceTree(
	parsed *ParsedSubmission,
	p *Parser,
) (map[string]DeviceNode, DeviceNode, error) {
	var (
		nodes map[string]DeviceNode
		root  DeviceNode
		err   error
	)
	if parsed.Hardware.IsUdev() {
		nodes, root, err = buildUdevTree(&parsed.Hardware, p)
	} else {
		nodes, root, err = buildHALTree(parsed.Hardware.HAL, p)
	}
	if err != nil {
		return nil, nil, err
	}

	if err := checkParentChains(nodes, root); err != nil {
		return nil, nil, err
	}
	return nodes, root, nil
}

func buildHALTree(hal *HAL, p *Parser) (map[string]DeviceNode, DeviceNode, error) {
	nodes := make(map[string]DeviceNode, len(hal.Devices))
	ordered := make([]*HALDevice, 0, len(hal.Devices))
	for _, record := range hal.Devices {
		if _, ok := nodes[record.UDI]; ok {
			return nil, nil, ErrConsistency{Reason: DuplicateDeviceID{DeviceID: record.UDI}}
		}
		node := newHALDevice(p, record)
		nodes[record.UDI] = node
		ordered = append(ordered, node)
	}

	root, ok := nodes[HALRootUDI]
	if !ok {
		return nil, nil, ErrConsistency{Reason: NoRootDevice{Schema: "HAL"}}
	}

	for _, node := range ordered {
		if node.IsRootDevice() {
			continue
		}
		parentUDI, ok := node.ParentUDI()
		if !ok {
			return nil, nil, ErrConsistency{Reason: UnresolvedParent{DeviceID: node.DeviceID()}}
		}
		parent, ok := nodes[parentUDI]
		if !ok {
			return nil, nil, ErrConsistency{Reason: UnresolvedParent{
				DeviceID: node.DeviceID(),
				ParentID: parentUDI,
			}}
		}
		parent.base().addChild(node)
	}
	return nodes, root, nil
}

func buildUdevTree(hw *Hardware, p *Parser) (map[string]DeviceNode, DeviceNode, error) {
	for _, record := range hw.Udev {
		if !strings.HasPrefix(record.Path, "/devices") {
			return nil, nil, ErrConsistency{Reason: InvalidDevicePath{Path: record.Path}}
		}
	}

	nodes := make(map[string]DeviceNode, len(hw.Udev))
	ordered := make([]*UdevDevice, 0, len(hw.Udev))
	for _, record := range hw.Udev {
		if _, ok := nodes[record.Path]; ok {
			return nil, nil, ErrConsistency{Reason: DuplicateDeviceID{DeviceID: record.Path}}
		}
		var dmi map[string]string
		if record.Path == UdevRootPath {
			dmi = hw.DMI
		}
		node := newUdevDevice(p, record, hw.SysfsAttributes[record.Path], dmi)
		nodes[record.Path] = node
		ordered = append(ordered, node)
	}

	root, ok := nodes[UdevRootPath]
	if !ok {
		return nil, nil, ErrConsistency{Reason: NoRootDevice{Schema: "udev"}}
	}

	for _, node := range ordered {
		if node.IsRootDevice() {
			continue
		}
		udevParent(nodes, node.DeviceID(), root).base().addChild(node)
	}
	return nodes, root, nil
}

// udevParent returns the node with the longest path which is a proper
// prefix of devicePath. Devices without such a node (for example
// "/devices/pci0000:00") are children of the root device.
func udevParent(nodes map[string]DeviceNode, devicePath string, root DeviceNode) DeviceNode {
	for p := path.Dir(devicePath); p != "/devices" && p != "/" && p != "."; p = path.Dir(p) {
		if parent, ok := nodes[p]; ok {
			return parent
		}
	}
	return root
}

// checkParentChains makes sure every parent chain ends at the root device.
func checkParentChains(nodes map[string]DeviceNode, root DeviceNode) error {
	for deviceID, node := range nodes {
		steps := 0
		for node != root {
			node = node.Parent()
			steps++
			if node == nil || steps > len(nodes) {
				return ErrConsistency{Reason: ParentCycle{DeviceID: deviceID}}
			}
		}
	}
	return nil
}
