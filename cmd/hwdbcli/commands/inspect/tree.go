package inspect

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/immune-gmbh/hwdb/pkg/submission"
)

type treeColors struct {
	real       *color.Color
	unreliable *color.Color
	pseudo     *color.Color
}

func newTreeColors(disable bool) treeColors {
	colors := treeColors{
		real:       color.New(color.FgGreen),
		unreliable: color.New(color.FgYellow),
		pseudo:     color.New(color.FgHiBlack),
	}
	if disable {
		colors.real.DisableColor()
		colors.unreliable.DisableColor()
		colors.pseudo.DisableColor()
	}
	return colors
}

// printTree prints the device tree: real devices with reliable data are
// green, real devices which would be skipped are yellow and pseudo-devices
// are grey.
func printTree(w io.Writer, root submission.DeviceNode, colors treeColors) {
	var walk func(node submission.DeviceNode, depth int)
	walk = func(node submission.DeviceNode, depth int) {
		c := colors.pseudo
		switch {
		case node.IsRealDevice() && node.HasReliableData():
			c = colors.real
		case node.IsRealDevice():
			c = colors.unreliable
		}
		c.Fprintf(w, "%s%s\n", strings.Repeat("  ", depth), describeNode(node))
		for _, child := range node.Children() {
			walk(child, depth+1)
		}
	}
	walk(root, 0)
}

func describeNode(node submission.DeviceNode) string {
	var parts []string
	parts = append(parts, node.DeviceID())

	bus := node.RawBus()
	if node.IsRealDevice() {
		if realBus, ok := node.RealBus(); ok {
			bus = realBus.String()
		}
	}
	if bus != "" {
		parts = append(parts, "["+bus+"]")
	}
	if vendorID, productID := node.VendorIDForDB(), node.ProductIDForDB(); vendorID != nil && productID != nil {
		parts = append(parts, *vendorID+":"+*productID)
	}
	var names []string
	for _, s := range []*string{node.Vendor(), node.Product()} {
		if s != nil {
			names = append(names, *s)
		}
	}
	if len(names) > 0 {
		parts = append(parts, fmt.Sprintf("%q", strings.Join(names, " ")))
	}
	if driver := node.DriverName(); driver != "" {
		parts = append(parts, "driver="+driver)
	}
	return strings.Join(parts, " ")
}

type yamlNode struct {
	ID        string      `yaml:"id"`
	RawBus    string      `yaml:"raw_bus,omitempty"`
	Bus       string      `yaml:"bus,omitempty"`
	Real      bool        `yaml:"real"`
	Reliable  bool        `yaml:"reliable"`
	Vendor    *string     `yaml:"vendor,omitempty"`
	Product   *string     `yaml:"product,omitempty"`
	VendorID  *string     `yaml:"vendor_id,omitempty"`
	ProductID *string     `yaml:"product_id,omitempty"`
	Driver    string      `yaml:"driver,omitempty"`
	Children  []*yamlNode `yaml:"children,omitempty"`
}

func newYAMLNode(node submission.DeviceNode) *yamlNode {
	result := &yamlNode{
		ID:      node.DeviceID(),
		RawBus:  node.RawBus(),
		Real:    node.IsRealDevice(),
		Vendor:  node.Vendor(),
		Product: node.Product(),
		Driver:  node.DriverName(),
	}
	if result.Real {
		if bus, ok := node.RealBus(); ok {
			result.Bus = bus.String()
		}
		result.Reliable = node.HasReliableData()
		if result.Reliable {
			result.VendorID = node.VendorIDForDB()
			result.ProductID = node.ProductIDForDB()
		}
	}
	for _, child := range node.Children() {
		result.Children = append(result.Children, newYAMLNode(child))
	}
	return result
}
