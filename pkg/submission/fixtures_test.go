package submission

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"testing"

	"github.com/facebookincubator/go-belt/tool/logger"
	xlogrus "github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
)

const (
	testKernelVersion = "2.6.24-19-generic"
	testKernelPackage = "linux-image-" + testKernelVersion
)

type halProp struct {
	Name  string
	Type  string
	Value string
}

type halDev struct {
	ID    int
	UDI   string
	Props []halProp
}

func str(name, value string) halProp {
	return halProp{Name: name, Type: "str", Value: value}
}

func i32(name string, value int) halProp {
	return halProp{Name: name, Type: "dbus.Int32", Value: fmt.Sprint(value)}
}

func escape(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		panic(err)
	}
	return buf.String()
}

func writeSummary(b *strings.Builder, version string, kernelRelease string) {
	fmt.Fprintf(b, `<system version="%s">`, version)
	b.WriteString(`<summary>
<live_cd value="False"/>
<system_id value="f982bb1ab536469cebfd6eaadcea0ffc"/>
<distribution value="Ubuntu"/>
<distroseries value="8.04"/>
<architecture value="i386"/>
<private value="False"/>
<contactable value="False"/>
<date_created value="2007-09-28T16:09:20.126842"/>
<client name="hwtest" version="0.9"><plugin name="architecture_info" version="1.1"/></client>
`)
	if kernelRelease != "" {
		fmt.Fprintf(b, `<kernel-release value="%s"/>`, kernelRelease)
	}
	b.WriteString("</summary>\n")
}

func writeRest(b *strings.Builder, packages []string) {
	b.WriteString(`<processors><processor id="123" name="0"><property name="cpu.freq" type="dbus.Int32">1600</property></processor></processors>
</hardware>
<software>`)
	if packages != nil {
		b.WriteString("<packages>")
		for idx, name := range packages {
			fmt.Fprintf(b, `<package name="%s" id="%d"/>`, name, idx+1)
		}
		b.WriteString("</packages>")
	}
	b.WriteString(`</software>
<questions><question name="detected_network_controllers"><answer type="multiple_choice">pass</answer><comment>ok</comment></question></questions>
</system>
`)
}

func halDocument(packages []string, devices ...halDev) []byte {
	var b strings.Builder
	writeSummary(&b, "1.0", "")
	b.WriteString(`<hardware><hal version="0.5.9.1">` + "\n")
	for _, dev := range devices {
		fmt.Fprintf(&b, `<device id="%d" udi="%s">`, dev.ID, dev.UDI)
		for _, prop := range dev.Props {
			fmt.Fprintf(&b, `<property name="%s" type="%s">%s</property>`, prop.Name, prop.Type, escape(prop.Value))
		}
		b.WriteString("</device>\n")
	}
	b.WriteString("</hal>\n")
	writeRest(&b, packages)
	return []byte(b.String())
}

type udevDev struct {
	Path  string
	Env   map[string]string
	Sysfs map[string]string
}

func udevDocument(kernelRelease string, packages []string, dmi map[string]string, devices ...udevDev) []byte {
	var b strings.Builder
	writeSummary(&b, "1.1", kernelRelease)
	b.WriteString("<hardware>\n<udev>\n")
	for _, dev := range devices {
		fmt.Fprintf(&b, "P: %s\n", dev.Path)
		for _, key := range sortedKeys(dev.Env) {
			fmt.Fprintf(&b, "E: %s=%s\n", key, escape(dev.Env[key]))
		}
		b.WriteString("\n")
	}
	b.WriteString("</udev>\n<dmi>\n")
	for _, key := range sortedKeys(dmi) {
		fmt.Fprintf(&b, "%s:%s\n", key, escape(dmi[key]))
	}
	b.WriteString("</dmi>\n<sysfs-attributes>\n")
	for _, dev := range devices {
		if dev.Sysfs == nil {
			continue
		}
		fmt.Fprintf(&b, "P: %s\n", dev.Path)
		for _, key := range sortedKeys(dev.Sysfs) {
			fmt.Fprintf(&b, "A: %s=%s\n", key, escape(dev.Sysfs[key]))
		}
		b.WriteString("\n")
	}
	b.WriteString("</sysfs-attributes>\n")
	writeRest(&b, packages)
	return []byte(b.String())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func halRoot(extra ...halProp) halDev {
	return halDev{
		ID:  1,
		UDI: HALRootUDI,
		Props: append([]halProp{
			str("info.subsystem", "unknown"),
			str("system.hardware.vendor", "Lenovo"),
			str("system.hardware.product", "T41"),
			str("system.kernel.version", testKernelVersion),
		}, extra...),
	}
}

// halCardBusBridge is a Ricoh-like CardBus bridge (PCI class 6, subclass 7).
func halCardBusBridge(parentUDI string) halDev {
	return halDev{
		ID:  2,
		UDI: "/org/freedesktop/Hal/devices/pci_8086_7134",
		Props: []halProp{
			str("info.bus", "pci"),
			str("info.parent", parentUDI),
			str("info.linux.driver", "yenta_cardbus"),
			i32("pci.vendor_id", 0x8086),
			i32("pci.product_id", 0x7134),
			str("pci.vendor", "Intel Corporation"),
			str("pci.product", "82371AB PIIX4 CardBus"),
			i32("pci.device_class", 6),
			i32("pci.device_subclass", 7),
		},
	}
}

// newTestContext returns a context with a logger, which entries are
// collected by the returned hook.
func newTestContext(t testing.TB) (context.Context, *logrustest.Hook) {
	l, hook := logrustest.NewNullLogger()
	l.SetLevel(logrus.TraceLevel)
	ctx := logger.CtxWithLogger(context.Background(), xlogrus.New(l).WithLevel(logger.LevelTrace))
	return ctx, hook
}

// messages returns the messages of the log entries of the given level.
func messages(hook *logrustest.Hook, level logrus.Level) []string {
	var result []string
	for _, entry := range hook.AllEntries() {
		if entry.Level == level {
			result = append(result, entry.Message)
		}
	}
	return result
}
