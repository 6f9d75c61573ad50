package submission

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

func TestParse(t *testing.T) {
	doc := halDocument([]string{testKernelPackage}, halRoot(), halCardBusBridge(HALRootUDI))
	parsed, err := Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, "1.0", parsed.FormatVersion)
	assert.Equal(t, "Ubuntu", parsed.Summary.Distribution)
	assert.Equal(t, "hwtest", parsed.Summary.Client.Name)
	assert.Equal(t, []Plugin{{Name: "architecture_info", Version: "1.1"}}, parsed.Summary.Client.Plugins)
	assert.Equal(t, time.Date(2007, 9, 28, 16, 9, 20, 126842000, time.UTC), parsed.Summary.DateCreated)
	assert.False(t, parsed.Summary.LiveCD)

	require.False(t, parsed.Hardware.IsUdev())
	require.Len(t, parsed.Hardware.HAL.Devices, 2)
	bridge := parsed.Hardware.HAL.Devices[1]
	assert.Equal(t, 2, bridge.ID)
	assert.Equal(t, Property{Type: "dbus.Int32", Value: int64(0x8086)}, bridge.Properties["pci.vendor_id"])
	assert.Equal(t, Property{Type: "str", Value: "yenta_cardbus"}, bridge.Properties["info.linux.driver"])

	require.Len(t, parsed.Hardware.Processors, 1)
	assert.Contains(t, parsed.Software.Packages, testKernelPackage)
	require.Len(t, parsed.Questions, 1)
	assert.Equal(t, "pass", parsed.Questions[0].Answer.Value)
}

func TestValidate(t *testing.T) {
	valid := string(halDocument(nil, halRoot()))
	withoutHAL := valid[:strings.Index(valid, "<hal ")] + valid[strings.Index(valid, "</hal>")+len("</hal>"):]

	for name, tc := range map[string]struct {
		Doc         string
		ExpectedErr string
	}{
		"root_is_not_system": {
			Doc:         `<foo version="1.0"/>`,
			ExpectedErr: "root node is not '<system>'",
		},
		"unsupported_version": {
			Doc:         strings.Replace(valid, `<system version="1.0">`, `<system version="2.0">`, 1),
			ExpectedErr: "invalid submission format version: '2.0'",
		},
		"missing_questions": {
			Doc:         strings.NewReplacer(`<questions>`, `<questionz>`, `</questions>`, `</questionz>`).Replace(valid),
			ExpectedErr: "missing element <questions>",
		},
		"duplicate_summary": {
			Doc:         strings.Replace(valid, `</summary>`, `</summary><summary/>`, 1),
			ExpectedErr: "duplicate element <summary>",
		},
		"invalid_boolean": {
			Doc:         strings.Replace(valid, `<live_cd value="False"/>`, `<live_cd value="false"/>`, 1),
			ExpectedErr: "/system/summary/live_cd: invalid boolean value 'false'",
		},
		"invalid_datetime": {
			Doc:         strings.Replace(valid, `2007-09-28T16:09:20.126842`, `2007-09-28 16:09:20`, 1),
			ExpectedErr: "invalid datetime value",
		},
		"unknown_attribute": {
			Doc:         strings.Replace(valid, `<software>`, `<software foo="bar">`, 1),
			ExpectedErr: "/system/software: unexpected attribute 'foo'",
		},
		"integer_out_of_range": {
			Doc:         strings.Replace(valid, `<property name="cpu.freq" type="dbus.Int32">1600</property>`, `<property name="cpu.freq" type="dbus.Int16">100000</property>`, 1),
			ExpectedErr: "invalid value '100000' of type 'dbus.Int16'",
		},
		"hal_and_udev": {
			Doc:         strings.Replace(valid, `</hal>`, `</hal><udev></udev>`, 1),
			ExpectedErr: "mutually exclusive",
		},
		"no_device_data": {
			Doc:         withoutHAL,
			ExpectedErr: "missing element <udev> (required if there is no <hal>)",
		},
		"named_list_item": {
			Doc:         strings.Replace(valid, `<property name="cpu.freq" type="dbus.Int32">1600</property>`, `<property name="cpu.flags" type="list"><value name="x" type="str">fpu</value></property>`, 1),
			ExpectedErr: "list items must not have a name",
		},
		"unnamed_dict_item": {
			Doc:         strings.Replace(valid, `<property name="cpu.freq" type="dbus.Int32">1600</property>`, `<property name="cpu.info" type="dict"><value type="str">fpu</value></property>`, 1),
			ExpectedErr: "dictionary items must have a name",
		},
	} {
		t.Run(name, func(t *testing.T) {
			err := Validate([]byte(tc.Doc))
			require.Error(t, err)
			require.True(t, errors.As(err, &ErrValidation{}), err)
			require.Contains(t, err.Error(), tc.ExpectedErr)
		})
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, Validate([]byte(valid)))
		require.NoError(t, Validate(udevDocument(testKernelVersion, nil, testDMI, udevThinkPad()...)))
	})

	t.Run("valid_datetimes", func(t *testing.T) {
		for _, value := range []string{"2007-09-28T16:09:20", "2007-09-28T16:09:20Z", "2007-09-28T16:09:20.1+02:00", "2007-09-28T16:09:20-05:30"} {
			_, err := parseDateTime(value)
			require.NoError(t, err, value)
		}
	})
}

func TestRepair(t *testing.T) {
	t.Run("comment_control_characters", func(t *testing.T) {
		doc := strings.Replace(string(halDocument(nil, halRoot())), "<comment>ok</comment>", "<comment>o\x1bk&#27;&#x1B;&#10;</comment>", 1)
		require.Error(t, Validate([]byte(doc)))

		repaired := Repair([]byte(doc))
		require.Contains(t, string(repaired), "<comment>ok&#10;</comment>")
		require.NoError(t, Validate(repaired))
		require.Equal(t, repaired, Repair(repaired))
	})

	t.Run("info_containers", func(t *testing.T) {
		doc := string(udevDocument(testKernelVersion, nil, testDMI, udevThinkPad()...))
		start, end := strings.Index(doc, "<udev>"), strings.Index(doc, "</sysfs-attributes>")+len("</sysfs-attributes>")
		udev := doc[start+len("<udev>") : strings.Index(doc, "</udev>")]
		dmi := doc[strings.Index(doc, "<dmi>")+len("<dmi>") : strings.Index(doc, "</dmi>")]
		sysfs := doc[strings.Index(doc, "<sysfs-attributes>")+len("<sysfs-attributes>") : strings.Index(doc, "</sysfs-attributes>")]
		broken := doc[:start] + doc[end:]
		broken = strings.Replace(broken, "</system>",
			`<context>`+
				`<info command="udevadm info --export-db">`+udev+`</info>`+
				`<info command="grep -r . /sys/class/dmi/id/ 2&gt;/dev/null">`+dmi+`</info>`+
				`<info command="sysfs-attributes">`+sysfs+`</info>`+
				`</context></system>`, 1)
		require.Error(t, Validate([]byte(broken)))

		repaired := Repair([]byte(broken))
		require.NoError(t, Validate(repaired))
		require.Equal(t, repaired, Repair(repaired))

		parsed, err := Parse([]byte(broken))
		require.NoError(t, err)
		require.Len(t, parsed.Hardware.Udev, len(udevThinkPad()))
		require.Equal(t, "LENOVO", parsed.Hardware.DMI[dmiSystemVendor])
		require.Len(t, parsed.Context, 3)
	})

	t.Run("valid_document_unchanged", func(t *testing.T) {
		doc := halDocument(nil, halRoot())
		require.Equal(t, doc, Repair(doc))
	})
}

func TestDecompress(t *testing.T) {
	doc := halDocument(nil, halRoot())

	t.Run("plain", func(t *testing.T) {
		result, err := Decompress(doc)
		require.NoError(t, err)
		require.Equal(t, doc, result)
	})

	t.Run("xz", func(t *testing.T) {
		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(doc)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		result, err := Decompress(buf.Bytes())
		require.NoError(t, err)
		require.Equal(t, doc, result)

		parsed, err := Parse(buf.Bytes())
		require.NoError(t, err)
		require.Equal(t, "1.0", parsed.FormatVersion)
	})

	t.Run("corrupted", func(t *testing.T) {
		for _, b := range [][]byte{
			[]byte("BZh91AY&SYgarbage"),
			append(append([]byte{}, magicXZ...), []byte("garbage")...),
		} {
			_, err := Decompress(b)
			require.True(t, errors.As(err, &ErrDecompress{}), err)
		}
	})

	t.Run("too_large", func(t *testing.T) {
		oldLimit := maxDecompressedSize
		maxDecompressedSize = 1024
		t.Cleanup(func() { maxDecompressedSize = oldLimit })

		var buf bytes.Buffer
		w, err := xz.NewWriter(&buf)
		require.NoError(t, err)
		_, err = w.Write(make([]byte, 1<<20))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		require.Less(t, buf.Len(), 1<<20)

		_, err = Decompress(buf.Bytes())
		var errDecompress ErrDecompress
		require.True(t, errors.As(err, &errDecompress), err)
		assert.Equal(t, "xz", errDecompress.Format)

		result, err := Decompress(doc)
		require.NoError(t, err)
		require.Equal(t, doc, result)
	})
}

func TestParseUdevData(t *testing.T) {
	records, err := ParseUdevData("P: /devices/LNXSYSTM:00\nE: SUBSYSTEM=acpi\n\nP: /devices/pci0000:00/0000:00:1f.2\nN: sda\nS: disk/by-id/ata-1\nS: disk/by-id/ata-2\nE: PCI_ID=8086:27C5\nL: 0\n")
	require.NoError(t, err)
	require.Equal(t, []UdevRecord{
		{Path: "/devices/LNXSYSTM:00", Properties: map[string]string{"SUBSYSTEM": "acpi"}},
		{
			Path:       "/devices/pci0000:00/0000:00:1f.2",
			Name:       "sda",
			Symlinks:   []string{"disk/by-id/ata-1", "disk/by-id/ata-2"},
			Properties: map[string]string{"PCI_ID": "8086:27C5"},
		},
	}, records)

	_, err = ParseUdevData("E: SUBSYSTEM=acpi\n")
	require.Error(t, err)
	_, err = ParseUdevData("P: /devices/LNXSYSTM:00\nE: SUBSYSTEM\n")
	require.Error(t, err)
}

func TestParseSysfsAttributes(t *testing.T) {
	attrs, err := ParseSysfsAttributes("P: /devices/a\nA: vendor=ATA\nA: model=ST3160812AS\n\nP: /devices/b\nA: x=y=z\n")
	require.NoError(t, err)
	require.Equal(t, map[string]map[string]string{
		"/devices/a": {"vendor": "ATA", "model": "ST3160812AS"},
		"/devices/b": {"x": "y=z"},
	}, attrs)

	_, err = ParseSysfsAttributes("A: vendor=ATA\n")
	require.Error(t, err)
}
