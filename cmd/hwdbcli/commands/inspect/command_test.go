package inspect

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/immune-gmbh/hwdb/pkg/commands"
	"github.com/immune-gmbh/hwdb/pkg/submission"
)

const testSubmission = "testdata/hal_t41.xml"

func execute(t *testing.T, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := &Command{output: &out}
	flagSet := flag.NewFlagSet("inspect", flag.ContinueOnError)
	cmd.SetupFlagSet(flagSet)
	require.NoError(t, flagSet.Parse(args))
	err := cmd.Execute(context.Background(), commands.Config{}, flagSet.Args())
	return out.String(), err
}

func TestExecuteTree(t *testing.T) {
	out, err := execute(t, "-no-color", testSubmission)
	require.NoError(t, err)
	require.Equal(t, submission.HALRootUDI+` [SYSTEM] Lenovo:T41 "Lenovo T41"`+"\n"+
		`  /org/freedesktop/Hal/devices/pci_8086_7134 [PCI] 0x8086:0x7134 "Intel Corporation 82371AB PIIX4 CardBus" driver=yenta_cardbus`+"\n",
		out)
}

func TestExecuteYAML(t *testing.T) {
	out, err := execute(t, "-format", "yaml", testSubmission)
	require.NoError(t, err)

	var root yamlNode
	require.NoError(t, yaml.Unmarshal([]byte(out), &root))
	assert.Equal(t, submission.HALRootUDI, root.ID)
	assert.Equal(t, "SYSTEM", root.Bus)
	assert.True(t, root.Real)
	assert.True(t, root.Reliable)
	require.Len(t, root.Children, 1)

	bridge := root.Children[0]
	assert.Equal(t, "pci", bridge.RawBus)
	assert.Equal(t, "PCI", bridge.Bus)
	require.NotNil(t, bridge.VendorID)
	assert.Equal(t, "0x8086", *bridge.VendorID)
	require.NotNil(t, bridge.ProductID)
	assert.Equal(t, "0x7134", *bridge.ProductID)
	assert.Equal(t, "yenta_cardbus", bridge.Driver)
	assert.Empty(t, bridge.Children)
}

func TestExecuteDumpProperties(t *testing.T) {
	out, err := execute(t, "-dump-properties", testSubmission)
	require.NoError(t, err)
	require.Contains(t, out, "/org/freedesktop/Hal/devices/pci_8086_7134:\n")
	require.Contains(t, out, "yenta_cardbus")
	require.Contains(t, out, "system.hardware.vendor")
}

func TestExecuteInvalid(t *testing.T) {
	_, err := execute(t, "-format", "yaml", "command.go")
	var exitCoder commands.ExitCoder
	require.True(t, errors.As(err, &exitCoder), err)
	require.Equal(t, 4, exitCoder.ExitCode())
}

func TestFlagFormat(t *testing.T) {
	var f flagFormat
	require.NoError(t, f.Set(" YAML"))
	require.Equal(t, flagFormatYAML, f)
	require.Error(t, f.Set("json"))
}
