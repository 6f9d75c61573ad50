package submission

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParsedSubmission is the content of a validated submission document.
type ParsedSubmission struct {
	FormatVersion string
	Summary       Summary
	Hardware      Hardware
	Software      Software
	Questions     []Question
	Context       map[string]string
}

// Summary is the submission metadata.
type Summary struct {
	LiveCD        bool
	SystemID      string
	Distribution  string
	DistroSeries  string
	Architecture  string
	Private       bool
	Contactable   bool
	DateCreated   time.Time
	Client        Client
	KernelRelease string
}

// Client is the program which created the submission.
type Client struct {
	Name    string
	Version string
	Plugins []Plugin
}

// Plugin is a plugin of the client.
type Plugin struct {
	Name    string
	Version string
}

// Hardware contains the device data in one of two formats: either HAL
// is set, or Udev (together with DMI and SysfsAttributes).
type Hardware struct {
	HAL             *HAL
	Udev            []UdevRecord
	DMI             map[string]string
	SysfsAttributes map[string]map[string]string
	Processors      []Processor
	Aliases         []Alias
}

// IsUdev returns true if the device data are in the udev format.
func (hw *Hardware) IsUdev() bool {
	return hw.HAL == nil
}

// HAL is the device list reported by the HAL daemon.
type HAL struct {
	Version string
	Devices []HALDeviceRecord
}

// HALDeviceRecord is one <device> of the <hal> section.
type HALDeviceRecord struct {
	ID         int
	UDI        string
	Properties map[string]Property
}

// UdevRecord is one record of "udevadm info --export-db".
type UdevRecord struct {
	// Path is the "P:" line, the sysfs path of the device.
	Path string
	// Name is the "N:" line, the device node name (if any).
	Name string
	// Symlinks are the "S:" lines.
	Symlinks []string
	// Properties are the "E:" lines.
	Properties map[string]string
}

// Processor is a CPU.
type Processor struct {
	ID         int
	Name       string
	Properties map[string]Property
}

// Alias is an alternative vendor/model name of a device.
type Alias struct {
	Target int
	Vendor string
	Model  string
}

// Software is the software part of the submission.
type Software struct {
	LSBRelease map[string]Property
	Packages   map[string]Package
	XOrg       *XOrg
}

// Package is an installed package.
type Package struct {
	Name       string
	ID         *int
	Properties map[string]Property
}

// XOrg is the X server information.
type XOrg struct {
	Version string
	Drivers []XOrgDriver
}

// XOrgDriver is a loaded X server driver.
type XOrgDriver struct {
	Name    string
	Version string
	Class   string
	ABI     string
	Device  *int
}

// Question is a test question answered by the submitter.
type Question struct {
	Name          string
	Plugin        string
	Targets       []QuestionTarget
	Command       string
	Answer        Answer
	AnswerChoices []any
	Comment       string
}

// QuestionTarget is a device a question is about.
type QuestionTarget struct {
	ID      int
	Drivers []string
}

// Answer is an answer to a question.
type Answer struct {
	Type  string
	Unit  string
	Value string
}

// Parse decompresses, repairs, validates and parses the submission document.
func Parse(raw []byte) (*ParsedSubmission, error) {
	doc, err := Decompress(raw)
	if err != nil {
		return nil, err
	}
	root, err := parseXMLTree(Repair(doc))
	if err != nil {
		return nil, err
	}
	if err := validateTree(root); err != nil {
		return nil, err
	}
	result, err := convertSystem(root)
	if err != nil {
		return nil, ErrValidation{Err: err}
	}
	return result, nil
}

// convertSystem expects the tree to be already validated.
func convertSystem(root *element) (*ParsedSubmission, error) {
	result := &ParsedSubmission{
		FormatVersion: root.Attrs["version"],
	}

	result.Summary = convertSummary(root.child("summary"))

	var err error
	result.Hardware, err = convertHardware(root.child("hardware"))
	if err != nil {
		return nil, err
	}

	result.Software, err = convertSoftware(root.child("software"))
	if err != nil {
		return nil, err
	}

	for _, question := range root.child("questions").childrenNamed("question") {
		q, err := convertQuestion(question)
		if err != nil {
			return nil, err
		}
		result.Questions = append(result.Questions, q)
	}

	if context := root.child("context"); context != nil {
		result.Context = map[string]string{}
		for _, info := range context.childrenNamed("info") {
			result.Context[info.Attrs["command"]] = info.Text
		}
	}
	return result, nil
}

func convertSummary(el *element) Summary {
	value := func(name string) string {
		child := el.child(name)
		if child == nil {
			return ""
		}
		return child.Attrs["value"]
	}
	boolValue := func(name string) bool {
		b, _ := parseBool(value(name))
		return b
	}

	result := Summary{
		LiveCD:        boolValue("live_cd"),
		SystemID:      value("system_id"),
		Distribution:  value("distribution"),
		DistroSeries:  value("distroseries"),
		Architecture:  value("architecture"),
		Private:       boolValue("private"),
		Contactable:   boolValue("contactable"),
		KernelRelease: value("kernel-release"),
	}
	result.DateCreated, _ = parseDateTime(value("date_created"))

	client := el.child("client")
	result.Client = Client{
		Name:    client.Attrs["name"],
		Version: client.Attrs["version"],
	}
	for _, plugin := range client.childrenNamed("plugin") {
		result.Client.Plugins = append(result.Client.Plugins, Plugin{
			Name:    plugin.Attrs["name"],
			Version: plugin.Attrs["version"],
		})
	}
	return result
}

func convertProperties(el *element) (map[string]Property, error) {
	result := map[string]Property{}
	for _, prop := range el.childrenNamed("property") {
		value, err := parsePropertyValue(prop)
		if err != nil {
			return nil, ErrSchemaViolation{Path: prop.Path, Msg: err.Error()}
		}
		result[prop.Attrs["name"]] = Property{
			Type:  prop.Attrs["type"],
			Value: value,
		}
	}
	return result, nil
}

func convertInt(el *element, attrName string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(el.Attrs[attrName]))
	if err != nil {
		return 0, ErrSchemaViolation{Path: el.Path, Msg: fmt.Sprintf("attribute '%s' is not an integer: %v", attrName, err)}
	}
	return i, nil
}

func convertOptionalInt(el *element, attrName string) (*int, error) {
	if _, ok := el.attr(attrName); !ok {
		return nil, nil
	}
	i, err := convertInt(el, attrName)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func convertHardware(el *element) (Hardware, error) {
	var result Hardware

	if hal := el.child("hal"); hal != nil {
		result.HAL = &HAL{
			Version: hal.Attrs["version"],
		}
		for _, device := range hal.childrenNamed("device") {
			id, err := convertInt(device, "id")
			if err != nil {
				return result, err
			}
			props, err := convertProperties(device)
			if err != nil {
				return result, err
			}
			result.HAL.Devices = append(result.HAL.Devices, HALDeviceRecord{
				ID:         id,
				UDI:        device.Attrs["udi"],
				Properties: props,
			})
		}
	} else {
		var err error
		result.Udev, err = ParseUdevData(el.child("udev").Text)
		if err != nil {
			return result, ErrSchemaViolation{Path: el.Path + "/udev", Msg: err.Error()}
		}
		result.DMI = ParseDMIData(el.child("dmi").Text)
		result.SysfsAttributes, err = ParseSysfsAttributes(el.child("sysfs-attributes").Text)
		if err != nil {
			return result, ErrSchemaViolation{Path: el.Path + "/sysfs-attributes", Msg: err.Error()}
		}
	}

	for _, processor := range el.child("processors").childrenNamed("processor") {
		id, err := convertInt(processor, "id")
		if err != nil {
			return result, err
		}
		props, err := convertProperties(processor)
		if err != nil {
			return result, err
		}
		result.Processors = append(result.Processors, Processor{
			ID:         id,
			Name:       processor.Attrs["name"],
			Properties: props,
		})
	}

	if aliases := el.child("aliases"); aliases != nil {
		for _, alias := range aliases.childrenNamed("alias") {
			target, err := convertInt(alias, "target")
			if err != nil {
				return result, err
			}
			result.Aliases = append(result.Aliases, Alias{
				Target: target,
				Vendor: strings.TrimSpace(alias.child("vendor").Text),
				Model:  strings.TrimSpace(alias.child("model").Text),
			})
		}
	}
	return result, nil
}

func convertSoftware(el *element) (Software, error) {
	result := Software{
		Packages: map[string]Package{},
	}

	if lsb := el.child("lsbrelease"); lsb != nil {
		props, err := convertProperties(lsb)
		if err != nil {
			return result, err
		}
		result.LSBRelease = props
	}

	if packages := el.child("packages"); packages != nil {
		for _, pkg := range packages.childrenNamed("package") {
			id, err := convertOptionalInt(pkg, "id")
			if err != nil {
				return result, err
			}
			props, err := convertProperties(pkg)
			if err != nil {
				return result, err
			}
			name := pkg.Attrs["name"]
			result.Packages[name] = Package{
				Name:       name,
				ID:         id,
				Properties: props,
			}
		}
	}

	if xorg := el.child("xorg"); xorg != nil {
		result.XOrg = &XOrg{
			Version: xorg.Attrs["version"],
		}
		for _, driver := range xorg.childrenNamed("driver") {
			device, err := convertOptionalInt(driver, "device")
			if err != nil {
				return result, err
			}
			result.XOrg.Drivers = append(result.XOrg.Drivers, XOrgDriver{
				Name:    driver.Attrs["name"],
				Version: driver.Attrs["version"],
				Class:   driver.Attrs["class"],
				ABI:     driver.Attrs["abi"],
				Device:  device,
			})
		}
	}
	return result, nil
}

func convertQuestion(el *element) (Question, error) {
	result := Question{
		Name:   el.Attrs["name"],
		Plugin: el.Attrs["plugin"],
	}
	for _, target := range el.childrenNamed("target") {
		id, err := convertInt(target, "id")
		if err != nil {
			return result, err
		}
		t := QuestionTarget{ID: id}
		for _, driver := range target.childrenNamed("driver") {
			t.Drivers = append(t.Drivers, strings.TrimSpace(driver.Text))
		}
		result.Targets = append(result.Targets, t)
	}
	if command := el.child("command"); command != nil {
		result.Command = command.Text
	}
	if comment := el.child("comment"); comment != nil {
		result.Comment = comment.Text
	}
	answer := el.child("answer")
	result.Answer = Answer{
		Type:  answer.Attrs["type"],
		Unit:  answer.Attrs["unit"],
		Value: strings.TrimSpace(answer.Text),
	}
	if choices := el.child("answer-choices"); choices != nil {
		for _, value := range choices.childrenNamed("value") {
			v, err := parsePropertyValue(value)
			if err != nil {
				return result, ErrSchemaViolation{Path: value.Path, Msg: err.Error()}
			}
			result.AnswerChoices = append(result.AnswerChoices, v)
		}
	}
	return result, nil
}

// ParseUdevData parses the output of "udevadm info --export-db": records
// separated by empty lines, each line is "<type>: <value>".
func ParseUdevData(text string) ([]UdevRecord, error) {
	var (
		result  []UdevRecord
		current *UdevRecord
	)
	finish := func() error {
		if current == nil {
			return nil
		}
		if current.Path == "" {
			return fmt.Errorf("udev record without a 'P:' line")
		}
		result = append(result, *current)
		current = nil
		return nil
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(nil, 1<<20)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			if err := finish(); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			continue
		}
		if current == nil {
			current = &UdevRecord{Properties: map[string]string{}}
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid udev line '%s'", lineNum, line)
		}
		value = strings.TrimSpace(value)
		switch key {
		case "P":
			current.Path = value
		case "N":
			current.Name = value
		case "S":
			current.Symlinks = append(current.Symlinks, value)
		case "E":
			envKey, envValue, ok := strings.Cut(value, "=")
			if !ok {
				return nil, fmt.Errorf("line %d: invalid udev property line '%s'", lineNum, line)
			}
			current.Properties[envKey] = envValue
		default:
			// "L:" (link priority), "W:" (watch), etc are not used.
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return result, nil
}

// ParseDMIData parses lines "<sysfs file path>:<value>", for example
// "/sys/class/dmi/id/sys_vendor:LENOVO". Malformed lines are ignored.
func ParseDMIData(text string) map[string]string {
	result := map[string]string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		key, value, ok := strings.Cut(line, ":")
		if !ok || !strings.HasPrefix(key, "/") {
			continue
		}
		result[key] = value
	}
	return result
}

// ParseSysfsAttributes parses records of lines "P: <path>" followed by
// "A: <name>=<value>" lines. Returns attributes by device path.
func ParseSysfsAttributes(text string) (map[string]map[string]string, error) {
	result := map[string]map[string]string{}
	var current map[string]string
	for lineNum, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			current = nil
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: invalid sysfs line '%s'", lineNum+1, line)
		}
		value = strings.TrimSpace(value)
		switch key {
		case "P":
			current = map[string]string{}
			result[value] = current
		case "A":
			if current == nil {
				return nil, fmt.Errorf("line %d: sysfs attribute without a preceding 'P:' line", lineNum+1)
			}
			attrName, attrValue, ok := strings.Cut(value, "=")
			if !ok {
				return nil, fmt.Errorf("line %d: invalid sysfs attribute line '%s'", lineNum+1, line)
			}
			current[attrName] = attrValue
		default:
			return nil, fmt.Errorf("line %d: unexpected sysfs line '%s'", lineNum+1, line)
		}
	}
	return result, nil
}
