package submission

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// SupportedFormatVersions are the values of <system version="..."> which
// could be processed.
var SupportedFormatVersions = []string{"1.0", "1.1"}

type occurrence int

const (
	occursOnce = occurrence(iota)
	occursOptional
	occursAny
	occursAtLeastOnce
)

type childrenSpec map[string]occurrence

// validator checks a parsed document against the submission grammar and
// collects all the violations.
type validator struct {
	errs *multierror.Error
}

// Validate checks that the document conforms to the submission grammar.
// Returns ErrValidation with all the found violations if it does not.
func Validate(doc []byte) error {
	root, err := parseXMLTree(doc)
	if err != nil {
		return err
	}
	return validateTree(root)
}

func validateTree(root *element) error {
	v := &validator{}
	v.validateSystem(root)
	if err := v.errs.ErrorOrNil(); err != nil {
		return ErrValidation{Err: err}
	}
	return nil
}

func (v *validator) fail(el *element, format string, args ...any) {
	path := ""
	if el != nil {
		path = el.Path
	}
	v.errs = multierror.Append(v.errs, ErrSchemaViolation{Path: path, Msg: fmt.Sprintf(format, args...)})
}

func (v *validator) checkAttrs(el *element, required []string, optional ...string) {
	known := map[string]struct{}{}
	for _, name := range required {
		known[name] = struct{}{}
		if _, ok := el.Attrs[name]; !ok {
			v.fail(el, "missing attribute '%s'", name)
		}
	}
	for _, name := range optional {
		known[name] = struct{}{}
	}
	var unknown []string
	for name := range el.Attrs {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		v.fail(el, "unexpected attribute '%s'", name)
	}
}

// checkChildren verifies that the element has only the allowed children
// in the allowed quantities (in any order), and returns them grouped by name.
func (v *validator) checkChildren(el *element, spec childrenSpec) map[string][]*element {
	result := map[string][]*element{}
	for _, child := range el.Children {
		if _, ok := spec[child.Name]; !ok {
			v.fail(el, "unexpected element <%s>", child.Name)
			continue
		}
		result[child.Name] = append(result[child.Name], child)
	}

	names := make([]string, 0, len(spec))
	for name := range spec {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		count := len(result[name])
		switch spec[name] {
		case occursOnce:
			if count == 0 {
				v.fail(el, "missing element <%s>", name)
			}
			if count > 1 {
				v.fail(el, "duplicate element <%s>", name)
			}
		case occursOptional:
			if count > 1 {
				v.fail(el, "duplicate element <%s>", name)
			}
		case occursAtLeastOnce:
			if count == 0 {
				v.fail(el, "at least one element <%s> expected", name)
			}
		}
	}
	return result
}

func (v *validator) checkNoText(el *element) {
	if strings.TrimSpace(el.Text) != "" {
		v.fail(el, "unexpected text content")
	}
}

func (v *validator) checkLeaf(el *element, required []string, optional ...string) {
	v.checkAttrs(el, required, optional...)
	v.checkChildren(el, childrenSpec{})
}

func (v *validator) validateSystem(el *element) {
	if el.Name != "system" {
		v.fail(nil, "root node is not '<system>'")
		return
	}
	v.checkAttrs(el, []string{"version"})
	if version, ok := el.attr("version"); ok && !isSupportedFormatVersion(version) {
		v.fail(el, "invalid submission format version: '%s'", version)
	}
	v.checkNoText(el)

	children := v.checkChildren(el, childrenSpec{
		"summary":   occursOnce,
		"hardware":  occursOnce,
		"software":  occursOnce,
		"questions": occursOnce,
		"context":   occursOptional,
	})
	for _, child := range children["summary"] {
		v.validateSummary(child)
	}
	for _, child := range children["hardware"] {
		v.validateHardware(child)
	}
	for _, child := range children["software"] {
		v.validateSoftware(child)
	}
	for _, child := range children["questions"] {
		v.validateQuestions(child)
	}
	for _, child := range children["context"] {
		v.validateContext(child)
	}
}

func isSupportedFormatVersion(version string) bool {
	for _, supported := range SupportedFormatVersions {
		if version == supported {
			return true
		}
	}
	return false
}

func (v *validator) validateSummary(el *element) {
	v.checkAttrs(el, nil)
	v.checkNoText(el)
	children := v.checkChildren(el, childrenSpec{
		"live_cd":        occursOnce,
		"system_id":      occursOnce,
		"distribution":   occursOnce,
		"distroseries":   occursOnce,
		"architecture":   occursOnce,
		"private":        occursOnce,
		"contactable":    occursOnce,
		"date_created":   occursOnce,
		"client":         occursOnce,
		"kernel-release": occursOptional,
	})

	for _, name := range []string{"live_cd", "private", "contactable"} {
		for _, child := range children[name] {
			v.checkLeaf(child, []string{"value"})
			if value, ok := child.attr("value"); ok {
				if _, err := parseBool(value); err != nil {
					v.fail(child, "%v", err)
				}
			}
		}
	}
	for _, name := range []string{"system_id", "distribution", "distroseries", "architecture", "kernel-release"} {
		for _, child := range children[name] {
			v.checkLeaf(child, []string{"value"})
		}
	}
	for _, child := range children["date_created"] {
		v.checkLeaf(child, []string{"value"})
		if value, ok := child.attr("value"); ok {
			if _, err := parseDateTime(value); err != nil {
				v.fail(child, "%v", err)
			}
		}
	}
	for _, child := range children["client"] {
		v.checkAttrs(child, []string{"name", "version"})
		plugins := v.checkChildren(child, childrenSpec{"plugin": occursAny})
		for _, plugin := range plugins["plugin"] {
			v.checkLeaf(plugin, []string{"name", "version"})
		}
	}
}

var dateTimeRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})?$`)

// parseDateTime parses ISO-8601 datetimes with optional fractional
// seconds and optional time zone. A datetime without a time zone is UTC.
func parseDateTime(s string) (time.Time, error) {
	if !dateTimeRegexp.MatchString(s) {
		return time.Time{}, fmt.Errorf("invalid datetime value '%s'", s)
	}
	layout := "2006-01-02T15:04:05.999999999"
	if strings.HasSuffix(s, "Z") || strings.LastIndexAny(s, "+-") > len("2006-01-02") {
		layout += "Z07:00"
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime value '%s': %w", s, err)
	}
	return t.UTC(), nil
}

func (v *validator) validateHardware(el *element) {
	v.checkAttrs(el, nil)
	v.checkNoText(el)
	children := v.checkChildren(el, childrenSpec{
		"hal":              occursOptional,
		"udev":             occursOptional,
		"dmi":              occursOptional,
		"sysfs-attributes": occursOptional,
		"processors":       occursOnce,
		"aliases":          occursOptional,
	})

	hasUdevData := len(children["udev"]) > 0 || len(children["dmi"]) > 0 || len(children["sysfs-attributes"]) > 0
	switch {
	case len(children["hal"]) > 0 && hasUdevData:
		v.fail(el, "<hal> and <udev>/<dmi>/<sysfs-attributes> are mutually exclusive")
	case len(children["hal"]) == 0:
		for _, name := range []string{"udev", "dmi", "sysfs-attributes"} {
			if len(children[name]) == 0 {
				v.fail(el, "missing element <%s> (required if there is no <hal>)", name)
			}
		}
	}

	for _, child := range children["hal"] {
		v.checkAttrs(child, []string{"version"})
		v.checkNoText(child)
		devices := v.checkChildren(child, childrenSpec{"device": occursAtLeastOnce})
		for _, device := range devices["device"] {
			v.checkAttrs(device, []string{"id", "udi"}, "parent")
			v.checkNoText(device)
			props := v.checkChildren(device, childrenSpec{"property": occursAtLeastOnce})
			for _, prop := range props["property"] {
				v.validateProperty(prop)
			}
		}
	}
	for _, name := range []string{"udev", "dmi", "sysfs-attributes"} {
		for _, child := range children[name] {
			v.checkLeaf(child, nil)
		}
	}
	for _, child := range children["processors"] {
		v.checkAttrs(child, nil)
		v.checkNoText(child)
		processors := v.checkChildren(child, childrenSpec{"processor": occursAny})
		for _, processor := range processors["processor"] {
			v.checkAttrs(processor, []string{"id", "name"})
			v.checkNoText(processor)
			v.validateProperties(processor)
		}
	}
	for _, child := range children["aliases"] {
		v.checkAttrs(child, nil)
		v.checkNoText(child)
		aliases := v.checkChildren(child, childrenSpec{"alias": occursAny})
		for _, alias := range aliases["alias"] {
			v.checkAttrs(alias, []string{"target"})
			v.checkNoText(alias)
			for _, leaves := range v.checkChildren(alias, childrenSpec{"vendor": occursOnce, "model": occursOnce}) {
				for _, leaf := range leaves {
					v.checkLeaf(leaf, nil)
				}
			}
		}
	}
}

func (v *validator) validateProperties(el *element) {
	props := v.checkChildren(el, childrenSpec{"property": occursAny})
	for _, prop := range props["property"] {
		v.validateProperty(prop)
	}
}

func (v *validator) validateProperty(el *element) {
	v.checkAttrs(el, []string{"name", "type"})
	v.validateValue(el)
}

func (v *validator) validateValue(el *element) {
	if _, ok := el.attr("type"); !ok {
		return
	}
	if _, err := parsePropertyValue(el); err != nil {
		v.fail(el, "%v", err)
	}
}

func (v *validator) validateSoftware(el *element) {
	v.checkAttrs(el, nil)
	v.checkNoText(el)
	children := v.checkChildren(el, childrenSpec{
		"lsbrelease": occursOptional,
		"packages":   occursOptional,
		"xorg":       occursOptional,
	})
	for _, child := range children["lsbrelease"] {
		v.checkAttrs(child, nil)
		v.checkNoText(child)
		v.validateProperties(child)
	}
	for _, child := range children["packages"] {
		v.checkAttrs(child, nil)
		v.checkNoText(child)
		packages := v.checkChildren(child, childrenSpec{"package": occursAny})
		for _, pkg := range packages["package"] {
			v.checkAttrs(pkg, []string{"name"}, "id")
			v.checkNoText(pkg)
			v.validateProperties(pkg)
		}
	}
	for _, child := range children["xorg"] {
		v.checkAttrs(child, []string{"version"})
		v.checkNoText(child)
		drivers := v.checkChildren(child, childrenSpec{"driver": occursAny})
		for _, driver := range drivers["driver"] {
			v.checkLeaf(driver, []string{"name"}, "version", "class", "abi", "device")
		}
	}
}

func (v *validator) validateQuestions(el *element) {
	v.checkAttrs(el, nil)
	v.checkNoText(el)
	questions := v.checkChildren(el, childrenSpec{"question": occursAny})
	for _, question := range questions["question"] {
		v.checkAttrs(question, []string{"name"}, "plugin")
		v.checkNoText(question)
		children := v.checkChildren(question, childrenSpec{
			"target":         occursAny,
			"command":        occursOptional,
			"answer":         occursOnce,
			"answer-choices": occursOptional,
			"comment":        occursOptional,
		})
		for _, target := range children["target"] {
			v.checkAttrs(target, []string{"id"})
			v.checkNoText(target)
			drivers := v.checkChildren(target, childrenSpec{"driver": occursAny})
			for _, driver := range drivers["driver"] {
				v.checkLeaf(driver, nil)
			}
		}
		for _, name := range []string{"command", "comment"} {
			for _, child := range children[name] {
				v.checkLeaf(child, nil)
			}
		}
		for _, answer := range children["answer"] {
			v.checkLeaf(answer, []string{"type"}, "unit")
			if typ, ok := answer.attr("type"); ok && typ != "multiple_choice" && typ != "measurement" {
				v.fail(answer, "invalid answer type '%s'", typ)
			}
		}
		for _, choices := range children["answer-choices"] {
			v.checkAttrs(choices, nil)
			v.checkNoText(choices)
			values := v.checkChildren(choices, childrenSpec{"value": occursAny})
			for _, value := range values["value"] {
				v.checkAttrs(value, []string{"type"})
				v.validateValue(value)
			}
		}
	}
}

func (v *validator) validateContext(el *element) {
	v.checkAttrs(el, nil)
	v.checkNoText(el)
	infos := v.checkChildren(el, childrenSpec{"info": occursAny})
	for _, info := range infos["info"] {
		v.checkLeaf(info, []string{"command"})
	}
}
