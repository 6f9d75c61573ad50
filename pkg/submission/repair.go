package submission

import (
	"bytes"
	"regexp"
	"strconv"
)

var (
	// Comments are free text which sometimes contain control characters
	// (raw or as character references) the XML parser chokes on.
	commentRegexp = regexp.MustCompile(`(?s)<comment>.*?</comment>`)
	charRefRegexp = regexp.MustCompile(`&#(x[0-9a-fA-F]+|[0-9]+);`)

	// Some clients do not provide <hal>/<udev> sections, but the raw output
	// of the commands, e.g.:
	//
	//	<info command="udevadm info --export-db">P: /devices/...</info>
	infoRegexp = regexp.MustCompile(`(?s)<info\s+command="([^"]*)"\s*>(.*?)</info>`)

	hardwareOpenRegexp = regexp.MustCompile(`<hardware\s*>`)
)

// Repair reshapes known alternative encodings of submissions into
// the expected one. It never adds device data which was not in the input,
// and Repair(Repair(x)) == Repair(x).
func Repair(doc []byte) []byte {
	doc = commentRegexp.ReplaceAllFunc(doc, stripControlCharacters)
	return repairDeviceContainers(doc)
}

func isForbiddenControlCharacter(c uint64) bool {
	return c < 0x20 && c != '\t' && c != '\n' && c != '\r'
}

func stripControlCharacters(text []byte) []byte {
	result := make([]byte, 0, len(text))
	for _, c := range text {
		if isForbiddenControlCharacter(uint64(c)) {
			continue
		}
		result = append(result, c)
	}
	return charRefRegexp.ReplaceAllFunc(result, func(ref []byte) []byte {
		num := string(ref[2 : len(ref)-1])
		base := 10
		if num[0] == 'x' {
			num, base = num[1:], 16
		}
		c, err := strconv.ParseUint(num, base, 32)
		if err == nil && isForbiddenControlCharacter(c) {
			return nil
		}
		return ref
	})
}

func repairDeviceContainers(doc []byte) []byte {
	if bytes.Contains(doc, []byte("<hal")) || bytes.Contains(doc, []byte("<udev>")) {
		return doc
	}

	var udev, dmi, sysfs []byte
	for _, match := range infoRegexp.FindAllSubmatch(doc, -1) {
		command, content := match[1], match[2]
		switch {
		case bytes.Contains(command, []byte("udevadm")) && udev == nil:
			udev = content
		case bytes.Contains(command, []byte("dmi")) && dmi == nil:
			dmi = content
		case bytes.Contains(command, []byte("sysfs")) && sysfs == nil:
			sysfs = content
		}
	}
	if udev == nil {
		return doc
	}

	loc := hardwareOpenRegexp.FindIndex(doc)
	if loc == nil {
		return doc
	}

	var containers bytes.Buffer
	appendContainer := func(tag string, content []byte) {
		if content == nil {
			return
		}
		containers.WriteString("<" + tag + ">")
		containers.Write(content)
		containers.WriteString("</" + tag + ">")
	}
	appendContainer("udev", udev)
	appendContainer("dmi", dmi)
	appendContainer("sysfs-attributes", sysfs)

	result := make([]byte, 0, len(doc)+containers.Len())
	result = append(result, doc[:loc[1]]...)
	result = append(result, containers.Bytes()...)
	result = append(result, doc[loc[1]:]...)
	return result
}
