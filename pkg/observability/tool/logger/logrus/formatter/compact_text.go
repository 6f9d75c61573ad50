package formatter

import (
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

var logLevelSymbol = func() []byte {
	result := make([]byte, len(logrus.AllLevels)+1)
	for _, level := range logrus.AllLevels {
		result[level] = strings.ToUpper(level.String()[:1])[0]
	}
	return result
}()

// CompactText is a logrus formatter which prints laconic lines, like
//
//	[2008-06-04T12:34:56Z W parser.go:56] my message	submission_key=abc
type CompactText struct {
	TimestampFormat string
	OmitTimestamp   bool

	// FieldAllowList limits the printed fields, all fields are printed if nil.
	FieldAllowList []string
}

// Format implements logrus.Formatter.
func (f *CompactText) Format(entry *logrus.Entry) ([]byte, error) {
	var header []string
	if !f.OmitTimestamp {
		timestampFormat := time.RFC3339
		if f.TimestampFormat != "" {
			timestampFormat = f.TimestampFormat
		}
		header = append(header, entry.Time.Format(timestampFormat))
	}
	header = append(header, string(logLevelSymbol[entry.Level]))
	if entry.Caller != nil {
		header = append(header, fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line))
	}

	var str strings.Builder
	fmt.Fprintf(&str, "[%s] %s", strings.Join(header, " "), entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if f.FieldAllowList != nil && !slices.Contains(f.FieldAllowList, key) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&str, "\t%s=%v", key, entry.Data[key])
	}

	str.WriteByte('\n')
	return []byte(str.String()), nil
}
