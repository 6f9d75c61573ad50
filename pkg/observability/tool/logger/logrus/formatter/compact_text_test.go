package formatter

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestCompactText(t *testing.T) {
	entry := &logrus.Entry{
		Time: time.Date(2008, 6, 4, 12, 34, 56, 7, time.UTC),
		Data: logrus.Fields{
			"submission_key": "abc",
			"pid":            1,
		},
		Level:   logrus.WarnLevel,
		Message: "Parsing submission abc: Found SCSI device without a parent",
	}

	for name, tc := range map[string]struct {
		formatter *CompactText
		expected  string
	}{
		"all_fields": {
			formatter: &CompactText{},
			expected:  "[2008-06-04T12:34:56Z W] Parsing submission abc: Found SCSI device without a parent\tpid=1\tsubmission_key=abc\n",
		},
		"allow_list": {
			formatter: &CompactText{FieldAllowList: []string{"submission_key"}},
			expected:  "[2008-06-04T12:34:56Z W] Parsing submission abc: Found SCSI device without a parent\tsubmission_key=abc\n",
		},
		"no_timestamp": {
			formatter: &CompactText{OmitTimestamp: true, FieldAllowList: []string{}},
			expected:  "[W] Parsing submission abc: Found SCSI device without a parent\n",
		},
		"timestamp_format": {
			formatter: &CompactText{TimestampFormat: "15:04", FieldAllowList: []string{"pid"}},
			expected:  "[12:34 W] Parsing submission abc: Found SCSI device without a parent\tpid=1\n",
		},
	} {
		t.Run(name, func(t *testing.T) {
			b, err := tc.formatter.Format(entry)
			require.NoError(t, err)
			require.Equal(t, tc.expected, string(b))
		})
	}
}
