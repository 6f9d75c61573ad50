package logentryfingerprint

import (
	"testing"

	"github.com/facebookincubator/go-belt/pkg/field"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/stretchr/testify/require"
)

func extractFingerprint(t *testing.T, fields field.AbstractFields) FieldValue {
	var result FieldValue
	fields.ForEachField(func(f *field.Field) bool {
		if f.Key == FieldKey {
			result = f.Value.(FieldValue)
		}
		return true
	})
	require.NotEmpty(t, result)
	return result
}

func TestPreHook(t *testing.T) {
	const format = "Parsing submission %s: Found SCSI device without a parent"
	hook := PreHook{}

	first := extractFingerprint(t, hook.ProcessInputf(nil, logger.LevelWarning, format, "abc").ExtraFields)
	second := extractFingerprint(t, hook.ProcessInputf(nil, logger.LevelWarning, format, "def").ExtraFields)
	require.Equal(t, first, second)
	require.Len(t, string(first), fingerprintSize*2)

	otherLevel := extractFingerprint(t, hook.ProcessInputf(nil, logger.LevelError, format, "abc").ExtraFields)
	require.NotEqual(t, first, otherLevel)

	require.Equal(t,
		extractFingerprint(t, hook.ProcessInput(nil, logger.LevelInfo, "a", 1).ExtraFields),
		extractFingerprint(t, hook.ProcessInput(nil, logger.LevelInfo, "b", 2).ExtraFields),
	)
	require.NotEqual(t,
		extractFingerprint(t, hook.ProcessInput(nil, logger.LevelInfo, "a", 1).ExtraFields),
		extractFingerprint(t, hook.ProcessInput(nil, logger.LevelInfo, "a", "1").ExtraFields),
	)

	withFields := extractFingerprint(t, hook.ProcessInputFields(nil, logger.LevelInfo, "msg",
		field.Fields{{Key: "submission_key", Value: "abc"}}).ExtraFields)
	withOtherValue := extractFingerprint(t, hook.ProcessInputFields(nil, logger.LevelInfo, "msg",
		field.Fields{{Key: "submission_key", Value: "def"}}).ExtraFields)
	require.Equal(t, withFields, withOtherValue)
}
