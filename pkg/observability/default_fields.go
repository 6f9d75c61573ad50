package observability

import (
	"os"
	"path/filepath"

	"github.com/facebookincubator/go-belt/pkg/field"
)

// DefaultFields returns the fields attached to every log entry of a process.
func DefaultFields() field.Fields {
	result := field.Fields{
		{Key: "pid", Value: FieldPID(os.Getpid())},
		{Key: "uid", Value: FieldUID(os.Getuid())},
	}
	if len(os.Args) > 0 {
		result = append(result, field.Field{
			Key:   "program",
			Value: FieldProgram(filepath.Base(os.Args[0])),
		})
	}
	if hostname, err := os.Hostname(); err == nil {
		result = append(result, field.Field{
			Key:   "hostname",
			Value: FieldHostname(hostname),
		})
	}
	return result
}
