// Package helpers turns `db`-tagged row structures into lists of columns
// and values for hand-written INSERT statements.
package helpers

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/stoewer/go-strcase"
)

var (
	valuerType = reflect.TypeOf((*driver.Valuer)(nil)).Elem()
	timeType   = reflect.TypeOf(time.Time{})
)

// ColumnName returns the column of the field: the first item of the `db`
// tag, or the snake-cased field name if there is no tag. "-" means the
// field is not stored.
func ColumnName(f reflect.StructField) string {
	tag, ok := f.Tag.Lookup("db")
	if !ok {
		return strcase.SnakeCase(f.Name)
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

// ValuesAndColumns returns pointers to the stored fields of the row and
// the names of their columns. Fields with names from skipFields are omitted
// (for example the auto-incremented "ID").
//
// Nested structures are flattened with the column of the field as the
// prefix, unless they are SQL values themselves (like time.Time or anything
// implementing driver.Valuer).
func ValuesAndColumns(row any, skipFields ...string) ([]any, []string, error) {
	v := reflect.ValueOf(row)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			v = reflect.New(v.Type().Elem())
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("expected a structure, received %T", row)
	}
	if !v.CanAddr() {
		copied := reflect.New(v.Type()).Elem()
		copied.Set(v)
		v = copied
	}
	return valuesAndColumns("", v, skipFields)
}

func isSQLValue(t reflect.Type) bool {
	return t == timeType || t.Implements(valuerType) || reflect.PointerTo(t).Implements(valuerType)
}

func valuesAndColumns(prefix string, v reflect.Value, skipFields []string) ([]any, []string, error) {
	t := v.Type()

	var (
		values  []any
		columns []string
	)
	for idx := 0; idx < t.NumField(); idx++ {
		f := t.Field(idx)
		if !f.IsExported() || slices.Contains(skipFields, f.Name) {
			continue
		}
		column := ColumnName(f)
		if column == "-" {
			continue
		}

		fieldValue := v.Field(idx)
		if f.Type.Kind() == reflect.Struct && !isSQLValue(f.Type) {
			childPrefix := prefix
			if !f.Anonymous {
				childPrefix += column + "_"
			}
			childValues, childColumns, err := valuesAndColumns(childPrefix, fieldValue, skipFields)
			if err != nil {
				return nil, nil, fmt.Errorf("unable to process field '%s': %w", f.Name, err)
			}
			values = append(values, childValues...)
			columns = append(columns, childColumns...)
			continue
		}

		values = append(values, fieldValue.Addr().Interface())
		columns = append(columns, prefix+column)
	}
	return values, columns, nil
}
