package helpers

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/immune-gmbh/hwdb/pkg/storage/models"
)

type driverInfo struct {
	PackageName string
	Name        string `db:"driver_name"`
}

type row struct {
	ID          int64        `db:"id,pk"`
	Bus         models.HWBus `db:"bus"`
	DateCreated time.Time    `db:"date_created"`
	Driver      driverInfo   `db:"driver"`
	Cached      bool         `db:"-"`
	ProductID   string
	private     int
}

func TestColumnName(t *testing.T) {
	typ := reflect.TypeOf(row{})
	for fieldName, expected := range map[string]string{
		"ID":        "id",
		"Bus":       "bus",
		"Cached":    "-",
		"ProductID": "product_id",
	} {
		f, ok := typ.FieldByName(fieldName)
		require.True(t, ok)
		require.Equal(t, expected, ColumnName(f), fieldName)
	}
}

func TestValuesAndColumns(t *testing.T) {
	r := &row{
		ID:        42,
		Bus:       models.HWBusPCI,
		Driver:    driverInfo{PackageName: "linux-image-2.6.24-19-generic", Name: "yenta_cardbus"},
		ProductID: "0x7134",
		private:   1,
	}

	values, columns, err := ValuesAndColumns(r, "ID")
	require.NoError(t, err)
	require.Equal(t, []string{"bus", "date_created", "driver_package_name", "driver_driver_name", "product_id"}, columns)
	require.Len(t, values, len(columns))
	require.Equal(t, &r.Bus, values[0])
	require.Equal(t, &r.DateCreated, values[1])
	require.Equal(t, &r.Driver.Name, values[3])

	t.Run("non_pointer", func(t *testing.T) {
		_, columns, err := ValuesAndColumns(*r)
		require.NoError(t, err)
		require.Equal(t, "id", columns[0])
	})

	t.Run("typed_nil", func(t *testing.T) {
		_, columns, err := ValuesAndColumns((*models.HWDevice)(nil), "ID")
		require.NoError(t, err)
		require.Equal(t, []string{"bus", "vendor_id", "product_id", "name"}, columns)
	})

	t.Run("not_a_structure", func(t *testing.T) {
		_, _, err := ValuesAndColumns(1)
		require.Error(t, err)
	})
}
