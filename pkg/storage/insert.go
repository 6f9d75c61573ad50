package storage

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/immune-gmbh/hwdb/pkg/storage/helpers"
)

// If it was a MySQL error 1062 (or its SQLite counterpart) then it means
// the row with such UNIQUE key already exists and we want to return an
// appropriate error in this case.
func insertError(table string, err error) error {
	if err == nil {
		return nil
	}
	if isDuplicateError(err) {
		return ErrAlreadyExists{Table: table, Err: err}
	}
	return ErrUnableToInsert{Table: table, Err: err}
}

func isDuplicateError(err error) bool {
	if asMySQLError(err, 1062) != nil {
		// MySQL error 1062 is used on duplicate error.
		return true
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return false
}

func asMySQLError(err error, errNo uint16) *mysql.MySQLError {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == errNo {
		return mysqlErr
	}
	return nil
}

// insertRow inserts all the fields of the row (except "ID") to the table
// and returns the ID of the inserted row.
func insertRow(ctx context.Context, tx *sqlx.Tx, table string, row any) (int64, error) {
	values, columns, err := helpers.ValuesAndColumns(row, "ID")
	if err != nil {
		return 0, fmt.Errorf("unable to get columns of %T: %w", row, err)
	}
	for idx, value := range values {
		values[idx], err = driver.DefaultParameterConverter.ConvertValue(value)
		if err != nil {
			return 0, fmt.Errorf("unable to convert the value of column '%s': %w", columns[idx], err)
		}
	}

	query := "INSERT INTO `" + table + "` (" + constructColumns("", columns) + ") VALUES (" + constructPlaceholders(len(columns)) + ")"
	result, err := tx.ExecContext(ctx, query, values...)
	if err != nil {
		return 0, insertError(table, err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, ErrUnableToInsert{Table: table, Err: fmt.Errorf("unable to get the ID of the inserted row: %w", err)}
	}
	return id, nil
}

func constructPlaceholders(cnt int) string {
	if cnt == 0 {
		return ""
	}
	return strings.Repeat("?, ", cnt-1) + "?"
}

func constructColumns(tableName string, columns []string) string {
	fullNames := make([]string, 0, len(columns))
	for _, column := range columns {
		if strings.Contains(column, "`") {
			panic(fmt.Sprintf("column <%s> contains a grave symbol", column))
		}
		var fullName string
		if tableName == "" {
			fullName = fmt.Sprintf("`%s`", column)
		} else {
			fullName = fmt.Sprintf("`%s`.`%s`", tableName, column)
		}
		fullNames = append(fullNames, fullName)
	}
	return strings.Join(fullNames, ",")
}
