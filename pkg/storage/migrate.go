package storage

import (
	"context"
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationFS embed.FS

// Migrate creates the schema (if it does not exist, yet). Migrations are
// applied in the lexicographical order of their file names and must be
// idempotent.
func (stor *Storage) Migrate(ctx context.Context) error {
	dir := path.Join("migrations", string(stor.Dialect))
	entries, err := migrationFS.ReadDir(dir)
	if err != nil {
		return ErrMigrate{Migration: dir, Err: err}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := migrationFS.ReadFile(path.Join(dir, entry.Name()))
		if err != nil {
			return ErrMigrate{Migration: entry.Name(), Err: err}
		}

		// go-sql-driver/mysql does not accept multiple statements per query
		// unless "multiStatements" is enabled in the DSN.
		for idx, stmt := range strings.Split(string(raw), ";\n") {
			stmt = strings.TrimSpace(stmt)
			if stmt == "" {
				continue
			}
			if _, err := stor.DB.ExecContext(ctx, stmt); err != nil {
				return ErrMigrate{Migration: entry.Name(), Err: fmt.Errorf("statement #%d: %w", idx, err)}
			}
		}
		stor.Logger.Debugf("applied migration %s", entry.Name())
	}

	return nil
}
