package application

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type schemaRegistration struct {
	fsys *embed.FS
	dir  string
}

// MigrationRegistry collects the per-module embedded schema files. Modules
// register their schema directory at load time; Run applies everything with
// goose over a single version table, so migration version numbers must be
// unique across modules.
type MigrationRegistry struct {
	schemas []schemaRegistration
}

func NewMigrationRegistry() *MigrationRegistry {
	return &MigrationRegistry{}
}

func (m *MigrationRegistry) RegisterSchema(fsys *embed.FS, dir string) {
	m.schemas = append(m.schemas, schemaRegistration{fsys: fsys, dir: dir})
}

func (m *MigrationRegistry) Run(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	for _, schema := range m.schemas {
		sub, err := fs.Sub(schema.fsys, schema.dir)
		if err != nil {
			return fmt.Errorf("migrations: open schema dir %s: %w", schema.dir, err)
		}
		goose.SetBaseFS(sub)
		if err := goose.UpContext(ctx, db, "."); err != nil {
			goose.SetBaseFS(nil)
			return fmt.Errorf("migrations: apply %s: %w", schema.dir, err)
		}
	}
	goose.SetBaseFS(nil)
	return nil
}
