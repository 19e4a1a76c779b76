package postgres

import (
	"context"
	_ "embed"
	"fmt"
)

// Schema DDL del ledger más el catálogo inicial. Idempotente (IF NOT EXISTS).
//
//go:embed migrations/001_init.sql
var Schema string

// Migrate aplica Schema. Se puede ejecutar en cada arranque.
func Migrate(ctx context.Context, q Querier) error {
	if _, err := q.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("aplicar esquema: %w", err)
	}
	return nil
}
