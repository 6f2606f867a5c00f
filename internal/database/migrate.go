package database

import (
	"context"
	_ "embed"
	"fmt"
)

// Schema is the DDL for the record tables. Every statement is idempotent.
//
//go:embed schema.sql
var Schema string

// Migrate applies Schema.
func Migrate(ctx context.Context, conn DBTX) error {
	if _, err := conn.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
