package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"workforce_backend/pkg/utils"

	_ "github.com/lib/pq" // PostgreSQL driver
)

//go:embed schema.sql
var schemaSQL string

// InitPostgres opens and verifies the PostgreSQL connection pool.
func InitPostgres(ctx context.Context, dsn string, applySchema bool) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}
	utils.LogInfo("Successfully connected to PostgreSQL")

	if applySchema {
		if err := ApplySchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// ApplySchema executes the embedded DDL. Every statement is idempotent.
func ApplySchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("could not execute schema script: %w", err)
	}
	utils.LogInfo("Database schema applied successfully")
	return nil
}
