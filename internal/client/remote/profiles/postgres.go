package profiles

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// PostgresStore implements DocumentStore on a PostgreSQL documents table
// holding fields as jsonb. Useful for self-hosted deployments.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// OpenPostgres connects through the pgx driver and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := MigratePostgres(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

// MigratePostgres applies the embedded schema migrations.
func MigratePostgres(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	p, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return err
	}
	_, err = p.Up(ctx)
	return err
}

func (s *PostgresStore) SetDocument(ctx context.Context, collection, id string, fields Fields) error {
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET fields = EXCLUDED.fields, updated_at = now()
	`, collection, id, data)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetDocument(ctx context.Context, collection, id string) (Fields, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT fields FROM documents WHERE collection = $1 AND id = $2`,
		collection, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	f := Fields{}
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fields: %w", err)
	}
	return f, nil
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, collection, id string, partial Fields) error {
	data, err := json.Marshal(partial)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, fields) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET fields = documents.fields || EXCLUDED.fields, updated_at = now()
	`, collection, id, data)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
