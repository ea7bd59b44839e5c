package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/schemata/internal/schema"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on collection_items.entity_id for membership lookups
const currentSchemaVersion = 1

const metaSchemaHash = "schema_hash"

// Store is the durable home of entities created through write scopes.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db     *sql.DB
	schema *schema.Schema
	ids    IDGenerator
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator replaces the default UUIDv7 ID generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) {
		s.ids = g
	}
}

// WithLogger sets the logger used for debug records of writes.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		s.logger = l
	}
}

// Open creates or opens a SQLite database at the given path for the class
// table sch. Applies required pragmas and migrations automatically.
//
// The first Open records the hash of sch; later opens with a different class
// table fail with ErrSchemaChanged.
//
// This function is idempotent - safe to call multiple times.
func Open(path string, sch *schema.Schema, opts ...Option) (*Store, error) {
	if sch == nil {
		return nil, errors.New("open store: schema is required")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time; a single connection also
	// keeps the per-connection pragmas in force.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	if err := checkSchemaHash(db, sch); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{
		db:     db,
		schema: sch,
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying sql.DB for direct queries.
// Use with caution - prefer using Store methods when available.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Schema returns the class table the store was opened with.
func (s *Store) Schema() *schema.Schema {
	return s.schema
}

// Begin opens a write scope. The caller must Commit or Rollback it.
func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin write scope: %w", err)
	}
	return &Tx{tx: sqlTx, store: s}, nil
}

// WithTx runs fn inside a write scope, committing when fn returns nil and
// rolling back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback() // No-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental table migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes collection members so Delete can find memberships of
// an entity without scanning every list.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_collection_items_entity
		ON collection_items(entity_id)
	`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// checkSchemaHash records the class table hash on first use and rejects a
// different table afterwards.
func checkSchemaHash(db *sql.DB, sch *schema.Schema) error {
	hash, err := sch.Hash()
	if err != nil {
		return fmt.Errorf("hash schema: %w", err)
	}

	var stored string
	err = db.QueryRow(`SELECT value FROM store_meta WHERE key = ?`, metaSchemaHash).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = db.Exec(`INSERT INTO store_meta (key, value) VALUES (?, ?)`, metaSchemaHash, hash)
		if err != nil {
			return fmt.Errorf("record schema hash: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("read schema hash: %w", err)
	case stored != hash:
		return fmt.Errorf("%w (stored %s, opened with %s)", ErrSchemaChanged, shortHash(stored), shortHash(hash))
	default:
		return nil
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
