package references

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	// SQLite driver
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Lookup backed by a SQLite database. The schema and
// the curated seed data are managed by embedded migrations, so a fresh
// database file is fully usable after Init+Migrate.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a store for the given database path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	return &SQLiteStore{path: path}, nil
}

// Init opens the database connection and enables WAL mode.
func (s *SQLiteStore) Init(ctx context.Context) error {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Migrate applies the embedded schema and seed migrations.
func (s *SQLiteStore) Migrate(_ context.Context) error {
	if s.db == nil {
		return fmt.Errorf("database not initialized")
	}

	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	driver, err := sqlite3.WithInstance(s.db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Surface implements Lookup.
func (s *SQLiteStore) Surface(ctx context.Context, element, face string) (*SurfaceRecord, error) {
	query := `
		SELECT element, face, d12_change, d23_change, d34_change,
		       surface_energy, source, method
		FROM surface_references
		WHERE element = ? AND face = ?`

	var rec SurfaceRecord
	err := s.db.QueryRowContext(ctx, query, element, face).Scan(
		&rec.Element, &rec.Face,
		&rec.D12Change, &rec.D23Change, &rec.D34Change,
		&rec.SurfaceEnergy, &rec.Source, &rec.Method,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query surface reference: %w", err)
	}
	return &rec, nil
}

// TwoD implements Lookup. A "graphene" face falls back to the "2d" entry for
// the same element when no exact match exists, mirroring the curated data.
func (s *SQLiteStore) TwoD(ctx context.Context, element, face string) (*TwoDRecord, error) {
	rec, err := s.queryTwoD(ctx, element, face)
	if err != nil || rec != nil {
		return rec, err
	}
	if face == "graphene" {
		return s.queryTwoD(ctx, element, "2d")
	}
	return nil, nil
}

func (s *SQLiteStore) queryTwoD(ctx context.Context, element, face string) (*TwoDRecord, error) {
	query := `
		SELECT element, face, bond_length, lattice_constant, layer_thickness,
		       source, method
		FROM twod_references
		WHERE element = ? AND face = ?`

	var rec TwoDRecord
	err := s.db.QueryRowContext(ctx, query, element, face).Scan(
		&rec.Element, &rec.Face,
		&rec.BondLength, &rec.LatticeConstant, &rec.LayerThickness,
		&rec.Source, &rec.Method,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query 2D reference: %w", err)
	}
	return &rec, nil
}

// Available lists the curated (element -> faces) coverage of both tables.
func (s *SQLiteStore) Available(ctx context.Context) (map[string][]string, error) {
	out := make(map[string][]string)

	for _, query := range []string{
		"SELECT element, face FROM surface_references ORDER BY element, face",
		"SELECT element, face FROM twod_references ORDER BY element, face",
	} {
		rows, err := s.db.QueryContext(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("failed to list references: %w", err)
		}
		for rows.Next() {
			var element, face string
			if err := rows.Scan(&element, &face); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan reference row: %w", err)
			}
			out[element] = append(out[element], face)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}
