package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/jengzang/zonemap-backend-go/internal/logging"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migration is one versioned schema script, e.g. 001_create_zones.sql.
type Migration struct {
	Version  int
	Name     string
	SQL      string
	Checksum string
}

// MigrationManager applies Migrations in version order and records them in
// schema_migrations.
type MigrationManager struct {
	db     *sql.DB
	source fs.FS
	log    logging.Logger
}

// NewMigrationManager reads the migrations embedded in the binary.
func NewMigrationManager(db *sql.DB) *MigrationManager {
	sub, _ := fs.Sub(embeddedMigrations, "migrations")
	return NewMigrationManagerFS(db, sub)
}

// NewMigrationManagerFS reads *.sql files from the root of source.
func NewMigrationManagerFS(db *sql.DB, source fs.FS) *MigrationManager {
	return &MigrationManager{
		db:     db,
		source: source,
		log:    logging.Default().Named("migrations"),
	}
}

const createMigrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    INTEGER PRIMARY KEY,
		name       TEXT NOT NULL,
		checksum   TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`

// Applied returns the checksum of every recorded migration, keyed by version.
func (m *MigrationManager) Applied(ctx context.Context) (map[int]string, error) {
	if _, err := m.db.ExecContext(ctx, createMigrationsTable); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	rows, err := m.db.QueryContext(ctx, "SELECT version, checksum FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]string)
	for rows.Next() {
		var version int
		var sum string
		if err := rows.Scan(&version, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[version] = sum
	}
	return applied, rows.Err()
}

// Load reads every migration in the source sorted by version. Files whose
// name does not start with "<number>_" are skipped with a warning.
func (m *MigrationManager) Load() ([]Migration, error) {
	entries, err := fs.ReadDir(m.source, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	out := make([]Migration, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		version, convErr := strconv.Atoi(prefix)
		if !ok || convErr != nil {
			m.log.Warn("[Migrations] skipping file with invalid name", logging.String("file", name))
			continue
		}

		body, err := fs.ReadFile(m.source, name)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		sum := sha256.Sum256(body)
		out = append(out, Migration{
			Version:  version,
			Name:     strings.TrimSuffix(name, ".sql"),
			SQL:      string(body),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// Apply runs one migration and records it atomically.
func (m *MigrationManager) Apply(ctx context.Context, mig Migration) error {
	err := Transaction(ctx, m.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, mig.SQL); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", mig.Name, err)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, name, checksum) VALUES (?, ?, ?)",
			mig.Version, mig.Name, mig.Checksum)
		if err != nil {
			return fmt.Errorf("failed to record migration %s: %w", mig.Name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.log.Info("[Migrations] applied", logging.Int("version", mig.Version), logging.String("name", mig.Name))
	return nil
}

// Migrate applies every pending migration. An applied migration whose file
// changed since is reported but not re-run.
func (m *MigrationManager) Migrate(ctx context.Context) error {
	applied, err := m.Applied(ctx)
	if err != nil {
		return err
	}
	migrations, err := m.Load()
	if err != nil {
		return err
	}

	for _, mig := range migrations {
		sum, done := applied[mig.Version]
		if done {
			if sum != mig.Checksum {
				m.log.Warn("[Migrations] applied migration changed on disk", logging.String("name", mig.Name))
			}
			continue
		}
		if err := m.Apply(ctx, mig); err != nil {
			return err
		}
	}
	return nil
}
