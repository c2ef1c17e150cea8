// internal/catalogdb/db.go
//
// SQLite storage for card catalogs.
// Responsibilities:
//   - Opening SQLite database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying migrations from the embedded sql/*.sql (idempotent, recorded in _migrations).
//   - Importing a validated catalog and loading it back.
//
// A database is an alternative source to the YAML catalog file; the loaded
// catalog goes through the same validation as a parsed file.

package catalogdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/pierridotite/QGISGame/assets"
	"github.com/pierridotite/QGISGame/internal/catalog"
)

/**
 * Open opens (and creates if missing) a SQLite database file.
 *
 * - Ensures parent directory exists for relative DSNs (e.g. ./data/catalog.db).
 * - Configures busy timeout and WAL journaling mode.
 * - Enforces foreign keys.
 */
func Open(dsn string) (*sql.DB, error) {
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}
	// One connection keeps the pragmas below in effect for every statement.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

/**
 * Migrate applies the embedded SQL migrations.
 *
 * - Uses a _migrations table to track applied files.
 * - Executes each *.sql file in lexical order, each in its own transaction.
 * - Skips files already applied.
 */
func Migrate(ctx context.Context, db *sql.DB) error {
	return migrateFS(ctx, db, assets.Migrations())
}

func migrateFS(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRowContext(ctx, `SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(fsys, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

/**
 * Import replaces the stored catalog with c in a single transaction.
 * Cards keep the catalog order; chains are numbered from 1.
 */
func Import(ctx context.Context, db *sql.DB, c *catalog.Catalog) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{`DELETE FROM chain_steps`, `DELETE FROM chains`, `DELETE FROM cards`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
	}

	for i, card := range c.Cards() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO cards (category, name, image, ord) VALUES (?,?,?,?)`,
			string(card.Category), card.Name, card.ImageRef, i,
		); err != nil {
			return fmt.Errorf("insert card %s: %w", card.Key(), err)
		}
	}

	for i, spec := range c.Specs() {
		id := i + 1
		if _, err := tx.ExecContext(ctx, `INSERT INTO chains (id, name) VALUES (?,?)`, id, spec.Name); err != nil {
			return fmt.Errorf("insert chain %d: %w", id, err)
		}
		for pos, k := range spec.Steps {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO chain_steps (chain_id, position, category, name) VALUES (?,?,?,?)`,
				id, pos, string(k.Category), k.Name,
			); err != nil {
				return fmt.Errorf("insert chain %d step %d: %w", id, pos, err)
			}
		}
	}
	return tx.Commit()
}

/**
 * Load reads the stored catalog and validates it.
 * An empty database yields catalog.ErrEmptyCatalog.
 */
func Load(ctx context.Context, db *sql.DB) (*catalog.Catalog, error) {
	cards, err := loadCards(ctx, db)
	if err != nil {
		return nil, err
	}
	specs, err := loadChains(ctx, db)
	if err != nil {
		return nil, err
	}
	return catalog.New(cards, specs)
}

func loadCards(ctx context.Context, db *sql.DB) ([]catalog.Card, error) {
	rows, err := db.QueryContext(ctx, `SELECT category, name, image FROM cards ORDER BY ord, category, name`)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	var out []catalog.Card
	for rows.Next() {
		var cat, name, image string
		if err := rows.Scan(&cat, &name, &image); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		out = append(out, catalog.Card{Name: name, Category: catalog.Category(cat), ImageRef: image})
	}
	return out, rows.Err()
}

func loadChains(ctx context.Context, db *sql.DB) ([]catalog.ChainSpec, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT c.id, c.name, s.category, s.name
        FROM chains c
        JOIN chain_steps s ON s.chain_id = c.id
        ORDER BY c.id, s.position`)
	if err != nil {
		return nil, fmt.Errorf("query chains: %w", err)
	}
	defer rows.Close()

	var (
		out  []catalog.ChainSpec
		last int64 = -1
	)
	for rows.Next() {
		var (
			id          int64
			chain, c, n string
		)
		if err := rows.Scan(&id, &chain, &c, &n); err != nil {
			return nil, fmt.Errorf("scan chain step: %w", err)
		}
		if id != last {
			out = append(out, catalog.ChainSpec{Name: chain})
			last = id
		}
		spec := &out[len(out)-1]
		spec.Steps = append(spec.Steps, catalog.Key{Category: catalog.Category(c), Name: n})
	}
	return out, rows.Err()
}
