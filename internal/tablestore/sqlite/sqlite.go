// Package sqlite implements the tablestore on a local SQLite file for
// fully local deployments. Rows are stored as JSON-encoded cell arrays
// in insertion order, which preserves the append-only ledger semantics.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"balcao/internal/tablestore"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

var _ tablestore.Store = (*Store)(nil)

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer keeps the positional row semantics simple.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	if err := RunMigrations(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite database: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sheets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sheets: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan sheet name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *Store) ReadAll(ctx context.Context, table string) ([][]string, error) {
	if err := s.requireTable(ctx, table); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM sheet_rows WHERE sheet = ? ORDER BY id`, table)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", table, err)
	}
	defer rows.Close()

	var out [][]string
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan row of %s: %w", table, err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(payload), &cells); err != nil {
			return nil, fmt.Errorf("decode row of %s: %w", table, err)
		}
		out = append(out, cells)
	}
	return out, rows.Err()
}

func (s *Store) AppendRows(ctx context.Context, table string, rows [][]string) error {
	if err := s.requireTable(ctx, table); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append to %s: %w", table, err)
	}
	defer tx.Rollback()

	if err := insertRows(ctx, tx, table, rows); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ReplaceAll(ctx context.Context, table string, rows [][]string) error {
	if err := s.requireTable(ctx, table); err != nil {
		return err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rewrite of %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_rows WHERE sheet = ?`, table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := insertRows(ctx, tx, table, rows); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) UpdateHeader(ctx context.Context, table string, header []string) error {
	if err := s.requireTable(ctx, table); err != nil {
		return err
	}
	payload, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("encode header of %s: %w", table, err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE sheet_rows SET payload = ?
		WHERE id = (SELECT MIN(id) FROM sheet_rows WHERE sheet = ?)`,
		string(payload), table)
	if err != nil {
		return fmt.Errorf("patch header of %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("patch header of %s: %w", table, err)
	}
	if n == 0 {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO sheet_rows (sheet, payload) VALUES (?, ?)`, table, string(payload))
		if err != nil {
			return fmt.Errorf("write header of %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) CreateTable(ctx context.Context, table string, header []string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO sheets (name) VALUES (?)`, table)
	if err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	if n == 0 {
		// Already existed; leave its rows alone.
		return nil
	}
	return s.AppendRows(ctx, table, [][]string{header})
}

func (s *Store) requireTable(ctx context.Context, table string) error {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM sheets WHERE name = ?`, table).Scan(&one)
	if err == sql.ErrNoRows {
		return tablestore.ErrTableNotFound
	}
	if err != nil {
		return fmt.Errorf("check table %s: %w", table, err)
	}
	return nil
}

func insertRows(ctx context.Context, tx *sql.Tx, table string, rows [][]string) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO sheet_rows (sheet, payload) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("encode row of %s: %w", table, err)
		}
		if _, err := stmt.ExecContext(ctx, table, string(payload)); err != nil {
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}
