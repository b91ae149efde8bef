package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// rowPreviewLen bounds how much of a failing row ends up in the log.
const rowPreviewLen = 100

// Import truncates every known table and repopulates it from the snapshot,
// all inside a single transaction: a failure at any point rolls the database
// back to its pre-import state. Foreign key enforcement is deferred until
// commit so rows do not need exact per-row topological ordering. Primary and
// foreign key values are inserted verbatim; identifiers are never
// regenerated.
func Import(ctx context.Context, db *sql.DB, order TableOrder, tables map[string][]map[string]any) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "PRAGMA defer_foreign_keys = ON"); err != nil {
		return fmt.Errorf("defer foreign keys: %w", err)
	}

	// Most dependent tables first. ON DELETE CASCADE in the schema covers any
	// table that references these without being independently listed.
	for _, table := range order.Reversed() {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+quoteIdent(table)); err != nil {
			return fmt.Errorf("clear table %s: %w", table, err)
		}
	}
	if err := resetSequences(ctx, tx, order); err != nil {
		return err
	}

	// Referenced tables before referencing tables.
	for _, table := range order {
		rows := tables[table]
		if len(rows) == 0 {
			continue
		}
		cols, err := tableColumns(ctx, tx, table)
		if err != nil {
			return fmt.Errorf("describe table %s: %w", table, err)
		}
		if err := insertRows(ctx, tx, table, cols, rows); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}

// resetSequences clears AUTOINCREMENT counters so restored tables start
// counting from their restored contents. sqlite_sequence only exists once an
// AUTOINCREMENT table has been created.
func resetSequences(ctx context.Context, tx *sql.Tx, order TableOrder) error {
	var name string
	err := tx.QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'sqlite_sequence'").Scan(&name)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("inspect sqlite_sequence: %w", err)
	}
	for _, table := range order {
		if _, err := tx.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = ?", table); err != nil {
			return fmt.Errorf("reset sequence for %s: %w", table, err)
		}
	}
	return nil
}

// tableColumns returns the live schema's column names for one table, in
// declaration order.
func tableColumns(ctx context.Context, tx *sql.Tx, table string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// insertRows repopulates one table. Each statement is built from the
// intersection of the live schema's columns and the keys present in the
// snapshot row, so the importer stays schema-agnostic: columns added or
// dropped since the archive was written need no handling here.
func insertRows(ctx context.Context, tx *sql.Tx, table string, cols []string, rows []map[string]any) error {
	for _, row := range rows {
		names := make([]string, 0, len(cols))
		args := make([]any, 0, len(cols))
		for _, col := range cols {
			v, ok := row[col]
			if !ok {
				continue
			}
			names = append(names, quoteIdent(col))
			args = append(args, nativeValue(v))
		}
		if len(names) == 0 {
			continue
		}

		stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			quoteIdent(table),
			strings.Join(names, ", "),
			strings.TrimSuffix(strings.Repeat("?, ", len(names)), ", "))

		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			log.Error().Err(err).
				Str("table", table).
				Str("row", rowPreview(row)).
				Msg("Failed to insert row during restore")
			return fmt.Errorf("insert into %s: %w", table, err)
		}
	}
	return nil
}

// nativeValue converts an archive JSON value back into something the driver
// can bind. Arrays and objects are re-encoded to their JSON text form; the
// column's own type affinity coerces everything else.
func nativeValue(v any) any {
	switch v.(type) {
	case []any, map[string]any:
		b, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(b)
	default:
		return v
	}
}

func rowPreview(row map[string]any) string {
	b, err := json.Marshal(row)
	if err != nil {
		return ""
	}
	if len(b) > rowPreviewLen {
		b = b[:rowPreviewLen]
	}
	return string(b)
}
