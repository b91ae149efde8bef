package backup

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TableSnapshot is the captured row set of one table at export time. Rows are
// keyed by column name with values already converted to their portable form.
type TableSnapshot struct {
	Name string
	Rows []map[string]any
}

// Export reads every table in order inside a single read transaction, so all
// snapshots reflect the same point in time. A query failure on any table
// aborts the whole export.
func Export(ctx context.Context, db *sql.DB, order TableOrder) ([]TableSnapshot, error) {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin export transaction: %w", err)
	}
	defer tx.Rollback()

	snapshots := make([]TableSnapshot, 0, len(order))
	for _, table := range order {
		rows, err := exportTable(ctx, tx, table)
		if err != nil {
			return nil, fmt.Errorf("export table %s: %w", table, err)
		}
		snapshots = append(snapshots, TableSnapshot{Name: table, Rows: rows})
	}
	return snapshots, nil
}

// exportTable serializes every row of one table. Columns are taken from the
// result set itself, so a column added to the schema shows up in the export
// without any change here.
func exportTable(ctx context.Context, tx *sql.Tx, table string) ([]map[string]any, error) {
	rows, err := tx.QueryContext(ctx, "SELECT * FROM "+quoteIdent(table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			rec[col] = portableValue(values[i], colTypes[i].DatabaseTypeName())
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// portableValue converts a scanned column value into its archive
// representation: NULL becomes nil, numbers/strings/booleans pass through,
// timestamps become RFC3339 strings and declared-JSON columns are decoded so
// arrays survive as arrays rather than quoted text.
func portableValue(v any, declaredType string) any {
	switch x := v.(type) {
	case nil:
		return nil
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case []byte:
		return portableText(string(x), declaredType)
	case string:
		return portableText(x, declaredType)
	default:
		return x
	}
}

func portableText(s, declaredType string) any {
	if strings.EqualFold(declaredType, "JSON") {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			return decoded
		}
	}
	return s
}
