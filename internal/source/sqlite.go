package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is a model database stored in a SQLite file.
type SQLite struct {
	path string
	db   *sql.DB
}

// OpenSQLite opens an existing SQLite model file read-only.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open model %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return &SQLite{path: path, db: db}, nil
}

func (s *SQLite) Name() string { return s.path }

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Tables lists user tables in creation order.
func (s *SQLite) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		if name != "" {
			names = append(names, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return names, nil
}

func (s *SQLite) ReadTable(ctx context.Context, name string) (*Table, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT * FROM "+quoteIdentifier(name))
	if err != nil {
		return nil, fmt.Errorf("query table %s: %w", name, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("column types of %s: %w", name, err)
	}

	t := &Table{Name: name, Columns: make([]string, len(types))}
	boolCols := make([]bool, len(types))
	for i, ct := range types {
		t.Columns[i] = ct.Name()
		boolCols[i] = isBoolType(ct.DatabaseTypeName())
	}

	values := make([]any, len(types))
	ptrs := make([]any, len(types))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row of %s: %w", name, err)
		}
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = cellText(v, boolCols[i])
		}
		t.Rows = append(t.Rows, row)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return t, nil
}
