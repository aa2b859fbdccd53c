// Package source reads the model data a conversion run consumes: database
// tables from a SQLite model file or a PostgreSQL database, and worksheet rows
// from an .xlsx workbook.
//
// Values come out as text. Every cell is rendered the way the core matcher
// expects raw input: booleans as TRUE/FALSE, numbers in plain decimal, NULL as
// the empty string.
package source

import (
	"context"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Table is the full content of one database table.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Database is a model database whose tables are exported one at a time.
type Database interface {
	// Name identifies the database in output banners and logs.
	Name() string
	// Tables lists user tables in export order.
	Tables(ctx context.Context) ([]string, error)
	// ReadTable returns every row of a table with values rendered as text.
	ReadTable(ctx context.Context, name string) (*Table, error)
	Close() error
}

// PoolOptions tune the PostgreSQL connection pool. Zero values keep the pgx
// defaults.
type PoolOptions struct {
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// IsPostgresURL reports whether target names a PostgreSQL database rather
// than a SQLite file.
func IsPostgresURL(target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	return strings.HasPrefix(t, "postgres://") || strings.HasPrefix(t, "postgresql://")
}

// OpenDatabase opens target as a PostgreSQL URL or a SQLite file path.
func OpenDatabase(ctx context.Context, target string, pool PoolOptions) (Database, error) {
	if IsPostgresURL(target) {
		return OpenPostgres(ctx, target, pool)
	}
	return OpenSQLite(ctx, target)
}

// quoteIdentifier quotes a table or column name for SQL.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// cellText renders a driver value as raw cell text. boolColumn marks a column
// declared boolean whose driver reports integers.
func cellText(v any, boolColumn bool) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return boolText(val)
	case int64:
		if boolColumn {
			return boolText(val != 0)
		}
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case time.Time:
		return val.Format(time.RFC3339)
	case pgtype.Numeric:
		return numericText(val)
	case *big.Int:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

func boolText(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func numericText(n pgtype.Numeric) string {
	if !n.Valid {
		return ""
	}
	v, err := n.Value()
	if err != nil || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// isBoolType reports whether a declared column type is boolean.
func isBoolType(declared string) bool {
	switch strings.ToUpper(strings.TrimSpace(declared)) {
	case "BOOL", "BOOLEAN":
		return true
	}
	return false
}
