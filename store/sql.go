package store

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
)

// Dialect is a SQL flavour understood by the LIKE query builder.
type Dialect string

const (
	// DialectSQLite binds with "?" and quotes identifiers with double quotes.
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres binds with "$1" and quotes identifiers with double quotes.
	DialectPostgres Dialect = "postgres"
	// DialectMySQL binds with "?" and quotes identifiers with backticks.
	DialectMySQL Dialect = "mysql"
)

// DefaultKeyColumn is used when a SQLBackend reports no key column.
const DefaultKeyColumn = "key"

func quoteIdent(d Dialect, ident string) string {
	if d == DialectMySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func placeholder(d Dialect) string {
	if d == DialectPostgres {
		return "$1"
	}
	return "?"
}

// likeQuery builds "SELECT <column> FROM [<schema>.]<table> WHERE <column> LIKE <placeholder>".
// Identifiers are quoted; the pattern is always bound as an argument.
func likeQuery(d Dialect, schema, table, column string) (string, error) {
	switch d {
	case DialectSQLite, DialectPostgres, DialectMySQL:
	default:
		return "", errors.Newf("unsupported sql dialect %q", string(d))
	}
	if table == "" {
		return "", errors.New("sql key table is not configured")
	}
	if column == "" {
		column = DefaultKeyColumn
	}
	col := quoteIdent(d, column)
	from := quoteIdent(d, table)
	if schema != "" {
		from = quoteIdent(d, schema) + "." + from
	}
	return "SELECT " + col + " FROM " + from + " WHERE " + col + " LIKE " + placeholder(d), nil
}

func querySQLKeys(ctx context.Context, db SQLBackend, like string) ([]string, error) {
	dialect := Dialect(strings.ToLower(db.SQLDialect()))
	schema, table, column := db.KeyTable()
	query, err := likeQuery(dialect, schema, table, column)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, query, like)
	if err != nil {
		return nil, errors.Wrap(err, "query keys")
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, errors.Wrap(err, "scan key")
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate keys")
	}
	return keys, nil
}
