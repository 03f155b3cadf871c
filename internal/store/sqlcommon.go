package store

import (
	"database/sql"
	"fmt"
	"strings"
)

type backendKind string

const (
	backendFile     backendKind = "file"
	backendSQLite   backendKind = "sqlite"
	backendMySQL    backendKind = "mysql"
	backendPostgres backendKind = "postgres"
	backendMongoDB  backendKind = "mongodb"
)

func parseBackend(v string) backendKind {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "sqlite", "sqlite3":
		return backendSQLite
	case "mysql":
		return backendMySQL
	case "postgres", "postgresql", "pg":
		return backendPostgres
	case "mongodb", "mongo":
		return backendMongoDB
	default:
		return backendFile
	}
}

func placeholder(k backendKind, idx int) string {
	if k == backendPostgres {
		return fmt.Sprintf("$%d", idx)
	}
	return "?"
}

func placeholders(k backendKind, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = placeholder(k, i+1)
	}
	return strings.Join(parts, ", ")
}

// insertIgnore builds an insert that silently skips rows whose key exists.
func insertIgnore(k backendKind, table string, cols []string) string {
	vals := placeholders(k, len(cols))
	list := strings.Join(cols, ", ")
	switch k {
	case backendMySQL:
		return fmt.Sprintf("INSERT IGNORE INTO %s(%s) VALUES(%s)", table, list, vals)
	case backendPostgres:
		return fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s) ON CONFLICT DO NOTHING", table, list, vals)
	default:
		return fmt.Sprintf("INSERT OR IGNORE INTO %s(%s) VALUES(%s)", table, list, vals)
	}
}

// upsert builds an insert that overwrites the update columns on key conflict.
func upsert(k backendKind, table string, cols, keys, update []string) string {
	vals := placeholders(k, len(cols))
	list := strings.Join(cols, ", ")
	sets := make([]string, len(update))
	for i, c := range update {
		if k == backendMySQL {
			sets[i] = fmt.Sprintf("%s=VALUES(%s)", c, c)
		} else {
			sets[i] = fmt.Sprintf("%s=excluded.%s", c, c)
		}
	}
	if k == backendMySQL {
		return fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s) ON DUPLICATE KEY UPDATE %s", table, list, vals, strings.Join(sets, ", "))
	}
	return fmt.Sprintf("INSERT INTO %s(%s) VALUES(%s) ON CONFLICT(%s) DO UPDATE SET %s", table, list, vals, strings.Join(keys, ", "), strings.Join(sets, ", "))
}

func setDBPoolDefaults(db *sql.DB, maxOpen int) {
	if db == nil {
		return
	}
	if maxOpen <= 0 {
		maxOpen = 4
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxOpen)
	db.SetConnMaxLifetime(0)
}

func execAll(db *sql.DB, stmts []string, name string) error {
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s init schema: %w", name, err)
		}
	}
	return nil
}
