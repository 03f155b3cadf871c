package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

func openSQLite(path string) (*sql.DB, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		p = "data/yt_network.db"
	}
	if dir := filepath.Dir(p); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", p)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT NOT NULL PRIMARY KEY,
			mode TEXT NOT NULL,
			created_at INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS comments (
			run_id TEXT NOT NULL,
			comment_id TEXT NOT NULL,
			video_id TEXT NOT NULL,
			author TEXT NOT NULL,
			author_channel_id TEXT NOT NULL,
			body TEXT NOT NULL,
			likes INTEGER NOT NULL,
			published_at TEXT NOT NULL,
			parent_id TEXT NOT NULL,
			PRIMARY KEY (run_id, comment_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_comments_video ON comments(run_id, video_id);`,
		`CREATE TABLE IF NOT EXISTS user_nodes (
			run_id TEXT NOT NULL,
			id TEXT NOT NULL,
			total_comments INTEGER NOT NULL,
			total_replies_received INTEGER NOT NULL,
			PRIMARY KEY (run_id, id)
		);`,
		`CREATE TABLE IF NOT EXISTS reply_edges (
			run_id TEXT NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			weight INTEGER NOT NULL,
			PRIMARY KEY (run_id, source, target)
		);`,
		`CREATE TABLE IF NOT EXISTS videos (
			video_id TEXT NOT NULL PRIMARY KEY,
			data_json TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);`,
	}
	if err := execAll(db, stmts, "sqlite"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
