package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func openPostgres(dsn string) (*sql.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("POSTGRES_DSN is empty")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	setDBPoolDefaults(db, 8)
	db.SetConnMaxIdleTime(2 * time.Minute)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT NOT NULL PRIMARY KEY,
			mode TEXT NOT NULL,
			created_at BIGINT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS comments (
			run_id TEXT NOT NULL,
			comment_id TEXT NOT NULL,
			video_id TEXT NOT NULL,
			author TEXT NOT NULL,
			author_channel_id TEXT NOT NULL,
			body TEXT NOT NULL,
			likes BIGINT NOT NULL,
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
			updated_at BIGINT NOT NULL
		);`,
	}
	if err := execAll(db, stmts, "postgres"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
