package store

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

func openMySQL(dsn string) (*sql.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("MYSQL_DSN is empty")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	setDBPoolDefaults(db, 8)
	db.SetConnMaxIdleTime(2 * time.Minute)

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id VARCHAR(64) NOT NULL PRIMARY KEY,
			mode VARCHAR(32) NOT NULL,
			created_at BIGINT NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS comments (
			run_id VARCHAR(64) NOT NULL,
			comment_id VARCHAR(191) NOT NULL,
			video_id VARCHAR(64) NOT NULL,
			author VARCHAR(255) NOT NULL,
			author_channel_id VARCHAR(64) NOT NULL,
			body LONGTEXT NOT NULL,
			likes BIGINT NOT NULL,
			published_at VARCHAR(64) NOT NULL,
			parent_id VARCHAR(191) NOT NULL,
			PRIMARY KEY (run_id, comment_id),
			KEY idx_comments_video (run_id, video_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS user_nodes (
			run_id VARCHAR(64) NOT NULL,
			id VARCHAR(191) NOT NULL,
			total_comments INT NOT NULL,
			total_replies_received INT NOT NULL,
			PRIMARY KEY (run_id, id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS reply_edges (
			run_id VARCHAR(64) NOT NULL,
			source VARCHAR(191) NOT NULL,
			target VARCHAR(191) NOT NULL,
			weight INT NOT NULL,
			PRIMARY KEY (run_id, source, target)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
		`CREATE TABLE IF NOT EXISTS videos (
			video_id VARCHAR(64) NOT NULL PRIMARY KEY,
			data_json LONGTEXT NOT NULL,
			updated_at BIGINT NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	}
	if err := execAll(db, stmts, "mysql"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
