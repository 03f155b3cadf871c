package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"yt-network-go/internal/config"
	"yt-network-go/internal/graph"

	json "github.com/goccy/go-json"
)

// RunData is everything one run persists besides its export files.
type RunData struct {
	RunID     string
	Mode      string
	CreatedAt int64
	Comments  []graph.Comment
	Nodes     []graph.UserNode
	Edges     []graph.Edge
	Videos    []graph.Video
}

// Sink persists runs to a database. Rows are keyed by run id, so saving the
// same run twice is harmless.
type Sink interface {
	SaveRun(ctx context.Context, run RunData) error
	Close() error
}

// NewSinkFromConfig returns nil for the file backend.
func NewSinkFromConfig(ctx context.Context, cfg config.Config) (Sink, error) {
	switch k := parseBackend(cfg.StoreBackend); k {
	case backendSQLite:
		db, err := openSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &SQLSink{db: db, kind: k}, nil
	case backendMySQL:
		db, err := openMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, err
		}
		return &SQLSink{db: db, kind: k}, nil
	case backendPostgres:
		db, err := openPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return &SQLSink{db: db, kind: k}, nil
	case backendMongoDB:
		ms, err := OpenMongoSink(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return ms, nil
	default:
		return nil, nil
	}
}

type SQLSink struct {
	db   *sql.DB
	kind backendKind
}

func (s *SQLSink) SaveRun(ctx context.Context, run RunData) error {
	if strings.TrimSpace(run.RunID) == "" {
		return errors.New("run_id is empty")
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().Unix()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	k := s.kind
	if _, err := tx.ExecContext(ctx,
		upsert(k, "runs", []string{"run_id", "mode", "created_at"}, []string{"run_id"}, []string{"mode", "created_at"}),
		run.RunID, run.Mode, run.CreatedAt,
	); err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	err = execEach(ctx, tx, insertIgnore(k, "comments", []string{"run_id", "comment_id", "video_id", "author", "author_channel_id", "body", "likes", "published_at", "parent_id"}),
		run.Comments, func(c graph.Comment) []any {
			return []any{run.RunID, c.ID, c.VideoID, c.Author, c.AuthorChannelID, c.Text, c.LikeCount, c.PublishedAt, c.ParentID}
		})
	if err != nil {
		return fmt.Errorf("save comments: %w", err)
	}

	err = execEach(ctx, tx, upsert(k, "user_nodes", []string{"run_id", "id", "total_comments", "total_replies_received"}, []string{"run_id", "id"}, []string{"total_comments", "total_replies_received"}),
		run.Nodes, func(n graph.UserNode) []any {
			return []any{run.RunID, n.ID, n.TotalComments, n.TotalRepliesReceived}
		})
	if err != nil {
		return fmt.Errorf("save nodes: %w", err)
	}

	err = execEach(ctx, tx, upsert(k, "reply_edges", []string{"run_id", "source", "target", "weight"}, []string{"run_id", "source", "target"}, []string{"weight"}),
		graph.Reaggregate(run.Edges), func(e graph.Edge) []any {
			return []any{run.RunID, e.Source, e.Target, e.Weight}
		})
	if err != nil {
		return fmt.Errorf("save edges: %w", err)
	}

	now := time.Now().Unix()
	stmt, err := tx.PrepareContext(ctx, upsert(k, "videos", []string{"video_id", "data_json", "updated_at"}, []string{"video_id"}, []string{"data_json", "updated_at"}))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, v := range run.Videos {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal video %s: %w", v.VideoID, err)
		}
		if _, err := stmt.ExecContext(ctx, v.VideoID, string(b), now); err != nil {
			return fmt.Errorf("save video %s: %w", v.VideoID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLSink) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func execEach[T any](ctx context.Context, tx *sql.Tx, query string, items []T, args func(T) []any) error {
	if len(items) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, args(it)...); err != nil {
			return err
		}
	}
	return nil
}
