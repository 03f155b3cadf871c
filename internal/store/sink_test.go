package store

import (
	"context"
	"path/filepath"
	"testing"

	"yt-network-go/internal/config"
	"yt-network-go/internal/graph"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteSinkSaveRunIsIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{StoreBackend: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "data", "yt.db")}
	s, err := NewSinkFromConfig(ctx, cfg)
	require.NoError(t, err)
	sink, ok := s.(*SQLSink)
	require.True(t, ok)
	defer sink.Close()

	acc := aliceBobCarol()
	run := RunData{
		RunID:    "run-1",
		Mode:     "replies",
		Comments: acc.Comments(),
		Nodes:    acc.Nodes(),
		Edges:    acc.Edges(),
		Videos:   []graph.Video{{VideoID: "v1", Title: "t"}},
	}
	require.NoError(t, sink.SaveRun(ctx, run))
	require.NoError(t, sink.SaveRun(ctx, run))

	count := func(q string, args ...any) int {
		var n int
		require.NoError(t, sink.db.QueryRow(q, args...).Scan(&n))
		return n
	}
	assert.Equal(t, 1, count(`SELECT COUNT(*) FROM runs`))
	assert.Equal(t, 4, count(`SELECT COUNT(*) FROM comments WHERE run_id=?`, "run-1"))
	assert.Equal(t, 3, count(`SELECT COUNT(*) FROM user_nodes WHERE run_id=?`, "run-1"))
	assert.Equal(t, 2, count(`SELECT COUNT(*) FROM reply_edges WHERE run_id=?`, "run-1"))
	assert.Equal(t, 2, count(`SELECT SUM(weight) FROM reply_edges WHERE run_id=?`, "run-1"))
	assert.Equal(t, 1, count(`SELECT COUNT(*) FROM videos`))
}

func TestNewSinkFromConfigFileBackend(t *testing.T) {
	s, err := NewSinkFromConfig(context.Background(), config.Config{StoreBackend: "file"})
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestSQLBuilders(t *testing.T) {
	assert.Equal(t, "INSERT OR IGNORE INTO t(a, b) VALUES(?, ?)", insertIgnore(backendSQLite, "t", []string{"a", "b"}))
	assert.Equal(t, "INSERT INTO t(a, b) VALUES($1, $2) ON CONFLICT DO NOTHING", insertIgnore(backendPostgres, "t", []string{"a", "b"}))
	assert.Equal(t, "INSERT INTO t(a, b) VALUES(?, ?) ON DUPLICATE KEY UPDATE b=VALUES(b)",
		upsert(backendMySQL, "t", []string{"a", "b"}, []string{"a"}, []string{"b"}))
	assert.Equal(t, "INSERT INTO t(a, b) VALUES($1, $2) ON CONFLICT(a) DO UPDATE SET b=excluded.b",
		upsert(backendPostgres, "t", []string{"a", "b"}, []string{"a"}, []string{"b"}))
	assert.Equal(t, backendMongoDB, parseBackend("Mongo"))
}
