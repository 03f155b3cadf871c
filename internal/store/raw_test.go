package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawPagesNumberingPerKind(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRawPages(dir, false)
	require.NoError(t, err)
	require.NoError(t, r.Record("comments_v1", []byte(`{"items":[]}`)))
	require.NoError(t, r.Record("comments_v1", []byte(`{"items":[1]}`)))
	require.NoError(t, r.Record("videos_list", []byte(`not json`)))

	b, err := os.ReadFile(filepath.Join(dir, "raw", "comments_v1_page0001.json"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n  \"items\"")
	assert.FileExists(t, filepath.Join(dir, "raw", "comments_v1_page0000.json"))
	b, err = os.ReadFile(filepath.Join(dir, "raw", "videos_list_page0000.json"))
	require.NoError(t, err)
	assert.Equal(t, "not json", string(b))
}

func TestRawPagesCompressed(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRawPages(dir, true)
	require.NoError(t, err)
	defer r.Close()
	require.NoError(t, r.Record("search_ai", []byte(`{"a":1}`)))

	b, err := os.ReadFile(filepath.Join(dir, "raw", "search_ai_page0000.json.zst"))
	require.NoError(t, err)
	dec, err := zstd.NewReader(nil)
	require.NoError(t, err)
	defer dec.Close()
	out, err := dec.DecodeAll(b, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(out))
}
