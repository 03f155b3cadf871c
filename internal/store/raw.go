package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// RawPages keeps every API page under <dir>/raw as
// <kind>_page%04d.json, zstd-compressed to .json.zst when enabled. The page
// index counts per kind from zero.
type RawPages struct {
	dir     string
	mu      sync.Mutex
	counts  map[string]int
	encoder *zstd.Encoder
}

func NewRawPages(outDir string, compress bool) (*RawPages, error) {
	r := &RawPages{dir: filepath.Join(outDir, "raw"), counts: map[string]int{}}
	if compress {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}
		r.encoder = enc
	}
	return r, nil
}

func (r *RawPages) Dir() string { return r.dir }

func (r *RawPages) Record(kind string, body []byte) error {
	r.mu.Lock()
	idx := r.counts[kind]
	r.counts[kind] = idx + 1
	r.mu.Unlock()

	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		buf.Reset()
		buf.Write(body)
	}
	name := fmt.Sprintf("%s_page%04d.json", kind, idx)
	data := buf.Bytes()
	if r.encoder != nil {
		name += ".zst"
		data = r.encoder.EncodeAll(data, make([]byte, 0, len(data)/2))
	}
	return os.WriteFile(filepath.Join(r.dir, name), data, 0644)
}

func (r *RawPages) Close() error {
	if r.encoder != nil {
		return r.encoder.Close()
	}
	return nil
}
