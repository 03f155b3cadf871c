package crawler

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMetricsWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("commentThreads", nil)
	m.ObserveRequest("comments", errors.New("http status=500"))
	m.ObserveRotation()
	m.ObserveComment(false)
	m.ObserveComment(true)
	m.ObserveInnerAborted()

	path := filepath.Join(t.TempDir(), "yt_network.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(b)
	for _, want := range []string{
		`yt_network_api_requests_total{endpoint="comments"} 1`,
		`yt_network_api_errors_total{endpoint="comments",kind="http"} 1`,
		`yt_network_key_rotations_total 1`,
		`yt_network_comments_total{kind="reply"} 1`,
		`yt_network_reply_loops_aborted_total 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("x", nil)
	m.ObserveRotation()
	if err := m.WriteTextfile("/nonexistent/file"); err != nil {
		t.Fatalf("nil metrics should not write: %v", err)
	}
}
