package crawler

import (
	"testing"

	"yt-network-go/internal/config"
)

func TestRequestFromConfigRepliesDefault(t *testing.T) {
	req := RequestFromConfig(config.Config{Mode: "replies", VideoIDs: []string{"a,b"}})
	if req.Mode != ModeReplies || !req.CollectReplies {
		t.Fatalf("replies mode: got mode=%q replies=%v", req.Mode, req.CollectReplies)
	}
	if len(req.VideoIDs) != 2 {
		t.Fatalf("video ids = %v", req.VideoIDs)
	}

	req = RequestFromConfig(config.Config{Mode: "query", Query: "  luta "})
	if req.Mode != ModeSearch || req.CollectReplies {
		t.Fatalf("search mode: got mode=%q replies=%v", req.Mode, req.CollectReplies)
	}
	if req.Query != "luta" {
		t.Fatalf("query = %q", req.Query)
	}

	on := true
	req = RequestFromConfig(config.Config{Mode: "search", CollectReplies: &on})
	if !req.CollectReplies {
		t.Fatal("explicit COLLECT_REPLIES ignored")
	}
}
