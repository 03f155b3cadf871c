package crawler

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	// ModeReplies collects threads and replies of the given videos and builds
	// the reply interaction network.
	ModeReplies Mode = "replies"
	// ModeSearch seeds videos from a search query, fetches their metadata and
	// optionally their comments and the similarity graph.
	ModeSearch Mode = "search"
)

func NormalizeMode(s string) Mode {
	v := strings.ToLower(strings.TrimSpace(s))
	switch v {
	case "search", "query":
		return ModeSearch
	default:
		return ModeReplies
	}
}

type Request struct {
	Mode Mode

	VideoIDs []string
	Query    string
	MaxSeeds int

	CollectComments  bool
	CollectReplies   bool
	CommentsPerVideo int

	BuildSimilarity bool
	TopK            int
	MinSim          float64

	RegionCode        string
	RelevanceLanguage string

	OutDir string
}

type Result struct {
	RunID        string         `json:"run_id"`
	Mode         string         `json:"mode,omitempty"`
	StartedAt    int64          `json:"started_at,omitempty"`
	FinishedAt   int64          `json:"finished_at,omitempty"`
	Processed    int            `json:"processed,omitempty"`
	Succeeded    int            `json:"succeeded,omitempty"`
	Failed       int            `json:"failed,omitempty"`
	FailureKinds map[string]int `json:"failure_kinds,omitempty"`

	Comments     int      `json:"comments,omitempty"`
	Replies      int      `json:"replies,omitempty"`
	Users        int      `json:"users,omitempty"`
	Edges        int      `json:"edges,omitempty"`
	InnerAborted int      `json:"inner_aborted,omitempty"`
	Partial      bool     `json:"partial,omitempty"`
	Files        []string `json:"files,omitempty"`
}

func NewResult(req Request) Result {
	return Result{
		RunID:     uuid.NewString(),
		Mode:      string(req.Mode),
		StartedAt: time.Now().Unix(),
	}
}

func (r *Result) Finish() {
	r.FinishedAt = time.Now().Unix()
}

type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}
