package youtube

import (
	"context"

	"yt-network-go/internal/crawler"
	"yt-network-go/internal/graph"
	"yt-network-go/internal/logger"
)

type State int

const (
	StateFetchingOuter State = iota
	StateFetchingInner
	StateInnerAborted
	StateDone
)

func (s State) String() string {
	switch s {
	case StateFetchingOuter:
		return "FETCHING_OUTER"
	case StateFetchingInner:
		return "FETCHING_INNER"
	case StateInnerAborted:
		return "INNER_ABORTED"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

type WalkOptions struct {
	Replies bool
	// MaxComments caps the top-level comments taken from the video; the
	// replies of a taken thread are always drained. 0 means no cap.
	MaxComments int
	Order       string
}

type WalkStats struct {
	Threads      int
	Replies      int
	InnerAborted int
	Pages        int
	Capped       bool
}

// Walker drains the comment threads of one video. Each thread's replies are
// fully paged before the next thread is emitted, so a reply always follows
// its parent.
type Walker struct {
	api     API
	ring    *KeyRing
	metrics *crawler.Metrics
	state   State
}

func NewWalker(api API, ring *KeyRing, m *crawler.Metrics) *Walker {
	return &Walker{api: api, ring: ring, metrics: m, state: StateDone}
}

func (w *Walker) State() State { return w.state }

// Walk emits every comment of videoID in pagination order. A fault on a
// reply listing abandons that listing only. Any other fault, quota
// exhaustion included, ends the walk and is returned with the stats so far.
func (w *Walker) Walk(ctx context.Context, videoID string, opts WalkOptions, emit func(graph.Comment)) (WalkStats, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var stats WalkStats
	capped := func() bool {
		if opts.MaxComments > 0 && stats.Threads >= opts.MaxComments {
			stats.Capped = true
			return true
		}
		return false
	}

	outer := NewPager[CommentThread](func(ctx context.Context, token string) ([]CommentThread, string, error) {
		page, err := withRotation(ctx, w.ring, w.metrics, func(ctx context.Context, key string) (ThreadPage, error) {
			return w.api.CommentThreads(ctx, key, ThreadParams{VideoID: videoID, PageToken: token, MaxResults: maxThreadResults, Order: opts.Order})
		})
		return page.Items, page.NextPageToken, err
	})

	var (
		pending []CommentThread
		inner   *Pager[CommentResource]
		parent  graph.Comment
	)
	w.state = StateFetchingOuter
	for w.state != StateDone {
		switch w.state {
		case StateFetchingOuter:
			if capped() {
				w.state = StateDone
				continue
			}
			if len(pending) == 0 {
				if outer.Done() {
					w.state = StateDone
					continue
				}
				items, err := outer.Next(ctx)
				if err != nil {
					w.state = StateDone
					return stats, err
				}
				stats.Pages++
				pending = items
				continue
			}
			th := pending[0]
			pending = pending[1:]
			parent = th.topLevel()
			if parent.VideoID == "" {
				parent.VideoID = videoID
			}
			emit(parent)
			stats.Threads++
			w.metrics.ObserveComment(false)
			if opts.Replies && th.Snippet.TotalReplyCount > 0 {
				inner = w.replyPager(parent.ID)
				w.state = StateFetchingInner
			}

		case StateFetchingInner:
			if inner.Done() {
				inner = nil
				w.state = StateFetchingOuter
				continue
			}
			items, err := inner.Next(ctx)
			if err != nil {
				if crawler.IsQuotaExhausted(err) || ctx.Err() != nil {
					w.state = StateDone
					return stats, err
				}
				logger.Warn("reply listing aborted", "video_id", videoID, "parent_id", parent.ID, "pages", inner.Pages(), "err", err, "error_kind", crawler.KindOf(err))
				w.state = StateInnerAborted
				continue
			}
			stats.Pages++
			for _, r := range items {
				emit(r.toComment(parent.VideoID, parent.ID))
				stats.Replies++
				w.metrics.ObserveComment(true)
			}

		case StateInnerAborted:
			stats.InnerAborted++
			w.metrics.ObserveInnerAborted()
			inner = nil
			w.state = StateFetchingOuter
		}
	}
	return stats, nil
}

func (w *Walker) replyPager(parentID string) *Pager[CommentResource] {
	return NewPager[CommentResource](func(ctx context.Context, token string) ([]CommentResource, string, error) {
		page, err := withRotation(ctx, w.ring, w.metrics, func(ctx context.Context, key string) (ReplyPage, error) {
			return w.api.Replies(ctx, key, parentID, token)
		})
		return page.Items, page.NextPageToken, err
	})
}
