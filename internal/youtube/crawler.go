package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"

	"yt-network-go/internal/crawler"
	"yt-network-go/internal/graph"
	"yt-network-go/internal/logger"
	"yt-network-go/internal/store"
)

const defaultSearchCommentsPerVideo = 200

// Uploader ships the files of a finished run elsewhere.
type Uploader interface {
	UploadFiles(ctx context.Context, runID string, paths []string) ([]string, error)
}

type Deps struct {
	API      API
	Keys     *KeyRing
	Metrics  *crawler.Metrics
	Exporter *store.Exporter
	// Sink and Uploader are optional.
	Sink     store.Sink
	Uploader Uploader
	Graph    graph.Options
}

type Crawler struct {
	deps Deps
}

var _ crawler.Runner = (*Crawler)(nil)

func NewCrawler(deps Deps) *Crawler {
	return &Crawler{deps: deps}
}

// run is the state of one invocation; nothing outlives Run.
type run struct {
	req    crawler.Request
	out    crawler.Result
	acc    *graph.Accumulator
	bip    *graph.Bipartite
	videos []graph.Video
}

// Run collects according to req.Mode and exports. Quota exhaustion ends
// collection early and the partial data is exported (Result.Partial). Any
// other fault aborts the run before export and is returned.
func (c *Crawler) Run(ctx context.Context, req crawler.Request) (crawler.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if c.deps.API == nil || c.deps.Exporter == nil {
		return crawler.Result{}, errors.New("youtube crawler is not wired")
	}
	if c.deps.Keys == nil {
		return crawler.Result{}, crawler.Error{Kind: crawler.ErrorKindNoCredentials, Platform: platform, Err: ErrNoCredentials}
	}
	if req.Mode == "" {
		req.Mode = crawler.ModeReplies
	}
	r := &run{
		req: req,
		out: crawler.NewResult(req),
		acc: graph.NewAccumulator(c.deps.Graph),
		bip: graph.NewBipartite(),
	}
	logger.Info("run started", "run_id", r.out.RunID, "mode", req.Mode, "keys", c.deps.Keys.Len())

	var err error
	switch req.Mode {
	case crawler.ModeReplies:
		err = c.collectReplies(ctx, r)
	case crawler.ModeSearch:
		err = c.collectSearch(ctx, r)
	default:
		return r.out, crawler.Error{Kind: crawler.ErrorKindInvalidInput, Platform: platform, Msg: fmt.Sprintf("unsupported mode %q", req.Mode)}
	}
	if err != nil {
		if !crawler.IsQuotaExhausted(err) {
			r.out.Finish()
			return r.out, err
		}
		r.out.Partial = true
		logger.Warn("quota exhausted, exporting partial results", "run_id", r.out.RunID, "err", err)
	}

	if err := c.export(ctx, r); err != nil {
		r.out.Finish()
		return r.out, err
	}
	r.out.Finish()
	logger.Info("run finished",
		"run_id", r.out.RunID,
		"comments", r.out.Comments,
		"replies", r.out.Replies,
		"users", r.out.Users,
		"edges", r.out.Edges,
		"inner_aborted", r.out.InnerAborted,
		"partial", r.out.Partial,
		"files", len(r.out.Files),
	)
	return r.out, nil
}

func (c *Crawler) collectReplies(ctx context.Context, r *run) error {
	if len(r.req.VideoIDs) == 0 {
		return crawler.Error{Kind: crawler.ErrorKindInvalidInput, Platform: platform, Msg: "no video ids given"}
	}
	opts := WalkOptions{Replies: r.req.CollectReplies, MaxComments: r.req.CommentsPerVideo}
	// every fault ends the loop; the caller decides whether to export
	res := crawler.ForEach(ctx, r.req.VideoIDs, func(error) bool { return true }, func(ctx context.Context, videoID string) error {
		return c.walkVideo(ctx, r, videoID, opts)
	})
	c.account(r, res)
	return res.Stopped
}

func (c *Crawler) collectSearch(ctx context.Context, r *run) error {
	p := SearchParams{Query: r.req.Query, RegionCode: r.req.RegionCode, RelevanceLanguage: r.req.RelevanceLanguage}
	if p.Query == "" {
		return crawler.Error{Kind: crawler.ErrorKindInvalidInput, Platform: platform, Msg: "empty search query"}
	}
	maxSeeds := r.req.MaxSeeds
	if maxSeeds <= 0 {
		maxSeeds = 50
	}
	seeds, err := SearchSeeds(ctx, c.deps.API, c.deps.Keys, c.deps.Metrics, p, maxSeeds)
	if err != nil && !crawler.IsQuotaExhausted(err) {
		return err
	}
	var videos []graph.Video
	if err == nil {
		videos, err = FetchVideos(ctx, c.deps.API, c.deps.Keys, c.deps.Metrics, seeds)
		if err != nil && !crawler.IsQuotaExhausted(err) {
			return err
		}
	}
	r.videos = videos
	logger.Info("video metadata collected", "seeds", len(seeds), "videos", len(videos))
	if err != nil || !r.req.CollectComments {
		return err
	}

	perVideo := r.req.CommentsPerVideo
	if perVideo <= 0 {
		perVideo = defaultSearchCommentsPerVideo
	}
	opts := WalkOptions{Replies: r.req.CollectReplies, MaxComments: perVideo, Order: "relevance"}
	ids := make([]string, 0, len(videos))
	for _, v := range videos {
		ids = append(ids, v.VideoID)
	}
	stop := func(err error) bool {
		return crawler.IsQuotaExhausted(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
	}
	res := crawler.ForEach(ctx, ids, stop, func(ctx context.Context, videoID string) error {
		err := c.walkVideo(ctx, r, videoID, opts)
		if err != nil && !stop(err) {
			logger.Warn("skipping comments of video", "video_id", videoID, "err", err, "error_kind", crawler.KindOf(err))
		}
		return err
	})
	c.account(r, res)
	return res.Stopped
}

func (c *Crawler) walkVideo(ctx context.Context, r *run, videoID string, opts WalkOptions) error {
	start := time.Now()
	w := NewWalker(c.deps.API, c.deps.Keys, c.deps.Metrics)
	stats, err := w.Walk(ctx, videoID, opts, func(cm graph.Comment) {
		r.acc.Add(cm)
		r.bip.Add(cm)
	})
	r.out.Comments += stats.Threads
	r.out.Replies += stats.Replies
	r.out.InnerAborted += stats.InnerAborted
	logger.Info("video walked",
		"video_id", videoID,
		"threads", stats.Threads,
		"replies", stats.Replies,
		"pages", stats.Pages,
		"inner_aborted", stats.InnerAborted,
		"capped", stats.Capped,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return err
}

func (c *Crawler) account(r *run, res crawler.ItemResult) {
	r.out.Processed += res.Processed
	r.out.Succeeded += res.Succeeded
	r.out.Failed += res.Failed
	r.out.FailureKinds = crawler.MergeFailureKinds(r.out.FailureKinds, res.FailureKinds)
}

func (c *Crawler) export(ctx context.Context, r *run) error {
	if err := r.acc.Validate(); err != nil {
		return err
	}
	if names := r.acc.AmbiguousAuthors(); len(names) > 0 {
		logger.Warn("display names shared by several channels were merged", "count", len(names), "names", names)
	}
	if n := r.acc.Orphans(); n > 0 {
		logger.Warn("replies without a known parent", "count", n)
	}

	e := c.deps.Exporter
	var files []string
	add := func(paths []string, err error) error {
		files = append(files, paths...)
		return err
	}

	if r.req.Mode == crawler.ModeSearch {
		if err := add(e.ExportVideos(r.videos)); err != nil {
			return err
		}
		if r.req.CollectComments {
			if err := add(e.ExportBipartite(r.bip)); err != nil {
				return err
			}
		}
	}
	if r.req.Mode == crawler.ModeReplies || r.req.CollectComments {
		if err := add(e.ExportReplyNetwork(r.acc)); err != nil {
			return err
		}
	}
	if r.req.Mode == crawler.ModeSearch && r.req.BuildSimilarity {
		opts := graph.DefaultSimilarityOptions()
		opts.TopK, opts.MinSim = r.req.TopK, r.req.MinSim
		sim := graph.SimilarityEdges(graph.DedupeVideos(r.videos), opts)
		logger.Info("similarity edges built", "edges", len(sim))
		if err := add(e.ExportSimilarity(r.videos, sim)); err != nil {
			return err
		}
	}

	r.out.Files = files
	r.out.Users = len(r.acc.Nodes())
	r.out.Edges = len(r.acc.Edges())

	if c.deps.Sink != nil {
		err := c.deps.Sink.SaveRun(ctx, store.RunData{
			RunID:     r.out.RunID,
			Mode:      string(r.req.Mode),
			CreatedAt: r.out.StartedAt,
			Comments:  r.acc.Comments(),
			Nodes:     r.acc.Nodes(),
			Edges:     r.acc.Edges(),
			Videos:    r.videos,
		})
		if err != nil {
			logger.Warn("database sink failed", "run_id", r.out.RunID, "err", err)
		}
	}
	if c.deps.Uploader != nil && len(files) > 0 {
		keys, err := c.deps.Uploader.UploadFiles(ctx, r.out.RunID, files)
		if err != nil {
			logger.Warn("upload failed", "run_id", r.out.RunID, "uploaded", len(keys), "err", err)
		} else {
			logger.Info("files uploaded", "run_id", r.out.RunID, "objects", len(keys))
		}
	}
	return nil
}
