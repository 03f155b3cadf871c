package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"yt-network-go/internal/cache"
	"yt-network-go/internal/config"
	"yt-network-go/internal/crawler"
	"yt-network-go/internal/graph"
	"yt-network-go/internal/logger"
	"yt-network-go/internal/store"
	"yt-network-go/internal/youtube"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	exitOK            = 0
	exitNoCredentials = 1
	exitUsage         = 2
)

// flagKeys maps command line flags to config keys.
var flagKeys = map[string]string{
	"mode":               "MODE",
	"video":              "VIDEO_IDS",
	"query":              "QUERY",
	"max-seeds":          "MAX_SEEDS",
	"collect-comments":   "COLLECT_COMMENTS",
	"comments-per-video": "COMMENTS_PER_VIDEO",
	"replies":            "COLLECT_REPLIES",
	"build-similarity":   "BUILD_SIMILARITY",
	"top-k":              "TOP_K",
	"min-sim":            "MIN_SIM",
	"outdir":             "OUTDIR",
	"api-key":            "API_KEY_OVERRIDE",
	"region-code":        "REGION_CODE",
	"relevance-language": "RELEVANCE_LANGUAGE",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

func execute(ctx context.Context, args []string) int {
	code := exitOK
	cmd := newRootCommand(viper.New(), &code)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitUsage
	}
	return code
}

func newRootCommand(v *viper.Viper, code *int) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:           "yt-network",
		Short:         "Collect YouTube comment interaction networks",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := bindChangedFlags(v, cmd.Flags()); err != nil {
				return err
			}
			if err := config.LoadInto(v, configPath); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			logger.InitFromConfig()
			*code = collect(cmd.Context(), config.AppConfig)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", ".", "directory holding config.yaml")
	f.String("mode", "replies", "collection mode: replies or search")
	f.StringSlice("video", nil, "video id to collect (repeatable, comma separated)")
	f.String("query", "", "search query for search mode")
	f.Int("max-seeds", 50, "maximum distinct videos taken from search")
	f.Bool("collect-comments", false, "search mode: also collect comments of the seed videos")
	f.Int("comments-per-video", 0, "cap on comments per video, 0 for no cap (search mode defaults to 200)")
	f.Bool("replies", false, "page reply listings (always on in replies mode unless set to false)")
	f.Bool("build-similarity", false, "search mode: build the video similarity graph")
	f.Int("top-k", 5, "similarity neighbours kept per video")
	f.Float64("min-sim", 0.25, "minimum cosine similarity for an edge")
	f.String("outdir", "data/raw", "output directory")
	f.StringSlice("api-key", nil, "API key, repeatable; replaces keys from env and config")
	f.String("region-code", "", "search region bias (ISO 3166-1 alpha-2)")
	f.String("relevance-language", "", "search language bias (ISO 639-1)")
	return cmd
}

// bindChangedFlags binds only the flags given on the command line, so a
// flag default never shadows an env or file value.
func bindChangedFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.Visit(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

// collect runs one collection. Only a missing credential yields a nonzero
// code; every other failure is logged.
func collect(ctx context.Context, cfg config.Config) int {
	ring, err := youtube.NewKeyRing(cfg.APIKeysList())
	if err != nil {
		logger.Error("no api key configured", "err", config.ErrNoAPIKey, "error_kind", crawler.KindOf(err))
		return exitNoCredentials
	}
	req := crawler.RequestFromConfig(cfg)

	metrics := crawler.NewMetrics()
	defer func() {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("metrics textfile not written", "path", cfg.MetricsTextfile, "err", err)
		}
	}()

	pageCache := cache.NewFromConfig(cfg)
	if pageCache != nil {
		defer pageCache.Close()
	}

	var rec youtube.PageRecorder
	if cfg.SaveRawPages {
		raw, err := store.NewRawPages(req.OutDir, cfg.RawCompress)
		if err != nil {
			logger.Warn("raw page capture disabled", "err", err)
		} else {
			defer raw.Close()
			rec = raw
			logger.Info("saving raw pages", "dir", raw.Dir(), "compress", cfg.RawCompress)
		}
	}

	sink, err := store.NewSinkFromConfig(ctx, cfg)
	if err != nil {
		logger.Warn("database sink disabled", "backend", cfg.StoreBackend, "err", err)
	}
	if sink != nil {
		defer sink.Close()
	}

	deps := youtube.Deps{
		API:      youtube.NewClientFromConfig(cfg, pageCache, metrics, rec),
		Keys:     ring,
		Metrics:  metrics,
		Exporter: store.NewExporterFromConfig(cfg, req.OutDir),
		Sink:     sink,
		Graph: graph.Options{
			Identity:               graph.ParseIdentity(cfg.Identity),
			CountRepliesAsComments: cfg.CountRepliesAsComments,
		},
	}
	if up := store.NewS3UploaderFromConfig(cfg); up != nil {
		deps.Uploader = up
	}

	logger.Info("starting collection", "mode", req.Mode, "videos", len(req.VideoIDs), "query", req.Query, "keys", ring.Len(), "outdir", req.OutDir)
	res, err := youtube.NewCrawler(deps).Run(ctx, req)
	if err != nil {
		logger.Error("collection failed", "err", err, "error_kind", crawler.KindOf(err), "run_id", res.RunID, "mode", res.Mode, "processed", res.Processed, "succeeded", res.Succeeded, "failed", res.Failed, "failure_kinds", res.FailureKinds)
		return exitOK
	}
	logger.Info("collection finished", "run_id", res.RunID, "mode", res.Mode, "partial", res.Partial, "processed", res.Processed, "failed", res.Failed, "failure_kinds", res.FailureKinds, "files", res.Files)
	return exitOK
}
