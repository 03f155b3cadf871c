package crawler

import (
	"strings"

	"yt-network-go/internal/config"
)

func RequestFromConfig(cfg config.Config) Request {
	mode := NormalizeMode(cfg.Mode)
	replies := mode == ModeReplies
	if cfg.CollectReplies != nil {
		replies = *cfg.CollectReplies
	}
	return Request{
		Mode:              mode,
		VideoIDs:          cfg.VideoIDList(),
		Query:             strings.TrimSpace(cfg.Query),
		MaxSeeds:          cfg.MaxSeeds,
		CollectComments:   cfg.CollectComments,
		CollectReplies:    replies,
		CommentsPerVideo:  cfg.CommentsPerVideo,
		BuildSimilarity:   cfg.BuildSimilarity,
		TopK:              cfg.TopK,
		MinSim:            cfg.MinSim,
		RegionCode:        cfg.RegionCode,
		RelevanceLanguage: cfg.RelevanceLanguage,
		OutDir:            strings.TrimSpace(cfg.OutDir),
	}
}
