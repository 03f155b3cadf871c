package youtube

import (
	"context"

	"yt-network-go/internal/crawler"
	"yt-network-go/internal/graph"
	"yt-network-go/internal/logger"
)

// SearchSeeds collects up to max distinct video ids for p.Query in result
// order. On failure the ids gathered so far are returned with the error.
func SearchSeeds(ctx context.Context, api API, ring *KeyRing, m *crawler.Metrics, p SearchParams, max int) ([]string, error) {
	if max <= 0 {
		return nil, nil
	}
	pager := NewPager[string](func(ctx context.Context, token string) ([]string, string, error) {
		page, err := withRotation(ctx, ring, m, func(ctx context.Context, key string) (SearchPage, error) {
			return api.Search(ctx, key, p, token)
		})
		ids := make([]string, 0, len(page.Items))
		for _, it := range page.Items {
			if it.ID.VideoID != "" {
				ids = append(ids, it.ID.VideoID)
			}
		}
		return ids, page.NextPageToken, err
	})

	seen := make(map[string]struct{}, max)
	out := make([]string, 0, max)
	for !pager.Done() && len(out) < max {
		ids, err := pager.Next(ctx)
		if err != nil {
			return out, err
		}
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
			if len(out) >= max {
				break
			}
		}
	}
	logger.Info("search seeds collected", "query", p.Query, "seeds", len(out), "pages", pager.Pages())
	return out, nil
}

// FetchVideos loads metadata for ids in batches of 50. Ids the API does not
// return (deleted, private) are skipped. On failure the rows gathered so far
// are returned with the error.
func FetchVideos(ctx context.Context, api API, ring *KeyRing, m *crawler.Metrics, ids []string) ([]graph.Video, error) {
	var out []graph.Video
	for _, batch := range chunk(dedupe(ids), maxVideoIDs) {
		pager := NewPager[VideoResource](func(ctx context.Context, token string) ([]VideoResource, string, error) {
			page, err := withRotation(ctx, ring, m, func(ctx context.Context, key string) (VideoPage, error) {
				return api.Videos(ctx, key, batch, token)
			})
			return page.Items, page.NextPageToken, err
		})
		for !pager.Done() {
			items, err := pager.Next(ctx)
			if err != nil {
				return graph.DedupeVideos(out), err
			}
			for _, it := range items {
				out = append(out, it.toVideo())
			}
		}
	}
	return graph.DedupeVideos(out), nil
}

func chunk(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
