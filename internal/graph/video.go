package graph

import "strconv"

// Video is one row of video metadata. Counters are nil when the API hides
// them.
type Video struct {
	VideoID      string `json:"videoId" bson:"video_id"`
	Title        string `json:"title" bson:"title"`
	Description  string `json:"description" bson:"description"`
	ChannelID    string `json:"channelId" bson:"channel_id"`
	ChannelTitle string `json:"channelTitle" bson:"channel_title"`
	PublishedAt  string `json:"publishedAt" bson:"published_at"`
	ViewCount    *int64 `json:"viewCount" bson:"view_count"`
	LikeCount    *int64 `json:"likeCount" bson:"like_count"`
	CommentCount *int64 `json:"commentCount" bson:"comment_count"`
	Duration     string `json:"duration" bson:"duration"`
}

func (Video) CSVHeader() []string {
	return []string{"videoId", "title", "description", "channelId", "channelTitle", "publishedAt", "viewCount", "likeCount", "commentCount", "duration"}
}

func (v Video) ToCSV() []string {
	return []string{v.VideoID, v.Title, v.Description, v.ChannelID, v.ChannelTitle, v.PublishedAt, optInt(v.ViewCount), optInt(v.LikeCount), optInt(v.CommentCount), v.Duration}
}

func optInt(p *int64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatInt(*p, 10)
}

// DedupeVideos keeps the first row per video id.
func DedupeVideos(in []Video) []Video {
	seen := make(map[string]struct{}, len(in))
	out := make([]Video, 0, len(in))
	for _, v := range in {
		if v.VideoID == "" {
			continue
		}
		if _, ok := seen[v.VideoID]; ok {
			continue
		}
		seen[v.VideoID] = struct{}{}
		out = append(out, v)
	}
	return out
}
