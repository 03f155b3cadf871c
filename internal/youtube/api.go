package youtube

import (
	"strconv"
	"strings"

	"yt-network-go/internal/graph"

	"golang.org/x/net/html"
)

type commentSnippet struct {
	VideoID           string `json:"videoId"`
	AuthorDisplayName string `json:"authorDisplayName"`
	AuthorChannelID   struct {
		Value string `json:"value"`
	} `json:"authorChannelId"`
	TextOriginal string `json:"textOriginal"`
	TextDisplay  string `json:"textDisplay"`
	LikeCount    int64  `json:"likeCount"`
	PublishedAt  string `json:"publishedAt"`
	ParentID     string `json:"parentId"`
}

// CommentResource is one item of comments.list, also embedded as the
// top-level comment of a thread.
type CommentResource struct {
	ID      string         `json:"id"`
	Snippet commentSnippet `json:"snippet"`
}

type CommentThread struct {
	ID      string `json:"id"`
	Snippet struct {
		VideoID         string          `json:"videoId"`
		TopLevelComment CommentResource `json:"topLevelComment"`
		TotalReplyCount int             `json:"totalReplyCount"`
	} `json:"snippet"`
}

type ThreadPage struct {
	NextPageToken string          `json:"nextPageToken"`
	Items         []CommentThread `json:"items"`
}

type ReplyPage struct {
	NextPageToken string            `json:"nextPageToken"`
	Items         []CommentResource `json:"items"`
}

type SearchPage struct {
	NextPageToken string `json:"nextPageToken"`
	Items         []struct {
		ID struct {
			Kind    string `json:"kind"`
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type VideoResource struct {
	ID      string `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		Description  string `json:"description"`
		ChannelID    string `json:"channelId"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount    string `json:"viewCount"`
		LikeCount    string `json:"likeCount"`
		CommentCount string `json:"commentCount"`
	} `json:"statistics"`
	ContentDetails struct {
		Duration string `json:"duration"`
	} `json:"contentDetails"`
}

type VideoPage struct {
	NextPageToken string          `json:"nextPageToken"`
	Items         []VideoResource `json:"items"`
}

// ThreadParams selects one page of commentThreads.list.
type ThreadParams struct {
	VideoID    string
	PageToken  string
	MaxResults int
	// Order is "relevance" or "time"; empty leaves the API default.
	Order string
}

type SearchParams struct {
	Query             string
	RegionCode        string
	RelevanceLanguage string
}

func (r CommentResource) text() string {
	if r.Snippet.TextOriginal != "" {
		return r.Snippet.TextOriginal
	}
	return plainText(r.Snippet.TextDisplay)
}

// plainText flattens an HTML textDisplay into its text content.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	z := html.NewTokenizer(strings.NewReader(s))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			if name, _ := z.TagName(); string(name) == "br" {
				b.WriteByte('\n')
			}
		}
	}
}

func (r CommentResource) toComment(videoID, parentID string) graph.Comment {
	if r.Snippet.VideoID != "" {
		videoID = r.Snippet.VideoID
	}
	return graph.Comment{
		ID:              r.ID,
		VideoID:         videoID,
		Author:          r.Snippet.AuthorDisplayName,
		AuthorChannelID: r.Snippet.AuthorChannelID.Value,
		Text:            r.text(),
		LikeCount:       r.Snippet.LikeCount,
		PublishedAt:     r.Snippet.PublishedAt,
		ParentID:        parentID,
	}
}

func (t CommentThread) topLevel() graph.Comment {
	return t.Snippet.TopLevelComment.toComment(t.Snippet.VideoID, "")
}

func (v VideoResource) toVideo() graph.Video {
	return graph.Video{
		VideoID:      v.ID,
		Title:        v.Snippet.Title,
		Description:  v.Snippet.Description,
		ChannelID:    v.Snippet.ChannelID,
		ChannelTitle: v.Snippet.ChannelTitle,
		PublishedAt:  v.Snippet.PublishedAt,
		ViewCount:    parseCount(v.Statistics.ViewCount),
		LikeCount:    parseCount(v.Statistics.LikeCount),
		CommentCount: parseCount(v.Statistics.CommentCount),
		Duration:     v.ContentDetails.Duration,
	}
}

// parseCount returns nil for hidden or malformed counters; the API sends
// them as decimal strings.
func parseCount(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}
