package graph

import (
	"strconv"
	"strings"
)

type BipartiteUser struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

func (BipartiteUser) CSVHeader() []string {
	return []string{"userId", "displayName"}
}

func (u BipartiteUser) ToCSV() []string {
	return []string{u.UserID, u.DisplayName}
}

// UserVideoEdge links a commenter to the video a top-level comment was
// posted on.
type UserVideoEdge struct {
	SourceUserID  string `json:"sourceUserId"`
	TargetVideoID string `json:"targetVideoId"`
	Edge          string `json:"edge"`
	CommentID     string `json:"commentId"`
	LikeCount     int64  `json:"likeCount"`
	PublishedAt   string `json:"publishedAt"`
	Text          string `json:"text"`
}

func (UserVideoEdge) CSVHeader() []string {
	return []string{"sourceUserId", "targetVideoId", "edge", "commentId", "likeCount", "publishedAt", "text"}
}

func (e UserVideoEdge) ToCSV() []string {
	return []string{e.SourceUserID, e.TargetVideoID, e.Edge, e.CommentID, strconv.FormatInt(e.LikeCount, 10), e.PublishedAt, e.Text}
}

// Bipartite is the user→video view: users keyed by channel id on one side,
// videos on the other. Replies are not part of it.
type Bipartite struct {
	users     map[string]int
	userList  []BipartiteUser
	videos    map[string]struct{}
	videoList []string
	edges     []UserVideoEdge
}

func NewBipartite() *Bipartite {
	return &Bipartite{users: map[string]int{}, videos: map[string]struct{}{}}
}

// Add records a top-level comment. Comments without a channel id are
// dropped because the user side is keyed by it.
func (b *Bipartite) Add(c Comment) {
	if c.IsReply() || c.AuthorChannelID == "" || c.VideoID == "" {
		return
	}
	if _, ok := b.users[c.AuthorChannelID]; !ok {
		b.users[c.AuthorChannelID] = len(b.userList)
		b.userList = append(b.userList, BipartiteUser{UserID: c.AuthorChannelID, DisplayName: c.Author})
	}
	if _, ok := b.videos[c.VideoID]; !ok {
		b.videos[c.VideoID] = struct{}{}
		b.videoList = append(b.videoList, c.VideoID)
	}
	b.edges = append(b.edges, UserVideoEdge{
		SourceUserID:  c.AuthorChannelID,
		TargetVideoID: c.VideoID,
		Edge:          "commented",
		CommentID:     c.ID,
		LikeCount:     c.LikeCount,
		PublishedAt:   c.PublishedAt,
		Text:          strings.ReplaceAll(c.Text, "\n", " "),
	})
}

func (b *Bipartite) Users() []BipartiteUser {
	return append([]BipartiteUser(nil), b.userList...)
}

func (b *Bipartite) Videos() []string {
	return append([]string(nil), b.videoList...)
}

func (b *Bipartite) Edges() []UserVideoEdge {
	return append([]UserVideoEdge(nil), b.edges...)
}

func (b *Bipartite) Empty() bool {
	return len(b.userList) == 0 || len(b.edges) == 0
}
