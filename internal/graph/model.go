// Package graph assembles the commenter interaction network from collected
// comments.
package graph

import "strconv"

// Comment is one top-level comment or reply. ParentID is empty for
// top-level comments.
type Comment struct {
	ID              string `json:"comment_id" bson:"comment_id"`
	VideoID         string `json:"video_id" bson:"video_id"`
	Author          string `json:"author" bson:"author"`
	AuthorChannelID string `json:"author_channel_id,omitempty" bson:"author_channel_id,omitempty"`
	Text            string `json:"text" bson:"text"`
	LikeCount       int64  `json:"likes" bson:"likes"`
	PublishedAt     string `json:"timestamp" bson:"timestamp"`
	ParentID        string `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
}

func (c Comment) IsReply() bool { return c.ParentID != "" }

func (c Comment) CSVHeader() []string {
	return []string{"comment_id", "author", "text", "likes", "timestamp", "parent_id"}
}

func (c Comment) ToCSV() []string {
	return []string{
		c.ID,
		c.Author,
		c.Text,
		strconv.FormatInt(c.LikeCount, 10),
		c.PublishedAt,
		c.ParentID,
	}
}

type UserNode struct {
	ID                   string `json:"id" bson:"id"`
	TotalComments        int    `json:"total_comments" bson:"total_comments"`
	TotalRepliesReceived int    `json:"total_replies_received" bson:"total_replies_received"`
}

func (n UserNode) CSVHeader() []string {
	return []string{"id", "total_comments", "total_replies_received"}
}

func (n UserNode) ToCSV() []string {
	return []string{n.ID, strconv.Itoa(n.TotalComments), strconv.Itoa(n.TotalRepliesReceived)}
}

// Pair is one raw reply event: Source replied to a comment written by Target.
type Pair struct {
	Source string
	Target string
}

// Edge is the aggregated form of every Pair with the same endpoints.
type Edge struct {
	Source string `json:"source" bson:"source"`
	Target string `json:"target" bson:"target"`
	Weight int    `json:"weight" bson:"weight"`
}

func (Edge) CSVHeader() []string {
	return []string{"source", "target", "weight"}
}

func (e Edge) ToCSV() []string {
	return []string{e.Source, e.Target, strconv.Itoa(e.Weight)}
}

// Identity selects what a user node is keyed by.
type Identity string

const (
	// IdentityDisplayName keys users by their shown name. Distinct accounts
	// sharing a name collapse into one node; see Accumulator.AmbiguousAuthors.
	IdentityDisplayName Identity = "display_name"
	IdentityChannelID   Identity = "channel_id"
)

func ParseIdentity(s string) Identity {
	if s == string(IdentityChannelID) {
		return IdentityChannelID
	}
	return IdentityDisplayName
}
