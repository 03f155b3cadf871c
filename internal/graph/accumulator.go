package graph

import (
	"fmt"
	"sort"
)

type Options struct {
	Identity Identity
	// CountRepliesAsComments also increments TotalComments for reply
	// authors. Off by default: only top-level comments are counted, and a
	// user who only replied keeps TotalComments == 0.
	CountRepliesAsComments bool
}

// Accumulator owns the node and reply-event state of a single run. It is
// append/increment only, so a run stopped at any point still yields a
// consistent export.
type Accumulator struct {
	opts Options

	nodes    map[string]*UserNode
	order    []string
	comments []Comment
	authorOf map[string]string
	pairs    []Pair

	channelsByName map[string]map[string]struct{}
	orphans        int
}

func NewAccumulator(opts Options) *Accumulator {
	if opts.Identity == "" {
		opts.Identity = IdentityDisplayName
	}
	return &Accumulator{
		opts:           opts,
		nodes:          map[string]*UserNode{},
		authorOf:       map[string]string{},
		channelsByName: map[string]map[string]struct{}{},
	}
}

// Key returns the node id a comment is attributed to.
func (a *Accumulator) Key(c Comment) string {
	if a.opts.Identity == IdentityChannelID && c.AuthorChannelID != "" {
		return c.AuthorChannelID
	}
	return c.Author
}

func (a *Accumulator) node(key string) *UserNode {
	n, ok := a.nodes[key]
	if !ok {
		n = &UserNode{ID: key}
		a.nodes[key] = n
		a.order = append(a.order, key)
	}
	return n
}

// Add ingests one comment. Replies must arrive after their parent; a reply
// whose parent was never seen is kept in the comment list but produces no
// edge.
func (a *Accumulator) Add(c Comment) {
	key := a.Key(c)
	n := a.node(key)
	a.comments = append(a.comments, c)
	a.authorOf[c.ID] = key
	a.trackChannel(c)

	if !c.IsReply() {
		n.TotalComments++
		return
	}
	if a.opts.CountRepliesAsComments {
		n.TotalComments++
	}
	target, ok := a.authorOf[c.ParentID]
	if !ok {
		a.orphans++
		return
	}
	a.pairs = append(a.pairs, Pair{Source: key, Target: target})
	a.nodes[target].TotalRepliesReceived++
}

func (a *Accumulator) trackChannel(c Comment) {
	if c.AuthorChannelID == "" || c.Author == "" {
		return
	}
	set, ok := a.channelsByName[c.Author]
	if !ok {
		set = map[string]struct{}{}
		a.channelsByName[c.Author] = set
	}
	set[c.AuthorChannelID] = struct{}{}
}

// Nodes returns the user nodes in first-sighting order.
func (a *Accumulator) Nodes() []UserNode {
	out := make([]UserNode, 0, len(a.order))
	for _, k := range a.order {
		out = append(out, *a.nodes[k])
	}
	return out
}

func (a *Accumulator) Node(key string) (UserNode, bool) {
	n, ok := a.nodes[key]
	if !ok {
		return UserNode{}, false
	}
	return *n, true
}

func (a *Accumulator) Comments() []Comment {
	return append([]Comment(nil), a.comments...)
}

func (a *Accumulator) Pairs() []Pair {
	return append([]Pair(nil), a.pairs...)
}

// ReplyEvents is the number of reply events that produced a pair.
func (a *Accumulator) ReplyEvents() int { return len(a.pairs) }

// Orphans counts replies whose parent comment was never ingested.
func (a *Accumulator) Orphans() int { return a.orphans }

func (a *Accumulator) Edges() []Edge {
	return Aggregate(a.pairs)
}

// Validate checks that every edge endpoint has a node.
func (a *Accumulator) Validate() error {
	for _, p := range a.pairs {
		if _, ok := a.nodes[p.Source]; !ok {
			return fmt.Errorf("edge source %q has no node", p.Source)
		}
		if _, ok := a.nodes[p.Target]; !ok {
			return fmt.Errorf("edge target %q has no node", p.Target)
		}
	}
	return nil
}

// AmbiguousAuthors lists display names that were seen with more than one
// channel id. Under IdentityDisplayName those accounts share a node.
func (a *Accumulator) AmbiguousAuthors() []string {
	var out []string
	for name, set := range a.channelsByName {
		if len(set) > 1 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
