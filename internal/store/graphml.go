package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"yt-network-go/internal/graph"

	"github.com/beevik/etree"
)

const graphMLNamespace = "http://graphml.graphdrawing.org/xmlns"

type graphMLKey struct {
	For  string
	Name string
	Type string
}

type graphMLAttr struct {
	Name  string
	Value string
}

type graphMLDoc struct {
	doc   *etree.Document
	graph *etree.Element
	ids   map[string]string
}

// newGraphML declares every attribute key up front; GraphML requires the
// <key> elements to precede the <graph>.
func newGraphML(directed bool, keys ...graphMLKey) *graphMLDoc {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("graphml")
	root.CreateAttr("xmlns", graphMLNamespace)
	root.CreateAttr("xmlns:xsi", "http://www.w3.org/2001/XMLSchema-instance")
	root.CreateAttr("xsi:schemaLocation", graphMLNamespace+" "+graphMLNamespace+"/1.0/graphml.xsd")

	g := &graphMLDoc{doc: doc, ids: make(map[string]string, len(keys))}
	for i, k := range keys {
		id := fmt.Sprintf("d%d", i)
		el := root.CreateElement("key")
		el.CreateAttr("id", id)
		el.CreateAttr("for", k.For)
		el.CreateAttr("attr.name", k.Name)
		el.CreateAttr("attr.type", k.Type)
		g.ids[k.For+"/"+k.Name] = id
	}
	g.graph = root.CreateElement("graph")
	g.graph.CreateAttr("id", "G")
	if directed {
		g.graph.CreateAttr("edgedefault", "directed")
	} else {
		g.graph.CreateAttr("edgedefault", "undirected")
	}
	return g
}

func (g *graphMLDoc) data(el *etree.Element, kind string, attrs []graphMLAttr) {
	for _, a := range attrs {
		id, ok := g.ids[kind+"/"+a.Name]
		if !ok {
			continue
		}
		d := el.CreateElement("data")
		d.CreateAttr("key", id)
		d.SetText(a.Value)
	}
}

func (g *graphMLDoc) node(id string, attrs ...graphMLAttr) {
	el := g.graph.CreateElement("node")
	el.CreateAttr("id", id)
	g.data(el, "node", attrs)
}

func (g *graphMLDoc) edge(source, target string, attrs ...graphMLAttr) {
	el := g.graph.CreateElement("edge")
	el.CreateAttr("source", source)
	el.CreateAttr("target", target)
	g.data(el, "edge", attrs)
}

func (g *graphMLDoc) save(path string) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	g.doc.Indent(2)
	return g.doc.WriteToFile(path)
}

// WriteReplyGraphML writes the directed reply network. The edge weight
// attribute takes the configured weight column name.
func WriteReplyGraphML(path string, nodes []graph.UserNode, edges []graph.Edge, weightName string) (bool, error) {
	if len(nodes) == 0 {
		return false, nil
	}
	g := newGraphML(true,
		graphMLKey{For: "node", Name: "total_comments", Type: "int"},
		graphMLKey{For: "node", Name: "total_replies_received", Type: "int"},
		graphMLKey{For: "edge", Name: weightName, Type: "int"},
	)
	for _, n := range nodes {
		g.node(n.ID,
			graphMLAttr{"total_comments", strconv.Itoa(n.TotalComments)},
			graphMLAttr{"total_replies_received", strconv.Itoa(n.TotalRepliesReceived)},
		)
	}
	for _, e := range edges {
		g.edge(e.Source, e.Target, graphMLAttr{weightName, strconv.Itoa(e.Weight)})
	}
	return true, g.save(path)
}

// WriteBipartiteGraphML writes the undirected user/video graph. Users carry
// bipartite=0, videos bipartite=1. Several comments by one user on one
// video collapse into a single edge holding the last comment id.
func WriteBipartiteGraphML(path string, b *graph.Bipartite) (bool, error) {
	if b == nil || b.Empty() {
		return false, nil
	}
	g := newGraphML(false,
		graphMLKey{For: "node", Name: "bipartite", Type: "int"},
		graphMLKey{For: "node", Name: "kind", Type: "string"},
		graphMLKey{For: "node", Name: "displayName", Type: "string"},
		graphMLKey{For: "edge", Name: "edge", Type: "string"},
		graphMLKey{For: "edge", Name: "commentId", Type: "string"},
	)
	for _, u := range b.Users() {
		g.node(u.UserID,
			graphMLAttr{"bipartite", "0"},
			graphMLAttr{"kind", "user"},
			graphMLAttr{"displayName", u.DisplayName},
		)
	}
	for _, v := range b.Videos() {
		g.node(v, graphMLAttr{"bipartite", "1"}, graphMLAttr{"kind", "video"})
	}

	type pair struct{ u, v string }
	order := []pair{}
	last := map[pair]graph.UserVideoEdge{}
	for _, e := range b.Edges() {
		p := pair{e.SourceUserID, e.TargetVideoID}
		if _, ok := last[p]; !ok {
			order = append(order, p)
		}
		last[p] = e
	}
	for _, p := range order {
		e := last[p]
		g.edge(p.u, p.v, graphMLAttr{"edge", e.Edge}, graphMLAttr{"commentId", e.CommentID})
	}
	return true, g.save(path)
}

// WriteSimilarityGraphML writes the undirected video similarity graph with
// the video metadata as node attributes. Reciprocal edges are written once.
func WriteSimilarityGraphML(path string, videos []graph.Video, edges []graph.SimilarityEdge) (bool, error) {
	if len(edges) == 0 {
		return false, nil
	}
	g := newGraphML(false,
		graphMLKey{For: "node", Name: "title", Type: "string"},
		graphMLKey{For: "node", Name: "description", Type: "string"},
		graphMLKey{For: "node", Name: "channelId", Type: "string"},
		graphMLKey{For: "node", Name: "channelTitle", Type: "string"},
		graphMLKey{For: "node", Name: "publishedAt", Type: "string"},
		graphMLKey{For: "node", Name: "viewCount", Type: "long"},
		graphMLKey{For: "node", Name: "likeCount", Type: "long"},
		graphMLKey{For: "node", Name: "commentCount", Type: "long"},
		graphMLKey{For: "node", Name: "duration", Type: "string"},
		graphMLKey{For: "edge", Name: "weight", Type: "double"},
		graphMLKey{For: "edge", Name: "edge", Type: "string"},
	)
	for _, v := range videos {
		attrs := []graphMLAttr{
			{"title", v.Title},
			{"description", v.Description},
			{"channelId", v.ChannelID},
			{"channelTitle", v.ChannelTitle},
			{"publishedAt", v.PublishedAt},
			{"duration", v.Duration},
		}
		for _, c := range []struct {
			name string
			v    *int64
		}{{"viewCount", v.ViewCount}, {"likeCount", v.LikeCount}, {"commentCount", v.CommentCount}} {
			if c.v != nil {
				attrs = append(attrs, graphMLAttr{c.name, strconv.FormatInt(*c.v, 10)})
			}
		}
		g.node(v.VideoID, attrs...)
	}

	seen := map[[2]string]struct{}{}
	for _, e := range edges {
		k := [2]string{e.Source, e.Target}
		if e.Target < e.Source {
			k = [2]string{e.Target, e.Source}
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		g.edge(e.Source, e.Target,
			graphMLAttr{"weight", strconv.FormatFloat(e.Weight, 'f', -1, 64)},
			graphMLAttr{"edge", e.Edge},
		)
	}
	return true, g.save(path)
}
