package store

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"yt-network-go/internal/graph"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func aliceBobCarol() *graph.Accumulator {
	acc := graph.NewAccumulator(graph.Options{})
	acc.Add(graph.Comment{ID: "c1", VideoID: "v1", Author: "Alice", Text: "olá, mundo", LikeCount: 3, PublishedAt: "2024-01-01T00:00:00Z"})
	acc.Add(graph.Comment{ID: "c2", VideoID: "v1", Author: "Bob", Text: "oi"})
	acc.Add(graph.Comment{ID: "r1", VideoID: "v1", Author: "Carol", Text: "resposta", ParentID: "c1"})
	acc.Add(graph.Comment{ID: "r2", VideoID: "v1", Author: "Carol", Text: "outra", ParentID: "c2"})
	return acc
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(b), utf8BOM), "missing BOM in %s", path)
	rows, err := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(b), utf8BOM))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportReplyNetwork(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{Dir: dir, Format: "csv", GraphML: true}

	files, err := e.ExportReplyNetwork(aliceBobCarol())
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "comentarios.csv"),
		filepath.Join(dir, "rede_usuarios_nos.csv"),
		filepath.Join(dir, "rede_usuarios_arestas.csv"),
		filepath.Join(dir, "rede_usuarios.graphml"),
	}, files)

	comments := readCSV(t, files[0])
	assert.Equal(t, []string{"comment_id", "author", "text", "likes", "timestamp", "parent_id"}, comments[0])
	assert.Equal(t, []string{"c1", "Alice", "olá, mundo", "3", "2024-01-01T00:00:00Z", ""}, comments[1])
	assert.Len(t, comments, 5)

	nodes := readCSV(t, files[1])
	assert.Equal(t, []string{"id", "total_comments", "total_replies_received"}, nodes[0])
	assert.Contains(t, nodes, []string{"Carol", "0", "0"})

	edges := readCSV(t, files[2])
	assert.Equal(t, []string{"source", "target", "peso"}, edges[0])
	assert.ElementsMatch(t, [][]string{{"Carol", "Alice", "1"}, {"Carol", "Bob", "1"}}, edges[1:])
}

func TestExportWithoutRepliesSkipsEdgeFile(t *testing.T) {
	dir := t.TempDir()
	acc := graph.NewAccumulator(graph.Options{})
	acc.Add(graph.Comment{ID: "c1", Author: "Alice"})

	files, err := (&Exporter{Dir: dir}).ExportReplyNetwork(acc)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.FileExists(t, filepath.Join(dir, "rede_usuarios_nos.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "rede_usuarios_arestas.csv"))
}

func TestExportEmptyWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	e := &Exporter{Dir: dir, GraphML: true}

	files, err := e.ExportReplyNetwork(graph.NewAccumulator(graph.Options{}))
	require.NoError(t, err)
	assert.Empty(t, files)
	files, err = e.ExportBipartite(graph.NewBipartite())
	require.NoError(t, err)
	assert.Empty(t, files)
	files, err = e.ExportSimilarity(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, files)
	assert.NoDirExists(t, dir)
}

func TestExportCustomWeightColumn(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{Dir: dir, WeightColumn: "weight", GraphML: true}
	_, err := e.ExportReplyNetwork(aliceBobCarol())
	require.NoError(t, err)

	edges := readCSV(t, filepath.Join(dir, "rede_usuarios_arestas.csv"))
	assert.Equal(t, "weight", edges[0][2])

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(filepath.Join(dir, "rede_usuarios.graphml")))
	key := doc.FindElement("//key[@for='edge']")
	require.NotNil(t, key)
	assert.Equal(t, "weight", key.SelectAttrValue("attr.name", ""))
	assert.Equal(t, "int", key.SelectAttrValue("attr.type", ""))
	assert.Equal(t, "directed", doc.FindElement("//graph").SelectAttrValue("edgedefault", ""))
	assert.Len(t, doc.FindElements("//node"), 3)
	assert.Len(t, doc.FindElements("//edge"), 2)
}

func TestExportXLSX(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{Dir: dir, Format: "xlsx"}
	files, err := e.ExportReplyNetwork(aliceBobCarol())
	require.NoError(t, err)
	require.Len(t, files, 3)

	f, err := excelize.OpenFile(filepath.Join(dir, "rede_usuarios_arestas.xlsx"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("rede_usuarios_arestas")
	require.NoError(t, err)
	assert.Equal(t, []string{"source", "target", "peso"}, rows[0])
	assert.Len(t, rows, 3)
}

func TestExportSearchTables(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{Dir: dir, GraphML: true}
	views := int64(10)
	videos := []graph.Video{
		{VideoID: "a", Title: "A", ViewCount: &views},
		{VideoID: "b", Title: "B"},
		{VideoID: "a", Title: "dup"},
	}
	files, err := e.ExportVideos(videos)
	require.NoError(t, err)
	rows := readCSV(t, files[0])
	require.Len(t, rows, 3)
	assert.Equal(t, "10", rows[1][6])
	assert.Equal(t, "", rows[2][6])

	b := graph.NewBipartite()
	b.Add(graph.Comment{ID: "c1", VideoID: "a", Author: "Ann", AuthorChannelID: "UCa"})
	b.Add(graph.Comment{ID: "c2", VideoID: "a", Author: "Ann", AuthorChannelID: "UCa"})
	files, err = e.ExportBipartite(b)
	require.NoError(t, err)
	assert.Len(t, files, 3)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(filepath.Join(dir, FileBipartiteGraph)))
	assert.Len(t, doc.FindElements("//edge"), 1)
	assert.Equal(t, "undirected", doc.FindElement("//graph").SelectAttrValue("edgedefault", ""))

	sim := []graph.SimilarityEdge{
		{Source: "a", Target: "b", Weight: 0.5, Edge: "similar"},
		{Source: "b", Target: "a", Weight: 0.5, Edge: "similar"},
	}
	files, err = e.ExportSimilarity(videos[:2], sim)
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.Len(t, readCSV(t, files[0]), 3)
	doc = etree.NewDocument()
	require.NoError(t, doc.ReadFromFile(filepath.Join(dir, FileSimilarityGraph)))
	assert.Len(t, doc.FindElements("//edge"), 1)
}
