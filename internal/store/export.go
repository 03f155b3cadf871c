package store

import (
	"path/filepath"
	"strings"

	"yt-network-go/internal/config"
	"yt-network-go/internal/graph"
	"yt-network-go/internal/logger"
)

const (
	FileComments        = "comentarios"
	FileUserNodes       = "rede_usuarios_nos"
	FileUserEdges       = "rede_usuarios_arestas"
	FileReplyGraphML    = "rede_usuarios.graphml"
	FileVideos          = "nodes_videos"
	FileBipartiteUsers  = "nodes_users"
	FileBipartiteEdges  = "edges_comments_user_video"
	FileBipartiteGraph  = "graph_comment_bipartite.graphml"
	FileSimilarityEdges = "edges_similarity_video_video"
	FileSimilarityGraph = "graph_similarity.graphml"
)

// Exporter writes the tables of a run into Dir, one file per non-empty
// table. Every Export method returns the paths it wrote.
type Exporter struct {
	Dir          string
	WeightColumn string
	// Format is "csv" or "xlsx".
	Format  string
	GraphML bool
}

func NewExporterFromConfig(cfg config.Config, dir string) *Exporter {
	if strings.TrimSpace(dir) == "" {
		dir = cfg.OutDir
	}
	return &Exporter{
		Dir:          dir,
		WeightColumn: cfg.EdgeWeightColumn,
		Format:       cfg.SaveDataOption,
		GraphML:      cfg.WriteGraphML,
	}
}

func (e *Exporter) weightColumn() string {
	if w := strings.TrimSpace(e.WeightColumn); w != "" {
		return w
	}
	return "peso"
}

// table writes one tabular file in the configured format.
func (e *Exporter) table(name string, header []string, rows [][]string, written *[]string) error {
	var (
		p   string
		ok  bool
		err error
	)
	if strings.EqualFold(e.Format, "xlsx") {
		p = filepath.Join(e.Dir, name+".xlsx")
		ok, err = WriteWorkbook(p, name, header, rows)
	} else {
		p = filepath.Join(e.Dir, name+".csv")
		ok, err = WriteCSV(p, header, rows)
	}
	if err != nil {
		return err
	}
	if ok {
		logger.Info("file written", "path", p, "rows", len(rows))
		*written = append(*written, p)
	}
	return nil
}

func (e *Exporter) graphML(name string, write func(string) (bool, error), written *[]string) error {
	if !e.GraphML {
		return nil
	}
	p := filepath.Join(e.Dir, name)
	ok, err := write(p)
	if err != nil {
		return err
	}
	if ok {
		logger.Info("file written", "path", p)
		*written = append(*written, p)
	}
	return nil
}

// ExportReplyNetwork writes the comment table and the user reply network.
func (e *Exporter) ExportReplyNetwork(acc *graph.Accumulator) ([]string, error) {
	var written []string
	comments := acc.Comments()
	if len(comments) > 0 {
		if err := e.table(FileComments, comments[0].CSVHeader(), rowsOf(comments), &written); err != nil {
			return written, err
		}
	}
	nodes := acc.Nodes()
	edges := acc.Edges()
	if len(nodes) > 0 {
		if err := e.table(FileUserNodes, graph.UserNode{}.CSVHeader(), rowsOf(nodes), &written); err != nil {
			return written, err
		}
	}
	header := []string{"source", "target", e.weightColumn()}
	if err := e.table(FileUserEdges, header, rowsOf(edges), &written); err != nil {
		return written, err
	}
	err := e.graphML(FileReplyGraphML, func(p string) (bool, error) {
		return WriteReplyGraphML(p, nodes, edges, e.weightColumn())
	}, &written)
	return written, err
}

func (e *Exporter) ExportVideos(videos []graph.Video) ([]string, error) {
	var written []string
	err := e.table(FileVideos, graph.Video{}.CSVHeader(), rowsOf(graph.DedupeVideos(videos)), &written)
	return written, err
}

func (e *Exporter) ExportBipartite(b *graph.Bipartite) ([]string, error) {
	var written []string
	if b == nil {
		return nil, nil
	}
	if err := e.table(FileBipartiteUsers, graph.BipartiteUser{}.CSVHeader(), rowsOf(b.Users()), &written); err != nil {
		return written, err
	}
	if err := e.table(FileBipartiteEdges, graph.UserVideoEdge{}.CSVHeader(), rowsOf(b.Edges()), &written); err != nil {
		return written, err
	}
	err := e.graphML(FileBipartiteGraph, func(p string) (bool, error) {
		return WriteBipartiteGraphML(p, b)
	}, &written)
	return written, err
}

func (e *Exporter) ExportSimilarity(videos []graph.Video, edges []graph.SimilarityEdge) ([]string, error) {
	var written []string
	if err := e.table(FileSimilarityEdges, graph.SimilarityEdge{}.CSVHeader(), rowsOf(edges), &written); err != nil {
		return written, err
	}
	err := e.graphML(FileSimilarityGraph, func(p string) (bool, error) {
		return WriteSimilarityGraphML(p, videos, edges)
	}, &written)
	return written, err
}
