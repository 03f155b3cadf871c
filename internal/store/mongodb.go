package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"yt-network-go/internal/graph"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoSink struct {
	cli *mongo.Client
	db  *mongo.Database
}

func OpenMongoSink(ctx context.Context, uri, dbName string) (*MongoSink, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, errors.New("MONGO_URI is empty")
	}
	dbName = strings.TrimSpace(dbName)
	if dbName == "" {
		dbName = "yt_network"
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := cli.Ping(ctx, readpref.Primary()); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	s := &MongoSink{cli: cli, db: cli.Database(dbName)}
	if err := s.initSchema(ctx); err != nil {
		_ = cli.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *MongoSink) initSchema(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"comments": {{
			Keys:    bson.D{{Key: "run_id", Value: 1}, {Key: "comment_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_run_comment"),
		}},
		"user_nodes": {{
			Keys:    bson.D{{Key: "run_id", Value: 1}, {Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_run_node"),
		}},
		"reply_edges": {{
			Keys:    bson.D{{Key: "run_id", Value: 1}, {Key: "source", Value: 1}, {Key: "target", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_run_edge"),
		}},
		"videos": {{
			Keys:    bson.D{{Key: "video_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_video"),
		}},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("mongo create indexes %s: %w", coll, err)
		}
	}
	return nil
}

func (s *MongoSink) SaveRun(ctx context.Context, run RunData) error {
	if strings.TrimSpace(run.RunID) == "" {
		return errors.New("run_id is empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().Unix()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.db.Collection("runs").UpdateOne(ctx,
		bson.D{{Key: "run_id", Value: run.RunID}},
		bson.D{{Key: "$set", Value: bson.M{
			"run_id":      run.RunID,
			"mode":        run.Mode,
			"created_at":  run.CreatedAt,
			"created_iso": time.Unix(run.CreatedAt, 0).UTC().Format(time.RFC3339Nano),
		}}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	comments := make([]mongo.WriteModel, 0, len(run.Comments))
	for _, c := range run.Comments {
		comments = append(comments, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "run_id", Value: run.RunID}, {Key: "comment_id", Value: c.ID}}).
			SetUpdate(bson.D{{Key: "$setOnInsert", Value: withRun(run.RunID, c)}}).
			SetUpsert(true))
	}
	if err := s.bulk(ctx, "comments", comments); err != nil {
		return err
	}

	nodes := make([]mongo.WriteModel, 0, len(run.Nodes))
	for _, n := range run.Nodes {
		nodes = append(nodes, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "run_id", Value: run.RunID}, {Key: "id", Value: n.ID}}).
			SetUpdate(bson.D{{Key: "$set", Value: withRun(run.RunID, n)}}).
			SetUpsert(true))
	}
	if err := s.bulk(ctx, "user_nodes", nodes); err != nil {
		return err
	}

	edges := make([]mongo.WriteModel, 0, len(run.Edges))
	for _, e := range graph.Reaggregate(run.Edges) {
		edges = append(edges, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "run_id", Value: run.RunID}, {Key: "source", Value: e.Source}, {Key: "target", Value: e.Target}}).
			SetUpdate(bson.D{{Key: "$set", Value: withRun(run.RunID, e)}}).
			SetUpsert(true))
	}
	if err := s.bulk(ctx, "reply_edges", edges); err != nil {
		return err
	}

	videos := make([]mongo.WriteModel, 0, len(run.Videos))
	for _, v := range run.Videos {
		videos = append(videos, mongo.NewUpdateOneModel().
			SetFilter(bson.D{{Key: "video_id", Value: v.VideoID}}).
			SetUpdate(bson.D{{Key: "$set", Value: v}}).
			SetUpsert(true))
	}
	return s.bulk(ctx, "videos", videos)
}

func (s *MongoSink) bulk(ctx context.Context, coll string, models []mongo.WriteModel) error {
	if len(models) == 0 {
		return nil
	}
	if _, err := s.db.Collection(coll).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
		return fmt.Errorf("mongo bulk write %s: %w", coll, err)
	}
	return nil
}

func (s *MongoSink) Close() error {
	if s == nil || s.cli == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.cli.Disconnect(ctx)
}

// withRun flattens v into a document and stamps it with the run id.
func withRun(runID string, v any) bson.M {
	out := bson.M{}
	if b, err := bson.Marshal(v); err == nil {
		_ = bson.Unmarshal(b, &out)
	}
	out["run_id"] = runID
	return out
}
