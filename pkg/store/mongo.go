package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/parley-ai/parley/pkg/config"
)

// MongoStore implements DocumentStore over a MongoDB database.
// It never issues writes.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoStore connects to the configured MongoDB deployment and
// verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg *config.StoreConfig) (*MongoStore, error) {
	timeout := time.Duration(cfg.ConnectTimeout) * time.Second

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	slog.Debug("Connected to document store", "database", cfg.Database)

	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
	}, nil
}

// Close disconnects from the deployment.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// ListCollections returns all collection names, system collections
// excluded.
func (s *MongoStore) ListCollections(ctx context.Context) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}

	clean := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, "system.") {
			continue
		}
		clean = append(clean, name)
	}
	return clean, nil
}

// SampleFields returns the field names of one sample document in their
// stored order, with the internal _id dropped.
func (s *MongoStore) SampleFields(ctx context.Context, collection string) ([]string, error) {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCollectionNotFound
	}

	var sample bson.D
	err = s.db.Collection(collection).FindOne(ctx, bson.D{}).Decode(&sample)
	if err == mongo.ErrNoDocuments {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to sample collection %s: %w", collection, err)
	}

	fields := make([]string, 0, len(sample))
	for _, elem := range sample {
		if elem.Key == "_id" {
			continue
		}
		fields = append(fields, elem.Key)
	}
	return fields, nil
}

// Find runs a read-only query with the sanitized filter and options.
func (s *MongoStore) Find(ctx context.Context, collection string, filter map[string]any, opts FindOptions) ([]map[string]any, error) {
	exists, err := s.collectionExists(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCollectionNotFound
	}

	findOpts := options.Find()

	projection := opts.Projection
	if projection == nil {
		projection = map[string]any{"_id": 0}
	}
	findOpts.SetProjection(toBSON(projection))

	if len(opts.Sort) > 0 {
		sort := bson.D{}
		for _, field := range opts.Sort {
			dir := 1
			if !field.Ascending {
				dir = -1
			}
			sort = append(sort, bson.E{Key: field.Key, Value: dir})
		}
		findOpts.SetSort(sort)
	}

	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	if filter == nil {
		filter = map[string]any{}
	}

	cursor, err := s.db.Collection(collection).Find(ctx, toBSON(filter), findOpts)
	if err != nil {
		return nil, fmt.Errorf("query on %s failed: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var results []map[string]any
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode results from %s: %w", collection, err)
	}
	if results == nil {
		results = []map[string]any{}
	}
	return results, nil
}

func (s *MongoStore) collectionExists(ctx context.Context, collection string) (bool, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: collection}})
	if err != nil {
		return false, fmt.Errorf("failed to check collection %s: %w", collection, err)
	}
	return len(names) > 0, nil
}

func toBSON(m map[string]any) bson.M {
	doc := bson.M{}
	for k, v := range m {
		doc[k] = v
	}
	return doc
}
