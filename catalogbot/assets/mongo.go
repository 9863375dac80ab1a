package assets

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gohye/catalogbot/catalogbot/catalog"
	"github.com/gohye/catalogbot/catalogbot/masters"
)

// MongoSource reads master records from <server>_<kind> collections.
type MongoSource struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewMongoSource(ctx context.Context, uri, database string) (*MongoSource, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return &MongoSource{client: client, db: client.Database(database)}, nil
}

func (s *MongoSource) Name() string {
	return "mongo:" + s.db.Name()
}

func (s *MongoSource) Load(ctx context.Context, server catalog.Server) (*masters.Snapshot, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	return loadSnapshot(ctx, server, func(ctx context.Context, kind string) (masters.Decoder, func() error, bool, error) {
		name := fmt.Sprintf("%s_%s", server, kind)
		if !present[name] {
			return nil, nil, false, nil
		}
		cursor, err := s.db.Collection(name).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
		if err != nil {
			return nil, nil, false, err
		}
		decode := func(v any) error { return cursor.All(ctx, v) }
		return decode, func() error { return cursor.Close(ctx) }, true, nil
	})
}

func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
