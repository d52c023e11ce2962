package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"axiona-learning-core/internal/index"
)

func ConnectMongoDB(cfg *Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %v", err)
	}

	// Test connection
	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %v", err)
	}

	// Create indexes
	err = createIndexes(client, cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to create indexes: %v", err)
	}

	return client, nil
}

// createIndexes prepares the three chunk collections, one per namespace.
// (source_id, chunk_id) backs the upsert path; fields.* keys back the
// metadata filters retrieval translates into find queries.
func createIndexes(client *mongo.Client, dbName string) error {
	db := client.Database(dbName)

	for _, name := range index.ChunkCollections() {
		col := db.Collection(name)
		indexes := []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "source_id", Value: 1}, {Key: "chunk_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys: bson.D{{Key: "source_id", Value: 1}},
			},
			{
				Keys: bson.D{{Key: "fields.title", Value: 1}},
			},
		}
		if _, err := col.Indexes().CreateMany(context.Background(), indexes); err != nil {
			return err
		}
	}

	return nil
}
