package model

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/xrpbridge/bridge-api-service/internal/config"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type index struct {
	// Keys are ordered, compound index order matters for the sort it serves
	Keys    bson.D
	Unique  bool
	Sparse  bool
	Partial bson.M
}

var collections = map[string][]index{
	BridgeTransactionCollection: {
		// One on-chain payment may only prove a single bridge transaction
		{Keys: bson.D{{Key: "inbound_tx_hash", Value: 1}}, Unique: true, Sparse: true},
		{
			Keys:    bson.D{{Key: "source_chain", Value: 1}, {Key: "expected_memo", Value: 1}},
			Unique:  true,
			Partial: bson.M{"expected_memo": bson.M{"$exists": true}},
		},
		{Keys: bson.D{{Key: "source_address", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "destination_address", Value: 1}, {Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "updated_at", Value: 1}}},
	},
	UnprocessableMsgCollection: {{Keys: bson.D{}}},
}

func Setup(ctx context.Context, cfg *config.Config) error {
	clientOps := options.Client().ApplyURI(cfg.Db.Address)
	client, err := mongo.Connect(ctx, clientOps)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to disconnect setup client")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	database := client.Database(cfg.Db.DbName)

	for collection := range collections {
		createCollection(ctx, database, collection)
	}

	for name, idxs := range collections {
		for _, idx := range idxs {
			if err := createIndex(ctx, database, name, idx); err != nil {
				return err
			}
		}
	}

	log.Info().Msg("Collections and Indexes created successfully.")
	return nil
}

func createCollection(ctx context.Context, database *mongo.Database, collectionName string) {
	names, err := database.ListCollectionNames(ctx, bson.M{"name": collectionName})
	if err == nil && len(names) > 0 {
		log.Debug().Msg(fmt.Sprintf("Collection already exists: %s", collectionName))
		return
	}

	if err := database.CreateCollection(ctx, collectionName); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to create collection: " + collectionName)
		return
	}

	log.Debug().Msg("Collection created successfully: " + collectionName)
}

// createIndex fails hard on the unique indexes, the pipeline's exactly-once
// guarantees rely on them.
func createIndex(ctx context.Context, database *mongo.Database, collectionName string, idx index) error {
	if len(idx.Keys) == 0 {
		return nil
	}

	opts := options.Index().SetUnique(idx.Unique)
	if idx.Sparse {
		opts.SetSparse(true)
	}
	if idx.Partial != nil {
		opts.SetPartialFilterExpression(idx.Partial)
	}

	model := mongo.IndexModel{
		Keys:    idx.Keys,
		Options: opts,
	}

	if _, err := database.Collection(collectionName).Indexes().CreateOne(ctx, model); err != nil {
		if idx.Unique {
			return fmt.Errorf("failed to create unique index on collection '%s': %w", collectionName, err)
		}
		log.Debug().Msg(fmt.Sprintf("Failed to create index on collection '%s': %v", collectionName, err))
		return nil
	}

	log.Debug().Msg("Index created successfully on collection: " + collectionName)
	return nil
}
