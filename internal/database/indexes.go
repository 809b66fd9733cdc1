package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes both collections rely on. Safe to call on
// every startup; CreateMany is a no-op for indexes that already exist.
func EnsureIndexes(ctx context.Context) error {
	users := DB.Collection("users")
	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "business_type", Value: 1}}},
	})
	if err != nil {
		return err
	}

	services := DB.Collection("services")
	_, err = services.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "provider", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}}},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "is_verified", Value: 1}}},
		{Keys: bson.D{{Key: "location.address.city", Value: 1}, {Key: "location.address.state", Value: 1}}},
		{Keys: bson.D{{Key: "price", Value: 1}}},
		{Keys: bson.D{{Key: "rating.average", Value: -1}}},
		{Keys: bson.D{{Key: "tags", Value: 1}}},
		{
			// Full-text search over title, description and tags
			Keys: bson.D{
				{Key: "title", Value: "text"},
				{Key: "description", Value: "text"},
				{Key: "tags", Value: "text"},
			},
		},
	})
	return err
}
