package profile

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists profiles in the "profiles" collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("profiles")}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("owner_unique"),
	})
	return err
}

func (s *MongoStore) Get(ctx context.Context, owner string) (Profile, error) {
	var p Profile
	err := s.coll.FindOne(ctx, bson.M{"owner": owner}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Profile{}, ErrNotFound
	}
	return p, err
}

func (s *MongoStore) Merge(ctx context.Context, owner string, patch Patch, now time.Time) (Profile, error) {
	set := bson.M{"updatedAt": now}
	for k, v := range patch.Fields() {
		set[k] = v
	}
	update := bson.M{"$set": set}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var p Profile
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"owner": owner}, update, opts).Decode(&p)
	if err != nil {
		return Profile{}, err
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
