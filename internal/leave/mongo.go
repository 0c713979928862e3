package leave

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists leave requests in the "leaves" collection.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection("leaves")}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "appliedDate", Value: -1}},
	})
	return err
}

func (s *MongoStore) Insert(ctx context.Context, req Request) (Request, error) {
	if _, err := s.coll.InsertOne(ctx, req); err != nil {
		return Request{}, err
	}
	return req, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Request, error) {
	var req Request
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Request{}, ErrNotFound
	}
	return req, err
}

func (s *MongoStore) ListByOwner(ctx context.Context, owner string) ([]Request, error) {
	cur, err := s.coll.Find(ctx, bson.M{"owner": owner},
		options.Find().SetSort(bson.D{{Key: "appliedDate", Value: -1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []Request
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
