package attendance

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"dayflow/internal/store"
)

// Collection is the Mongo collection holding attendance records.
const Collection = "attendances"

// MongoStore persists attendance records as documents.
type MongoStore struct {
	coll *mongo.Collection
}

// NewMongoStore uses the attendances collection of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(Collection)}
}

// EnsureIndexes creates the unique {owner, day} index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "day", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("owner_day_unique"),
	})
	return err
}

// Insert writes rec; the unique index rejects a second record for the day.
func (s *MongoStore) Insert(ctx context.Context, rec Record) (Record, error) {
	if _, err := s.coll.InsertOne(ctx, rec); err != nil {
		if store.IsDuplicateKey(err) {
			return Record{}, ErrDuplicate
		}
		return Record{}, err
	}
	return rec, nil
}

// FindDay returns the owner's record for day.
func (s *MongoStore) FindDay(ctx context.Context, owner, day string) (Record, error) {
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"owner": owner, "day": day}).Decode(&rec)
	return rec, notFound(err)
}

// Close sets logout only while the document has no logoutTime.
func (s *MongoStore) Close(ctx context.Context, id string, logout time.Time, hours float64) (Record, error) {
	filter := bson.M{"_id": id, "logoutTime": bson.M{"$exists": false}}
	update := bson.M{"$set": bson.M{"logoutTime": logout, "totalHours": hours, "updatedAt": logout}}
	var rec Record
	err := s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&rec)
	return rec, notFound(err)
}

// ListRecent returns the owner's latest records.
func (s *MongoStore) ListRecent(ctx context.Context, owner string, limit int) ([]Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "day", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := s.coll.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}
	var recs []Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// CountBetween counts the owner's records in an inclusive day range.
func (s *MongoStore) CountBetween(ctx context.Context, owner, fromDay, toDay string) (int, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{
		"owner": owner,
		"day":   bson.M{"$gte": fromDay, "$lte": toDay},
	})
	return int(n), err
}

// Reset deletes every document in the collection.
func (s *MongoStore) Reset(ctx context.Context) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}
