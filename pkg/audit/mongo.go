package audit

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// DefaultCollection is the collection MongoStorage writes to.
const DefaultCollection = "audits"

// MongoStorage appends events to a MongoDB collection.
type MongoStorage struct {
	coll *mongo.Collection
}

// NewMongoStorage writes to collection, DefaultCollection when empty.
func NewMongoStorage(db *mongo.Database, collection string) *MongoStorage {
	if collection == "" {
		collection = DefaultCollection
	}
	return &MongoStorage{coll: db.Collection(collection)}
}

func (s *MongoStorage) Store(ctx context.Context, event Event) error {
	if _, err := s.coll.InsertOne(ctx, event); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// Before and After come back as generic bson documents.
func (s *MongoStorage) Query(ctx context.Context, c Criteria) ([]Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if c.Limit > 0 {
		opts.SetLimit(int64(c.Limit))
	}
	if c.Offset > 0 {
		opts.SetSkip(int64(c.Offset))
	}

	cursor, err := s.coll.Find(ctx, mongoFilter(c), opts)
	if err != nil {
		return nil, fmt.Errorf("find audit events: %w", err)
	}

	events := make([]Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode audit events: %w", err)
	}
	return events, nil
}

func mongoFilter(c Criteria) bson.D {
	filter := bson.D{}
	if c.ReferenceType != "" {
		filter = append(filter, bson.E{Key: "reference_type", Value: c.ReferenceType})
	}
	if c.ReferenceID != "" {
		filter = append(filter, bson.E{Key: "reference_id", Value: c.ReferenceID})
	}
	if len(c.Actions) > 0 {
		filter = append(filter, bson.E{Key: "action", Value: bson.D{{Key: "$in", Value: c.Actions}}})
	}
	created := bson.D{}
	if !c.From.IsZero() {
		created = append(created, bson.E{Key: "$gte", Value: c.From})
	}
	if !c.To.IsZero() {
		created = append(created, bson.E{Key: "$lte", Value: c.To})
	}
	if len(created) > 0 {
		filter = append(filter, bson.E{Key: "created_at", Value: created})
	}
	return filter
}
