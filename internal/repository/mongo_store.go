package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names used by the document store
const (
	CollectionUsers    = "users"
	CollectionProjects = "projects"
	CollectionTasks    = "tasks"
	CollectionCounters = "counters"
)

// mongoOpTimeout bounds every single document store call.
const mongoOpTimeout = 5 * time.Second

// NewMongoStore builds the repositories backed by a MongoDB database.
func NewMongoStore(db *mongo.Database) Store {
	seq := &sequence{c: db.Collection(CollectionCounters)}
	return Store{
		Users:    &MongoUserRepository{c: db.Collection(CollectionUsers), seq: seq},
		Projects: &MongoProjectRepository{c: db.Collection(CollectionProjects), seq: seq},
		Tasks:    &MongoTaskRepository{c: db.Collection(CollectionTasks), seq: seq},
	}
}

// sequence hands out numeric ids from the counters collection so both
// backends expose the same uint64 identifiers.
type sequence struct {
	c *mongo.Collection
}

func (s *sequence) next(ctx context.Context, name string) (uint64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s id: %w", name, err)
	}
	return uint64(doc.Seq), nil
}

func translateMongoError(err error) error {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicateEmail
	default:
		return err
	}
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, mongoOpTimeout)
}

// nonNil keeps array fields as arrays so $addToSet and $pull keep working.
func nonNil(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}
