package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/kanban-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTaskRepository is a MongoDB implementation of TaskRepository.
// Assignees are stored inline in assigned_to.
type MongoTaskRepository struct {
	c   *mongo.Collection
	seq *sequence
}

func (r *MongoTaskRepository) Create(ctx context.Context, task *models.Task) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	id, err := r.seq.next(ctx, CollectionTasks)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	task.AssigneeIDs = nonNil(task.AssigneeIDs)

	if _, err := r.c.InsertOne(ctx, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var task models.Task
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&task); err != nil {
		return nil, translateMongoError(err)
	}
	return &task, nil
}

func (r *MongoTaskRepository) ListByProject(ctx context.Context, projectID uint64, view TaskView) ([]models.Task, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var (
		cur *mongo.Cursor
		err error
	)
	switch view {
	case TaskViewBoard:
		// $sort puts missing values first, so undated tasks get an explicit
		// sort key to land after dated ones.
		pipeline := mongo.Pipeline{
			{{Key: "$match", Value: bson.M{"project_id": projectID, "is_deleted": false, "is_archived": false}}},
			{{Key: "$addFields", Value: bson.M{"_undated": bson.M{
				"$cond": bson.A{bson.M{"$ifNull": bson.A{"$due_date", false}}, 0, 1},
			}}}},
			{{Key: "$sort", Value: bson.D{
				{Key: "_undated", Value: 1},
				{Key: "due_date", Value: 1},
				{Key: "created_at", Value: -1},
				{Key: "_id", Value: -1},
			}}},
			{{Key: "$project", Value: bson.M{"_undated": 0}}},
		}
		cur, err = r.c.Aggregate(ctx, pipeline)
	case TaskViewArchived:
		cur, err = r.c.Find(ctx,
			bson.M{"project_id": projectID, "is_deleted": false, "is_archived": true},
			byRecentUpdate())
	case TaskViewDeleted:
		cur, err = r.c.Find(ctx,
			bson.M{"project_id": projectID, "is_deleted": true},
			byRecentUpdate())
	default:
		return nil, fmt.Errorf("unknown task view %q", view)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer cur.Close(ctx)

	tasks := []models.Task{}
	if err := cur.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %w", err)
	}
	return tasks, nil
}

func (r *MongoTaskRepository) Update(ctx context.Context, task *models.Task) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	task.UpdatedAt = time.Now().UTC()
	task.AssigneeIDs = nonNil(task.AssigneeIDs)

	res, err := r.c.ReplaceOne(ctx, bson.M{"_id": task.ID}, task)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) Delete(ctx context.Context, id uint64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTaskRepository) DeleteByProject(ctx context.Context, projectID uint64) (int64, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.c.DeleteMany(ctx, bson.M{"project_id": projectID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete project tasks: %w", err)
	}
	return res.DeletedCount, nil
}

func byRecentUpdate() *options.FindOptions {
	return options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "_id", Value: -1},
	})
}
