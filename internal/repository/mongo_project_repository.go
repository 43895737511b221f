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

// MongoProjectRepository is a MongoDB implementation of ProjectRepository.
// Members are stored inline in member_ids.
type MongoProjectRepository struct {
	c   *mongo.Collection
	seq *sequence
}

func (r *MongoProjectRepository) Create(ctx context.Context, project *models.Project) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	id, err := r.seq.next(ctx, CollectionProjects)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	project.ID = id
	project.CreatedAt = now
	project.UpdatedAt = now
	project.MemberIDs = nonNil(project.MemberIDs)

	if _, err := r.c.InsertOne(ctx, project); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *MongoProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var project models.Project
	if err := r.c.FindOne(ctx, bson.M{"_id": id}).Decode(&project); err != nil {
		return nil, translateMongoError(err)
	}
	return &project, nil
}

func (r *MongoProjectRepository) ListForUser(ctx context.Context, userID uint64) ([]models.Project, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"owner_id": userID},
		bson.M{"member_ids": userID},
	}}
	opts := options.Find().SetSort(bson.D{
		{Key: "updated_at", Value: -1},
		{Key: "_id", Value: -1},
	})

	cur, err := r.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer cur.Close(ctx)

	projects := []models.Project{}
	if err := cur.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("failed to decode projects: %w", err)
	}
	return projects, nil
}

func (r *MongoProjectRepository) Update(ctx context.Context, project *models.Project) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	project.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":        project.Name,
		"description": project.Description,
		"updated_at":  project.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if project.LastEditedByID != nil {
		set["last_edited_by"] = *project.LastEditedByID
	} else {
		update["$unset"] = bson.M{"last_edited_by": ""}
	}

	res, err := r.c.UpdateByID(ctx, project.ID, update)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProjectRepository) AddMember(ctx context.Context, projectID, userID uint64) error {
	return r.updateMembers(ctx, projectID, bson.M{
		"$addToSet": bson.M{"member_ids": userID},
		"$set":      bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *MongoProjectRepository) RemoveMember(ctx context.Context, projectID, userID uint64) error {
	return r.updateMembers(ctx, projectID, bson.M{
		"$pull": bson.M{"member_ids": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
}

func (r *MongoProjectRepository) Delete(ctx context.Context, id uint64) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoProjectRepository) updateMembers(ctx context.Context, projectID uint64, update bson.M) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	res, err := r.c.UpdateByID(ctx, projectID, update)
	if err != nil {
		return fmt.Errorf("failed to update project members: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
