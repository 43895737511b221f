package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/kanban-api/internal/models"
	"github.com/yukikurage/kanban-api/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newMongoStore connects to MONGO_TEST_URI and returns a store over a
// throwaway database. The test is skipped when the variable is unset.
func newMongoStore(t *testing.T) repository.Store {
	t.Helper()

	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database(fmt.Sprintf("kanban_test_%d", time.Now().UnixNano()))
	_, err = db.Collection(repository.CollectionUsers).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	return repository.NewMongoStore(db)
}

func TestMongoStore_UsersAndProjects(t *testing.T) {
	store := newMongoStore(t)
	ctx := context.Background()

	owner := &models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "x"}
	member := &models.User{Name: "Member", Email: "member@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users.Create(ctx, owner))
	require.NoError(t, store.Users.Create(ctx, member))
	assert.NotZero(t, owner.ID)
	assert.NotEqual(t, owner.ID, member.ID)

	dup := &models.User{Name: "Dup", Email: "owner@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, store.Users.Create(ctx, dup), repository.ErrDuplicateEmail)

	_, err := store.Users.FindByID(ctx, 9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	project := &models.Project{Name: "Launch", OwnerID: owner.ID}
	require.NoError(t, store.Projects.Create(ctx, project))
	require.NoError(t, store.Projects.AddMember(ctx, project.ID, member.ID))

	listed, err := store.Projects.ListForUser(ctx, member.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, []uint64{member.ID}, listed[0].MemberIDs)

	require.NoError(t, store.Projects.RemoveMember(ctx, project.ID, member.ID))
	found, err := store.Projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, found.MemberIDs)

	require.NoError(t, store.Projects.Delete(ctx, project.ID))
	assert.ErrorIs(t, store.Projects.Delete(ctx, project.ID), repository.ErrNotFound)
}

func TestMongoStore_TaskViews(t *testing.T) {
	store := newMongoStore(t)
	ctx := context.Background()

	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Millisecond)
	newTask := func(title string, dueDate *time.Time) *models.Task {
		task := &models.Task{ProjectID: 1, Title: title, Status: models.TaskStatusPlanned, CreatedByID: 1, DueDate: dueDate}
		require.NoError(t, store.Tasks.Create(ctx, task))
		return task
	}

	undated := newTask("undated", nil)
	dated := newTask("dated", &due)
	trashed := newTask("trashed", nil)
	trashed.IsDeleted = true
	require.NoError(t, store.Tasks.Update(ctx, trashed))

	board, err := store.Tasks.ListByProject(ctx, 1, repository.TaskViewBoard)
	require.NoError(t, err)
	require.Len(t, board, 2)
	assert.Equal(t, dated.ID, board[0].ID)
	assert.Equal(t, undated.ID, board[1].ID)

	deleted, err := store.Tasks.ListByProject(ctx, 1, repository.TaskViewDeleted)
	require.NoError(t, err)
	require.Len(t, deleted, 1)
	assert.Equal(t, trashed.ID, deleted[0].ID)

	removed, err := store.Tasks.DeleteByProject(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
}
