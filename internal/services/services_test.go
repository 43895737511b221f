package services

import (
	"testing"
	"time"

	"github.com/yukikurage/kanban-api/internal/auth"
	"github.com/yukikurage/kanban-api/internal/policy"
	"github.com/yukikurage/kanban-api/internal/repository"
	"github.com/yukikurage/kanban-api/internal/testutil"
	"go.uber.org/zap"
)

type testServices struct {
	store    repository.Store
	auth     *AuthService
	projects *ProjectService
	tasks    *TaskService
}

func newTestServices(t *testing.T, purge policy.PurgePolicy) testServices {
	t.Helper()

	store := testutil.NewStore(t)
	resolver := NewUserResolver(store.Users)
	log := zap.NewNop()

	return testServices{
		store:    store,
		auth:     NewAuthService(store.Users, auth.NewTokenManager("test-secret", "kanban-test", time.Hour)),
		projects: NewProjectService(store, resolver, log),
		tasks: NewTaskService(store, resolver, TaskServiceConfig{
			PurgePolicy:      purge,
			PurgeConcurrency: 4,
		}, log),
	}
}
