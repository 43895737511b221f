package cli

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/kanban-api/internal/auth"
	"github.com/yukikurage/kanban-api/internal/policy"
	"github.com/yukikurage/kanban-api/internal/routes"
	"github.com/yukikurage/kanban-api/internal/services"
	"github.com/yukikurage/kanban-api/internal/testutil"
	"go.uber.org/zap"
)

// Cannot use t.Parallel() - commands share package level flag state.

func startServer(t *testing.T) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := testutil.NewStore(t)
	resolver := services.NewUserResolver(store.Users)
	log := zap.NewNop()

	srv := httptest.NewServer(routes.Setup(routes.Dependencies{
		Auth:     services.NewAuthService(store.Users, auth.NewTokenManager("test-secret", "kanban-test", time.Hour)),
		Projects: services.NewProjectService(store, resolver, log),
		Tasks: services.NewTaskService(store, resolver, services.TaskServiceConfig{
			PurgePolicy: policy.PurgeAny,
		}, log),
		Log:        log,
		CORSOrigin: "*",
	}))
	t.Cleanup(srv.Close)

	t.Setenv("KANBAN_URL", srv.URL)
	t.Setenv("KANBAN_TOKEN", "")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestCommandsRequireToken(t *testing.T) {
	startServer(t)

	_, err := run(t, "projects", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not logged in")

	_, err = run(t, "me")
	require.Error(t, err)
}

func TestBoardWorkflow(t *testing.T) {
	startServer(t)

	out, err := run(t, "register", "--name", "Alice", "--email", "alice@example.com", "--password", "password")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	require.NotEmpty(t, token)
	t.Setenv("KANBAN_TOKEN", token)

	out, err = run(t, "me")
	require.NoError(t, err)
	assert.Contains(t, out, "alice@example.com")

	out, err = run(t, "projects", "create", "Launch", "--description", "Q3 launch")
	require.NoError(t, err)
	assert.Equal(t, "Created project 1: Launch\n", out)

	out, err = run(t, "projects", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Launch")
	assert.Contains(t, out, "Alice")

	out, err = run(t, "tasks", "create", "1", "Write docs", "--due", "2030-01-02")
	require.NoError(t, err)
	assert.Equal(t, "Created task 1: Write docs\n", out)

	out, err = run(t, "tasks", "list", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Write docs")
	assert.Contains(t, out, "2030-01-02")
	assert.Contains(t, out, "planned")

	out, err = run(t, "tasks", "archive", "1")
	require.NoError(t, err)
	assert.Equal(t, "Archived task 1: Write docs\n", out)

	out, err = run(t, "tasks", "list", "1")
	require.NoError(t, err)
	assert.Equal(t, "No tasks found.\n", out)

	out, err = run(t, "tasks", "purge", "1", "--view", "archived")
	require.NoError(t, err)
	assert.Equal(t, "Purged 1 archived task(s)\n", out)

	_, err = run(t, "tasks", "archive", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid task ID")
}

func TestLoginPrintsToken(t *testing.T) {
	startServer(t)

	_, err := run(t, "register", "--name", "Bob", "--email", "bob@example.com", "--password", "secret")
	require.NoError(t, err)

	out, err := run(t, "login", "--email", "bob@example.com", "--password", "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	_, err = run(t, "login", "--email", "bob@example.com", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid credentials")
}

func TestParseDue(t *testing.T) {
	got, err := parseDue("2030-01-02")
	require.NoError(t, err)
	assert.Equal(t, 2030, got.Year())

	got, err = parseDue("2030-01-02T15:04:05Z")
	require.NoError(t, err)
	assert.Equal(t, 15, got.Hour())

	_, err = parseDue("next week")
	assert.Error(t, err)
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"1", " 2"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, ids)

	ids, err = parseIDs(nil)
	require.NoError(t, err)
	assert.Equal(t, []uint64{}, ids)

	_, err = parseIDs([]string{"x"})
	assert.Error(t, err)
}
