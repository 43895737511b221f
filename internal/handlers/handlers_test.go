package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/kanban-api/internal/auth"
	"github.com/yukikurage/kanban-api/internal/constants"
	"github.com/yukikurage/kanban-api/internal/dto"
	"github.com/yukikurage/kanban-api/internal/middleware"
	"github.com/yukikurage/kanban-api/internal/models"
	"github.com/yukikurage/kanban-api/internal/policy"
	"github.com/yukikurage/kanban-api/internal/repository"
	"github.com/yukikurage/kanban-api/internal/services"
	"github.com/yukikurage/kanban-api/internal/testutil"
	"go.uber.org/zap"
)

// HandlerTestSuite wires real services over SQLite and drives the handlers
// through a gin router with the user preset in the context.
type HandlerTestSuite struct {
	suite.Suite
	store    repository.Store
	auth     *AuthHandler
	projects *ProjectHandler
	tasks    *TaskHandler
	owner    *models.User
	member   *models.User
	project  *models.Project
}

func (s *HandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	s.store = testutil.NewStore(s.T())
	resolver := services.NewUserResolver(s.store.Users)
	log := zap.NewNop()
	tokens := auth.NewTokenManager("test-secret", "kanban-test", time.Hour)

	s.auth = NewAuthHandler(services.NewAuthService(s.store.Users, tokens), log)
	s.projects = NewProjectHandler(services.NewProjectService(s.store, resolver, log), log)
	s.tasks = NewTaskHandler(services.NewTaskService(s.store, resolver, services.TaskServiceConfig{
		PurgePolicy: policy.PurgeAny,
	}, log), log)

	s.owner = testutil.CreateUser(s.T(), s.store.Users, "Owner", "owner@example.com")
	s.member = testutil.CreateUser(s.T(), s.store.Users, "Member", "member@example.com")
	s.project = testutil.CreateProject(s.T(), s.store.Projects, "Launch", s.owner.ID, s.member.ID)
}

// router returns an engine whose requests run as userID.
func (s *HandlerTestSuite) router(userID uint64) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if userID != 0 {
			user, err := s.store.Users.FindByID(c.Request.Context(), userID)
			s.Require().NoError(err)
			c.Set(constants.ContextKeyUserID, userID)
			c.Set(constants.ContextKeyUser, user)
		}
		c.Next()
	})

	id := middleware.RequireIDParam("id", "task")
	projectID := middleware.RequireIDParam("projectId", "project")

	r.POST("/register", s.auth.Register)
	r.POST("/login", s.auth.Login)
	r.GET("/me", s.auth.GetCurrentUser)
	r.PUT("/profile", s.auth.UpdateProfile)
	r.POST("/projects", s.projects.CreateProject)
	r.GET("/projects/:id", middleware.RequireIDParam("id", "project"), s.projects.GetProject)
	r.POST("/tasks", s.tasks.CreateTask)
	r.PUT("/tasks/:id", id, s.tasks.UpdateTask)
	r.PUT("/tasks/:id/archive", id, s.tasks.ArchiveTask)
	r.PUT("/tasks/:id/restore", id, s.tasks.RestoreTask)
	r.DELETE("/tasks/:id", id, s.tasks.PermanentDeleteTask)
	r.GET("/board/:projectId", projectID, s.tasks.ListTasks(repository.TaskViewBoard))
	r.DELETE("/board/:projectId", projectID, s.tasks.PurgeTasks(repository.TaskViewBoard))
	return r
}

func (s *HandlerTestSuite) do(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func (s *HandlerTestSuite) decode(w *httptest.ResponseRecorder, v interface{}) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func (s *HandlerTestSuite) TestRegisterAndLogin() {
	r := s.router(0)

	w := s.do(r, http.MethodPost, "/register", map[string]string{
		"name": "Carol", "email": "carol@example.com", "password": "secret",
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var registered dto.AuthResponse
	s.decode(w, &registered)
	s.Equal("carol@example.com", registered.User.Email)
	s.NotEmpty(registered.Token)

	w = s.do(r, http.MethodPost, "/register", map[string]string{"name": "Carol"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(r, http.MethodPost, "/login", map[string]string{"email": "carol@example.com", "password": "secret"})
	s.Equal(http.StatusOK, w.Code)

	w = s.do(r, http.MethodPost, "/login", map[string]string{"email": "carol@example.com", "password": "nope"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.JSONEq(`{"message":"invalid credentials"}`, w.Body.String())
}

func (s *HandlerTestSuite) TestMeAndProfile() {
	w := s.do(s.router(0), http.MethodGet, "/me", nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	r := s.router(s.owner.ID)
	w = s.do(r, http.MethodGet, "/me", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var me dto.UserDTO
	s.decode(w, &me)
	s.Equal("Owner", me.Name)

	w = s.do(r, http.MethodPut, "/profile", map[string]string{"email": "member@example.com"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(r, http.MethodPut, "/profile", map[string]string{"name": "Boss"})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &me)
	s.Equal("Boss", me.Name)
}

func (s *HandlerTestSuite) TestCreateProjectUnknownMember() {
	w := s.do(s.router(s.owner.ID), http.MethodPost, "/projects", map[string]interface{}{
		"name":          "New",
		"member_emails": []string{"member@example.com", "ghost@example.com"},
	})
	s.Require().Equal(http.StatusBadRequest, w.Code)

	var body struct {
		Message string `json:"message"`
		Details struct {
			Emails []string `json:"emails"`
		} `json:"details"`
	}
	s.decode(w, &body)
	s.Contains(body.Message, "ghost@example.com")
	s.Equal([]string{"ghost@example.com"}, body.Details.Emails)
}

func (s *HandlerTestSuite) TestGetProjectErrors() {
	stranger := testutil.CreateUser(s.T(), s.store.Users, "Stranger", "stranger@example.com")

	w := s.do(s.router(stranger.ID), http.MethodGet, "/projects/999", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.do(s.router(stranger.ID), http.MethodGet, "/projects/abc", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	path := "/projects/" + uintString(s.project.ID)
	w = s.do(s.router(stranger.ID), http.MethodGet, path, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(s.router(s.member.ID), http.MethodGet, path, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var project dto.ProjectDTO
	s.decode(w, &project)
	s.Equal("Owner", project.Owner.Name)
	s.Len(project.Members, 1)
}

func (s *HandlerTestSuite) TestTaskLifecycle() {
	r := s.router(s.member.ID)

	w := s.do(r, http.MethodPost, "/tasks", map[string]interface{}{
		"project_id":  s.project.ID,
		"title":       "Build",
		"status":      "inProgress",
		"due_date":    "2030-05-01",
		"assigned_to": []uint64{s.owner.ID},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var task dto.TaskDTO
	s.decode(w, &task)
	s.Require().NotNil(task.DueDate)
	s.Equal(2030, task.DueDate.Year())
	s.Equal("owner@example.com", task.AssignedTo[0].Email)

	taskPath := "/tasks/" + uintString(task.ID)

	w = s.do(r, http.MethodPut, taskPath, map[string]interface{}{"due_date": nil, "urgent": true})
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &task)
	s.Nil(task.DueDate)
	s.True(task.Urgent)
	s.Equal("Build", task.Title)

	w = s.do(r, http.MethodPut, taskPath, map[string]interface{}{"due_date": "tomorrow"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do(r, http.MethodPut, taskPath+"/archive", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &task)
	s.True(task.IsArchived)
	s.Equal(models.TaskStatusInProgress, *task.PreviousStatus)

	w = s.do(r, http.MethodGet, "/board/"+uintString(s.project.ID), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var board []dto.TaskDTO
	s.decode(w, &board)
	s.Empty(board)

	w = s.do(r, http.MethodPut, taskPath+"/restore", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.decode(w, &task)
	s.Equal(models.TaskStatusInProgress, task.Status)
	s.Nil(task.PreviousStatus)

	w = s.do(r, http.MethodDelete, taskPath, nil)
	s.Equal(http.StatusOK, w.Code)
	w = s.do(r, http.MethodDelete, taskPath, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerTestSuite) TestPurgeBoard() {
	for _, title := range []string{"a", "b", "c"} {
		testutil.CreateTask(s.T(), s.store.Tasks, s.project.ID, s.owner.ID, title)
	}
	path := "/board/" + uintString(s.project.ID)

	w := s.do(s.router(s.member.ID), http.MethodDelete, path, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(s.router(s.owner.ID), http.MethodDelete, path, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"deleted":3}`, w.Body.String())
}

func TestHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func uintString(id uint64) string {
	return strconv.FormatUint(id, 10)
}
