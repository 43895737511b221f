package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/kanban-api/internal/handlers"
	"github.com/yukikurage/kanban-api/internal/middleware"
	"github.com/yukikurage/kanban-api/internal/repository"
	"github.com/yukikurage/kanban-api/internal/services"
	"go.uber.org/zap"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	Auth       *services.AuthService
	Projects   *services.ProjectService
	Tasks      *services.TaskService
	Log        *zap.Logger
	CORSOrigin string
}

// Setup builds the gin engine with every route registered.
func Setup(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(deps.Log),
		middleware.RequestLogger(deps.Log),
		middleware.CORS(deps.CORSOrigin),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	authHandler := handlers.NewAuthHandler(deps.Auth, deps.Log)
	projectHandler := handlers.NewProjectHandler(deps.Projects, deps.Log)
	taskHandler := handlers.NewTaskHandler(deps.Tasks, deps.Log)

	requireAuth := middleware.RequireAuth(deps.Auth, deps.Log)
	projectID := middleware.RequireIDParam("id", "project")
	taskID := middleware.RequireIDParam("id", "task")
	boardProjectID := middleware.RequireIDParam("projectId", "project")

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		auth.PUT("/profile", requireAuth, authHandler.UpdateProfile)
	}

	projects := api.Group("/projects", requireAuth)
	{
		projects.POST("", projectHandler.CreateProject)
		projects.GET("", projectHandler.ListProjects)
		projects.GET("/:id", projectID, projectHandler.GetProject)
		projects.PUT("/:id", projectID, projectHandler.UpdateProject)
		projects.DELETE("/:id", projectID, projectHandler.DeleteProject)
		projects.PUT("/:id/share", projectID, projectHandler.ShareProject)
		projects.PUT("/:id/unshare", projectID, projectHandler.UnshareProject)
	}

	tasks := api.Group("/tasks", requireAuth)
	{
		tasks.POST("", taskHandler.CreateTask)

		tasks.GET("/projects/:projectId/tasks", boardProjectID, taskHandler.ListTasks(repository.TaskViewBoard))
		tasks.DELETE("/projects/:projectId/tasks", boardProjectID, taskHandler.PurgeTasks(repository.TaskViewBoard))
		tasks.GET("/archived/:projectId", boardProjectID, taskHandler.ListTasks(repository.TaskViewArchived))
		tasks.DELETE("/archived/:projectId", boardProjectID, taskHandler.PurgeTasks(repository.TaskViewArchived))
		tasks.GET("/deleted/:projectId", boardProjectID, taskHandler.ListTasks(repository.TaskViewDeleted))
		tasks.DELETE("/deleted/:projectId", boardProjectID, taskHandler.PurgeTasks(repository.TaskViewDeleted))

		tasks.PUT("/:id", taskID, taskHandler.UpdateTask)
		tasks.PUT("/:id/archive", taskID, taskHandler.ArchiveTask)
		tasks.PUT("/:id/delete", taskID, taskHandler.SoftDeleteTask)
		tasks.PUT("/:id/restore", taskID, taskHandler.RestoreTask)
		tasks.DELETE("/:id", taskID, taskHandler.PermanentDeleteTask)
	}

	return router
}
