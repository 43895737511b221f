package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/kanban-api/internal/errors"
	"github.com/yukikurage/kanban-api/internal/middleware"
	"github.com/yukikurage/kanban-api/internal/services"
	"go.uber.org/zap"
)

// ProjectHandler handles project-related requests
type ProjectHandler struct {
	projectService *services.ProjectService
	log            *zap.Logger
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectService *services.ProjectService, log *zap.Logger) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		log:            log,
	}
}

// CreateProject creates a project owned by the caller
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name         string   `json:"name"`
		Description  string   `json:"description"`
		MemberEmails []string `json:"member_emails"`
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		OwnerID:      userID,
		Name:         req.Name,
		Description:  req.Description,
		MemberEmails: req.MemberEmails,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, project)
}

// ListProjects lists projects the caller owns or belongs to
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	projects, err := h.projectService.ListProjects(c.Request.Context(), userID)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, projects)
}

// GetProject returns a single project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, projectID, ok := requireUserAndID(c, "id")
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(c.Request.Context(), userID, projectID)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// UpdateProject updates name and description
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	type UpdateProjectRequest struct {
		Name        *string `json:"name"`
		Description *string `json:"description"`
	}

	userID, projectID, ok := requireUserAndID(c, "id")
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), userID, projectID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, project)
}

// DeleteProject deletes a project and all of its tasks
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, projectID, ok := requireUserAndID(c, "id")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), userID, projectID); err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project and its tasks deleted",
	})
}

// ShareProject adds a member by email
func (h *ProjectHandler) ShareProject(c *gin.Context) {
	type ShareRequest struct {
		Email string `json:"email"`
	}

	userID, projectID, ok := requireUserAndID(c, "id")
	if !ok {
		return
	}

	var req ShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	members, err := h.projectService.ShareProject(c.Request.Context(), userID, projectID, req.Email)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

// UnshareProject removes a member by user id
func (h *ProjectHandler) UnshareProject(c *gin.Context) {
	type UnshareRequest struct {
		UserID uint64 `json:"user_id" binding:"required"`
	}

	userID, projectID, ok := requireUserAndID(c, "id")
	if !ok {
		return
	}

	var req UnshareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	members, err := h.projectService.UnshareProject(c.Request.Context(), userID, projectID, req.UserID)
	if err != nil {
		apierrors.Respond(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, members)
}

func requireUser(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}

func requireUserAndID(c *gin.Context, param string) (uint64, uint64, bool) {
	userID, ok := requireUser(c)
	if !ok {
		return 0, 0, false
	}
	id, exists := middleware.GetIDParam(c, param)
	if !exists {
		apierrors.BadRequest(c, "Invalid ID")
		return 0, 0, false
	}
	return userID, id, true
}
