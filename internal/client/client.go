// Package client is a typed HTTP client for the kanban API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yukikurage/kanban-api/internal/dto"
	"github.com/yukikurage/kanban-api/internal/models"
)

// TaskView selects which task listing a call targets.
type TaskView string

const (
	ViewBoard    TaskView = "board"
	ViewArchived TaskView = "archived"
	ViewDeleted  TaskView = "deleted"
)

// Session identifies the server and the caller. It is passed to every call
// so one Client can serve several users.
type Session struct {
	BaseURL string
	Token   string
}

// WithToken returns a copy of s authenticated with token.
func (s Session) WithToken(token string) Session {
	s.Token = token
	return s
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	StatusCode int
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.StatusCode, e.Message)
}

// Client performs API calls. The zero value is not usable; use New.
type Client struct {
	http *http.Client
}

// New returns a Client using httpClient, or a client with a 30s timeout
// when httpClient is nil.
func New(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{http: httpClient}
}

// CreateProjectRequest is the body of a project create call.
type CreateProjectRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description,omitempty"`
	MemberEmails []string `json:"member_emails,omitempty"`
}

// UpdateProjectRequest carries optional project changes.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreateTaskRequest is the body of a task create call.
type CreateTaskRequest struct {
	ProjectID   uint64            `json:"project_id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	DueDate     *time.Time        `json:"due_date,omitempty"`
	Status      models.TaskStatus `json:"status,omitempty"`
	Urgent      bool              `json:"urgent,omitempty"`
	AssignedTo  []uint64          `json:"assigned_to,omitempty"`
}

// UpdateTaskRequest carries optional task changes. ClearDueDate sends an
// explicit null for due_date and wins over DueDate.
type UpdateTaskRequest struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Status       *models.TaskStatus
	Urgent       *bool
	AssignedTo   *[]uint64
}

func (r UpdateTaskRequest) body() map[string]interface{} {
	body := map[string]interface{}{}
	if r.Title != nil {
		body["title"] = *r.Title
	}
	if r.Description != nil {
		body["description"] = *r.Description
	}
	switch {
	case r.ClearDueDate:
		body["due_date"] = nil
	case r.DueDate != nil:
		body["due_date"] = r.DueDate.Format(time.RFC3339)
	}
	if r.Status != nil {
		body["status"] = *r.Status
	}
	if r.Urgent != nil {
		body["urgent"] = *r.Urgent
	}
	if r.AssignedTo != nil {
		body["assigned_to"] = *r.AssignedTo
	}
	return body
}

func (c *Client) Register(ctx context.Context, s Session, name, email, password string) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, s, http.MethodPost, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, s Session, email, password string) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	err := c.do(ctx, s, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context, s Session) (*dto.UserDTO, error) {
	var out dto.UserDTO
	if err := c.do(ctx, s, http.MethodGet, "/api/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListProjects(ctx context.Context, s Session) ([]dto.ProjectDTO, error) {
	var out []dto.ProjectDTO
	if err := c.do(ctx, s, http.MethodGet, "/api/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateProject(ctx context.Context, s Session, req CreateProjectRequest) (*dto.ProjectDTO, error) {
	var out dto.ProjectDTO
	if err := c.do(ctx, s, http.MethodPost, "/api/projects", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetProject(ctx context.Context, s Session, id uint64) (*dto.ProjectDTO, error) {
	var out dto.ProjectDTO
	if err := c.do(ctx, s, http.MethodGet, "/api/projects/"+itoa(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProject(ctx context.Context, s Session, id uint64, req UpdateProjectRequest) (*dto.ProjectDTO, error) {
	var out dto.ProjectDTO
	if err := c.do(ctx, s, http.MethodPut, "/api/projects/"+itoa(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProject(ctx context.Context, s Session, id uint64) error {
	return c.do(ctx, s, http.MethodDelete, "/api/projects/"+itoa(id), nil, nil)
}

func (c *Client) ShareProject(ctx context.Context, s Session, id uint64, email string) (*dto.MembersResponse, error) {
	var out dto.MembersResponse
	path := "/api/projects/" + itoa(id) + "/share"
	if err := c.do(ctx, s, http.MethodPut, path, map[string]string{"email": email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UnshareProject(ctx context.Context, s Session, id, userID uint64) (*dto.MembersResponse, error) {
	var out dto.MembersResponse
	path := "/api/projects/" + itoa(id) + "/unshare"
	if err := c.do(ctx, s, http.MethodPut, path, map[string]uint64{"user_id": userID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListTasks(ctx context.Context, s Session, projectID uint64, view TaskView) ([]dto.TaskDTO, error) {
	path, err := viewPath(projectID, view)
	if err != nil {
		return nil, err
	}
	var out []dto.TaskDTO
	if err := c.do(ctx, s, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// PurgeTasks permanently deletes every task in the view and returns how
// many were removed.
func (c *Client) PurgeTasks(ctx context.Context, s Session, projectID uint64, view TaskView) (int, error) {
	path, err := viewPath(projectID, view)
	if err != nil {
		return 0, err
	}
	var out dto.PurgeResponse
	if err := c.do(ctx, s, http.MethodDelete, path, nil, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}

func (c *Client) CreateTask(ctx context.Context, s Session, req CreateTaskRequest) (*dto.TaskDTO, error) {
	var out dto.TaskDTO
	if err := c.do(ctx, s, http.MethodPost, "/api/tasks", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateTask(ctx context.Context, s Session, id uint64, req UpdateTaskRequest) (*dto.TaskDTO, error) {
	var out dto.TaskDTO
	if err := c.do(ctx, s, http.MethodPut, "/api/tasks/"+itoa(id), req.body(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ArchiveTask(ctx context.Context, s Session, id uint64) (*dto.TaskDTO, error) {
	return c.transition(ctx, s, id, "archive")
}

func (c *Client) SoftDeleteTask(ctx context.Context, s Session, id uint64) (*dto.TaskDTO, error) {
	return c.transition(ctx, s, id, "delete")
}

func (c *Client) RestoreTask(ctx context.Context, s Session, id uint64) (*dto.TaskDTO, error) {
	return c.transition(ctx, s, id, "restore")
}

func (c *Client) PermanentDeleteTask(ctx context.Context, s Session, id uint64) error {
	return c.do(ctx, s, http.MethodDelete, "/api/tasks/"+itoa(id), nil, nil)
}

func (c *Client) transition(ctx context.Context, s Session, id uint64, action string) (*dto.TaskDTO, error) {
	var out dto.TaskDTO
	if err := c.do(ctx, s, http.MethodPut, "/api/tasks/"+itoa(id)+"/"+action, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func viewPath(projectID uint64, view TaskView) (string, error) {
	switch view {
	case ViewBoard, "":
		return "/api/tasks/projects/" + itoa(projectID) + "/tasks", nil
	case ViewArchived:
		return "/api/tasks/archived/" + itoa(projectID), nil
	case ViewDeleted:
		return "/api/tasks/deleted/" + itoa(projectID), nil
	default:
		return "", fmt.Errorf("unknown task view %q", view)
	}
}

func (c *Client) do(ctx context.Context, s Session, method, path string, in, out interface{}) error {
	if s.BaseURL == "" {
		return fmt.Errorf("session has no base URL")
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(s.BaseURL, "/")+path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if json.Unmarshal(raw, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
