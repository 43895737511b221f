// Package policy decides who may read or change projects and tasks. The
// functions are pure; callers load the project first so a missing project
// is reported before a denied one.
package policy

import (
	"fmt"
	"strings"

	"github.com/yukikurage/kanban-api/internal/models"
)

// IsOwner reports whether userID owns the project.
func IsOwner(userID uint64, project *models.Project) bool {
	return project != nil && project.OwnerID == userID
}

// IsMember reports whether userID owns the project or is one of its members.
func IsMember(userID uint64, project *models.Project) bool {
	if project == nil {
		return false
	}
	return IsOwner(userID, project) || project.HasMember(userID)
}

// CanReadProject covers the project itself and every task view under it.
func CanReadProject(userID uint64, project *models.Project) bool {
	return IsMember(userID, project)
}

// CanManageProject covers update, delete, share, unshare and bulk purge.
func CanManageProject(userID uint64, project *models.Project) bool {
	return IsOwner(userID, project)
}

// CanEditTasks covers create, update, archive, soft delete and restore.
func CanEditTasks(userID uint64, project *models.Project) bool {
	return IsMember(userID, project)
}

// PurgePolicy selects who may permanently delete a single task.
type PurgePolicy string

const (
	PurgeAny    PurgePolicy = "any"
	PurgeMember PurgePolicy = "member"
	PurgeOwner  PurgePolicy = "owner"
)

func ParsePurgePolicy(s string) (PurgePolicy, error) {
	switch p := PurgePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PurgeAny, PurgeMember, PurgeOwner:
		return p, nil
	case "":
		return PurgeAny, nil
	default:
		return "", fmt.Errorf("unknown permanent delete policy %q", s)
	}
}

// RequiresProject reports whether the policy needs the task's project to
// decide. Under PurgeAny a missing task is not an error.
func (p PurgePolicy) RequiresProject() bool {
	return p == PurgeMember || p == PurgeOwner
}

// CanPurge reports whether userID may permanently delete a task of project.
func (p PurgePolicy) CanPurge(userID uint64, project *models.Project) bool {
	switch p {
	case PurgeMember:
		return IsMember(userID, project)
	case PurgeOwner:
		return IsOwner(userID, project)
	default:
		return true
	}
}
