package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/Rasheed240/ApexBuild-BE-sub002/models"
)

// ErrStatusChanged is returned by conditional writes when the stored status
// no longer matches what the caller read: a concurrent reviewer won the race.
var ErrStatusChanged = errors.New("stored status changed")

// UpdateContext is a TaskUpdate joined with its full ownership chain, loaded
// in one round trip so authorization runs against consistent reads.
type UpdateContext struct {
	Update     models.TaskUpdate
	Task       models.Task
	Department models.Department
	Project    models.Project
	Contractor *models.Contractor
}

// TaskContext is the same chain rooted at a task.
type TaskContext struct {
	Task       models.Task
	Department models.Department
	Project    models.Project
	Contractor *models.Contractor
}

func (tc *TaskContext) flags() Flags {
	return Flags{
		HasSupervisor: tc.Department.HasSupervisor(),
		HasAdmin:      tc.Project.HasAdminTier(),
	}
}

// PendingUpdate is a row of the pending-review listing with the joined
// display columns the client renders.
type PendingUpdate struct {
	models.TaskUpdate
	TaskTitle      string `json:"task_title"`
	TaskCode       string `json:"task_code"`
	DepartmentName string `json:"department_name"`
	ProjectName    string `json:"project_name"`
	SubmitterName  string `json:"submitter_name"`
}

// PendingScope describes what the requester may see. The clauses are ORed:
// an actor who both supervises departments and administers projects sees the
// union of the two tiers.
type PendingScope struct {
	OrgID uint

	// All grants organization-wide visibility of every update in a review
	// status (org admins and the platform override).
	All bool

	SupervisorDeptIDs []uint // UnderSupervisorReview within these departments
	AdminProjectIDs   []uint // UnderAdminReview within these projects
	ContractorIDs     []uint // Submitted updates for these contractors
}

func (s PendingScope) empty() bool {
	return !s.All && len(s.SupervisorDeptIDs) == 0 && len(s.AdminProjectIDs) == 0 && len(s.ContractorIDs) == 0
}

// Store is the persistence surface the workflow needs. Lookups return
// (nil, nil) when the entity does not exist; the service translates that into
// the NotFound kind.
type Store interface {
	GetUpdateWithContext(ctx context.Context, id uint) (*UpdateContext, error)
	GetTaskWithContext(ctx context.Context, id uint) (*TaskContext, error)
	GetUpdatesForTask(ctx context.Context, taskID uint) ([]models.TaskUpdate, error)
	GetSubtasks(ctx context.Context, parentID uint) ([]models.Task, error)
	GetPendingForReview(ctx context.Context, scope PendingScope, page, pageSize int) ([]PendingUpdate, int64, error)

	// SaveUpdateReview persists the review fields and new status guarded by
	// the status the caller read; returns ErrStatusChanged on a lost race.
	SaveUpdateReview(ctx context.Context, upd *models.TaskUpdate, expected models.UpdateStatus) error

	// SaveTaskProgress raises the task progress to the reported value if
	// higher and derives the status from the progress the row ends up with,
	// in one write, so concurrent approvals cannot regress either column.
	// Completed tasks are left untouched.
	SaveTaskProgress(ctx context.Context, task *models.Task) error

	// CompleteTask persists the completion guarded by the status the caller
	// read; returns ErrStatusChanged on a lost race.
	CompleteTask(ctx context.Context, task *models.Task, expected models.TaskStatus) error

	DepartmentIDsSupervisedBy(ctx context.Context, orgID, userID uint) ([]uint, error)
	ProjectIDsAdministeredBy(ctx context.Context, orgID, userID uint) ([]uint, error)
	ContractorIDsAdministeredBy(ctx context.Context, orgID, userID uint) ([]uint, error)
}

// Notification is a structured notify request emitted after a commit.
type Notification struct {
	UserID      uint
	Title       string
	Body        string
	Category    string
	RelatedID   uint
	RelatedType string
	Channel     string
	ActionLink  string
}

// Notifier delivers notifications best-effort. Implementations must not
// return delivery failures to the workflow; they log and move on.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
