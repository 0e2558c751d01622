package models

import "time"

type TaskStatus string

const (
	TaskPending    TaskStatus = "Pending"
	TaskInProgress TaskStatus = "InProgress"
	// TaskApproved means ready for completion: an approved update carried the
	// task to 100% progress but nobody has marked it complete yet.
	TaskApproved  TaskStatus = "Approved"
	TaskCompleted TaskStatus = "Completed"
	TaskCancelled TaskStatus = "Cancelled"
)

// Task is a unit of work owned by exactly one department. Tasks nest one
// level deep: a task with a ParentTaskID is a subtask and cannot itself have
// subtasks. Tasks are soft-deleted, never removed.
type Task struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	DepartmentID uint       `gorm:"index;not null" json:"department_id"`
	ContractorID *uint      `gorm:"index" json:"contractor_id,omitempty"`
	ParentTaskID *uint      `gorm:"index" json:"parent_task_id,omitempty"`
	Title        string     `gorm:"size:150;not null" json:"title"`
	Code         string     `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Description  *string    `gorm:"type:text" json:"description,omitempty"`
	Status       TaskStatus `gorm:"type:enum('Pending','InProgress','Approved','Completed','Cancelled');default:'Pending'" json:"status"`
	Progress     int        `gorm:"not null;default:0" json:"progress"`
	AssigneeID   *uint      `gorm:"index" json:"assignee_id,omitempty"`
	StartDate    *time.Time `json:"start_date,omitempty"`
	DueDate      *time.Time `json:"due_date,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Deleted      bool       `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
