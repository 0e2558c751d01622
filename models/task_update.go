package models

import (
	"encoding/json"
	"time"
)

type UpdateStatus string

const (
	UpdateSubmitted             UpdateStatus = "Submitted"
	UpdateUnderSupervisorReview UpdateStatus = "UnderSupervisorReview"
	UpdateSupervisorApproved    UpdateStatus = "SupervisorApproved"
	UpdateSupervisorRejected    UpdateStatus = "SupervisorRejected"
	UpdateUnderAdminReview      UpdateStatus = "UnderAdminReview"
	UpdateAdminApproved         UpdateStatus = "AdminApproved"
	UpdateAdminRejected         UpdateStatus = "AdminRejected"
	UpdateContractorRejected    UpdateStatus = "ContractorRejected"
)

// Terminal reports whether no further review tier may process the update.
// SupervisorApproved is terminal only when the owning project has no admin
// tier; that context lives outside the row, so the workflow package decides
// it. The statuses below are unconditionally terminal.
func (s UpdateStatus) Terminal() bool {
	switch s {
	case UpdateSupervisorRejected, UpdateAdminApproved, UpdateAdminRejected, UpdateContractorRejected:
		return true
	}
	return false
}

// TaskUpdate is a progress report submitted against a task. The report body
// is immutable once submitted; only the per-tier review fields and the status
// change afterwards. Rows are never hard-deleted.
type TaskUpdate struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	TaskID      uint         `gorm:"index;not null" json:"task_id"`
	SubmitterID uint         `gorm:"index;not null" json:"submitter_id"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Progress    int          `gorm:"not null" json:"progress"`
	MediaRefs   *string      `gorm:"type:text" json:"-"`
	Status      UpdateStatus `gorm:"type:varchar(32);index;not null;default:'Submitted'" json:"status"`

	ContractorReviewerID *uint      `json:"contractor_reviewer_id,omitempty"`
	ContractorApproved   *bool      `json:"contractor_approved,omitempty"`
	ContractorFeedback   *string    `gorm:"type:text" json:"contractor_feedback,omitempty"`
	ContractorReviewedAt *time.Time `json:"contractor_reviewed_at,omitempty"`

	SupervisorReviewerID *uint      `json:"supervisor_reviewer_id,omitempty"`
	SupervisorApproved   *bool      `json:"supervisor_approved,omitempty"`
	SupervisorFeedback   *string    `gorm:"type:text" json:"supervisor_feedback,omitempty"`
	SupervisorReviewedAt *time.Time `json:"supervisor_reviewed_at,omitempty"`

	AdminReviewerID *uint      `json:"admin_reviewer_id,omitempty"`
	AdminApproved   *bool      `json:"admin_approved,omitempty"`
	AdminFeedback   *string    `gorm:"type:text" json:"admin_feedback,omitempty"`
	AdminReviewedAt *time.Time `json:"admin_reviewed_at,omitempty"`

	Deleted   bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

func (TaskUpdate) TableName() string {
	return "task_updates"
}

// Media decodes the stored media reference list. An empty or unreadable
// column yields an empty slice.
func (u *TaskUpdate) Media() []string {
	if u.MediaRefs == nil || *u.MediaRefs == "" {
		return []string{}
	}
	var refs []string
	if err := json.Unmarshal([]byte(*u.MediaRefs), &refs); err != nil {
		return []string{}
	}
	return refs
}

// SetMedia encodes refs into the media column.
func (u *TaskUpdate) SetMedia(refs []string) {
	if len(refs) == 0 {
		u.MediaRefs = nil
		return
	}
	b, err := json.Marshal(refs)
	if err != nil {
		return
	}
	s := string(b)
	u.MediaRefs = &s
}
