package models

import "time"

// Department owns tasks and carries at most one assigned supervisor, the
// middle review tier. A department without a supervisor skips that tier.
type Department struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProjectID    uint      `gorm:"index;not null" json:"project_id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	SupervisorID *uint     `gorm:"index" json:"supervisor_id"`
	Status       string    `gorm:"type:enum('Active','Inactive');default:'Active'" json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

func (d *Department) HasSupervisor() bool {
	return d.SupervisorID != nil
}
