package models

import "time"

// Project is the terminal authorization tier: its admin and owner review
// task updates after (or instead of) the department supervisor.
type Project struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	OrganizationID uint       `gorm:"index;not null" json:"organization_id"`
	Name           string     `gorm:"size:150;not null" json:"name"`
	Code           string     `gorm:"size:30;uniqueIndex;not null" json:"code"`
	Description    *string    `gorm:"type:text" json:"description,omitempty"`
	AdminID        *uint      `gorm:"index" json:"admin_id"`
	OwnerID        *uint      `gorm:"index" json:"owner_id"`
	Location       *string    `gorm:"type:varchar(255)" json:"location,omitempty"`
	StartDate      *time.Time `json:"start_date,omitempty"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Status         string     `gorm:"type:enum('Planning','Active','OnHold','Closed');default:'Planning'" json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"-"`
}

// HasAdminTier reports whether anyone is configured to perform admin review.
func (p *Project) HasAdminTier() bool {
	return p.AdminID != nil || p.OwnerID != nil
}
