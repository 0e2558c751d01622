package models

import "time"

// Contractor is a sub-company working inside an organization. Its admin is
// the first (optional) review tier for updates on tasks the contractor works.
type Contractor struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"index;not null" json:"organization_id"`
	CompanyName    string    `gorm:"size:150;not null" json:"company_name"`
	AdminID        *uint     `gorm:"index" json:"admin_id"`
	ContactEmail   *string   `gorm:"size:150" json:"contact_email,omitempty"`
	ContactPhone   *string   `gorm:"size:20" json:"contact_phone,omitempty"`
	Status         string    `gorm:"type:enum('Active','Inactive');default:'Active'" json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"-"`
}
