package models

import "time"

// Platform roles. Relationship-based authority (supervisor of a department,
// admin/owner of a project, admin of a contractor) is resolved from the
// owning records, not from the role claim alone.
const (
	RoleWorker          = "worker"
	RoleContractorAdmin = "contractor_admin"
	RoleSupervisor      = "supervisor"
	RoleProjectAdmin    = "project_admin"
	RoleOrgAdmin        = "org_admin"
	RoleSuperAdmin      = "super_admin" // cross-organization override
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	OrganizationID uint      `gorm:"index;not null" json:"organization_id"`
	Name           string    `gorm:"size:100;not null" json:"name"`
	Email          string    `gorm:"size:150;uniqueIndex;not null" json:"email"`
	Phone          string    `gorm:"size:20" json:"phone"`
	Password       string    `gorm:"size:255;not null" json:"-"`
	Role           string    `gorm:"type:enum('worker','contractor_admin','supervisor','project_admin','org_admin','super_admin');default:'worker'" json:"role"`
	Status         string    `gorm:"type:enum('Active','Inactive','Suspend');default:'Active'" json:"status"`
	Profile        *string   `gorm:"type:varchar(255);null" json:"profile,omitempty"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// IsPlatformOverride reports whether the role bypasses normal ownership checks.
func IsPlatformOverride(role string) bool {
	return role == RoleSuperAdmin
}
