package models

import "time"

type Organization struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// JoinCode lets new workers self-register into the organization.
	JoinCode  string    `gorm:"size:12;uniqueIndex;not null" json:"join_code"`
	Name      string    `gorm:"size:150;not null" json:"name"`
	Address   *string   `gorm:"type:varchar(255);null" json:"address,omitempty"`
	Status    string    `gorm:"type:enum('Active','Inactive');default:'Active'" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
