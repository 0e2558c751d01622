package models

import "time"

// Notification channels and categories used by the workflow dispatcher.
const (
	NotifChannelInApp   = "in_app"
	NotifChannelWebhook = "webhook"

	NotifCategoryReview     = "review"
	NotifCategoryCompletion = "completion"
)

type Notification struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	UserID          uint      `gorm:"index;not null" json:"user_id"`
	Title           string    `gorm:"size:150;not null" json:"title"`
	Body            string    `gorm:"type:text;not null" json:"body"`
	Category        string    `gorm:"size:30;index" json:"category"`
	RelatedEntityID *uint     `json:"related_entity_id,omitempty"`
	RelatedEntity   *string   `gorm:"size:30" json:"related_entity,omitempty"`
	Channel         string    `gorm:"size:20;default:'in_app'" json:"channel"`
	ActionLink      *string   `gorm:"size:255" json:"action_link,omitempty"`
	IsRead          bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt       time.Time `json:"created_at"`
}
