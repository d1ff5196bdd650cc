package model

import "time"

type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Type      string    `json:"type"` // application_submitted / proposal_resolved / project_status_changed
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
