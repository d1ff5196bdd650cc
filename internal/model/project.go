package model

import "time"

type ProjectStatus string

const (
	StatusOpen       ProjectStatus = "Open"
	StatusAcquired   ProjectStatus = "Acquired"
	StatusInProgress ProjectStatus = "In Progress"
	StatusCompleted  ProjectStatus = "Completed"
)

// Project is a unit of work posted by a client. FreelancerID is nil exactly
// while the project is Open; StartDate is set once a freelancer attaches and
// EndDate only on completion. Version backs the optimistic write check.
type Project struct {
	ID           int           `json:"id"`
	ClientID     int           `json:"client_id"`
	FreelancerID *int          `json:"freelancer_id,omitempty"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Budget       string        `json:"budget"`
	Duration     string        `json:"duration"`
	Skills       string        `json:"skills"`
	Status       ProjectStatus `json:"status"`
	Progress     int           `json:"progress"`
	StartDate    *time.Time    `json:"start_date,omitempty"`
	EndDate      *time.Time    `json:"end_date,omitempty"`
	Version      int           `json:"version"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
