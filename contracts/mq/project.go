package mq

import "time"

// Routing keys on the talentlink.events exchange.
const (
	RoutingProjectCreated       = "project.created"
	RoutingProjectUpdated       = "project.updated"
	RoutingProjectDeleted       = "project.deleted"
	RoutingProjectStatusChanged = "project.status_changed"
)

type ProjectCreatedPayload struct {
	ProjectID int       `json:"project_id"`
	ClientID  int       `json:"client_id"`
	Title     string    `json:"title"`
	Skills    string    `json:"skills"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectUpdatedPayload struct {
	ProjectID int       `json:"project_id"`
	ClientID  int       `json:"client_id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProjectDeletedPayload struct {
	ProjectID int    `json:"project_id"`
	ClientID  int    `json:"client_id"`
	Title     string `json:"title"`
}

// ProjectStatusChangedPayload is the change-feed entry dashboards consume
// instead of re-reading the whole store on a timer.
type ProjectStatusChangedPayload struct {
	ProjectID    int       `json:"project_id"`
	ClientID     int       `json:"client_id"`
	FreelancerID int       `json:"freelancer_id,omitempty"`
	Title        string    `json:"title"`
	OldStatus    string    `json:"old_status"`
	NewStatus    string    `json:"new_status"`
	Progress     int       `json:"progress"`
	ChangedAt    time.Time `json:"changed_at"`
}
