package model

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "Pending"
	ApplicationAccepted ApplicationStatus = "Accepted"
	ApplicationRejected ApplicationStatus = "Rejected"
)

// Application is a freelancer's bid on a project. At most one proposal may be
// outstanding at a time: AwaitingApproval stays true from ProposedAt until the
// owning client resolves it.
type Application struct {
	ID               int               `json:"id"`
	ProjectID        int               `json:"project_id"`
	FreelancerID     int               `json:"freelancer_id"`
	Name             string            `json:"name"`
	Email            string            `json:"email"`
	BidBudget        string            `json:"bid_budget"`
	ProposedDeadline string            `json:"proposed_deadline"`
	Reason           string            `json:"reason"`
	Status           ApplicationStatus `json:"status"`
	ProposedStatus   ProjectStatus     `json:"proposed_status,omitempty"`
	AwaitingApproval bool              `json:"awaiting_approval"`
	ProposedAt       *time.Time        `json:"proposed_at,omitempty"`
	AppliedAt        time.Time         `json:"applied_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
