package mq

import "time"

const (
	RoutingApplicationSubmitted = "application.submitted"
	RoutingApplicationDecided   = "application.decided"
	RoutingProposalSubmitted    = "proposal.submitted"
	RoutingProposalResolved     = "proposal.resolved"
)

type ApplicationSubmittedPayload struct {
	ApplicationID int       `json:"application_id"`
	ProjectID     int       `json:"project_id"`
	ClientID      int       `json:"client_id"`
	FreelancerID  int       `json:"freelancer_id"`
	ProjectTitle  string    `json:"project_title"`
	ApplicantName string    `json:"applicant_name"`
	AppliedAt     time.Time `json:"applied_at"`
}

type ApplicationDecidedPayload struct {
	ApplicationID int    `json:"application_id"`
	ProjectID     int    `json:"project_id"`
	FreelancerID  int    `json:"freelancer_id"`
	ProjectTitle  string `json:"project_title"`
	Status        string `json:"status"` // Accepted / Rejected
}

type ProposalSubmittedPayload struct {
	ApplicationID  int       `json:"application_id"`
	ProjectID      int       `json:"project_id"`
	ClientID       int       `json:"client_id"`
	FreelancerID   int       `json:"freelancer_id"`
	ProjectTitle   string    `json:"project_title"`
	ProposedStatus string    `json:"proposed_status"`
	ProposedAt     time.Time `json:"proposed_at"`
}

type ProposalResolvedPayload struct {
	ApplicationID  int       `json:"application_id"`
	ProjectID      int       `json:"project_id"`
	FreelancerID   int       `json:"freelancer_id"`
	ProjectTitle   string    `json:"project_title"`
	ProposedStatus string    `json:"proposed_status"`
	Approved       bool      `json:"approved"`
	ResolvedAt     time.Time `json:"resolved_at"`
}
