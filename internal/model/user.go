package model

import "time"

// User is a registered client or freelancer together with the profile fields
// the dashboards edit. Rate and availability stay free text, like budgets.
type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         string    `json:"role"` // client / freelancer
	ContactNo    string    `json:"contact_no,omitempty"`
	BusinessName string    `json:"business_name,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	Skills       string    `json:"skills,omitempty"`
	HourlyRate   string    `json:"hourly_rate,omitempty"`
	Availability string    `json:"availability,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
