package models

import "time"

// Job application statuses.
const (
	StatusPending   = "pending"
	StatusInterview = "interview"
	StatusDeclined  = "declined"
)

// ValidStatus reports whether s is one of the allowed job statuses.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInterview || s == StatusDeclined
}

type Job struct {
	ID        int       `json:"id"`
	Company   string    `json:"company"`
	Position  string    `json:"position"`
	Status    string    `json:"status"`
	CreatedBy int       `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
