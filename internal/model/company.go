package model

import "time"

// Company is a business entity discovered for a query. Rows are owned by the
// user who ran the search and created fresh per job execution; repeated
// searches for overlapping queries intentionally produce new rows.
type Company struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	JobID       string    `json:"job_id"`
	ListID      string    `json:"list_id,omitempty"`
	Name        string    `json:"name"`
	Website     string    `json:"website,omitempty"`
	Industry    string    `json:"industry,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
