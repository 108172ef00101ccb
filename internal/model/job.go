// Package model defines the domain types shared across the job pipeline:
// jobs, companies, contacts, and the progress surface polled by clients.
package model

import "time"

// JobStatus is the lifecycle state of a search job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// SearchType selects the pipeline a job runs.
type SearchType string

const (
	// SearchTypeCompanies discovers companies only.
	SearchTypeCompanies SearchType = "companies"
	// SearchTypeContacts discovers companies and enriches contacts,
	// without email resolution.
	SearchTypeContacts SearchType = "contacts"
	// SearchTypeEmails runs the full pipeline including tiered email
	// resolution.
	SearchTypeEmails SearchType = "emails"
	// SearchTypeContactOnly enriches contacts for companies the user
	// already owns, skipping discovery.
	SearchTypeContactOnly SearchType = "contact_only"
)

// Valid reports whether t is a known search type.
func (t SearchType) Valid() bool {
	switch t {
	case SearchTypeCompanies, SearchTypeContacts, SearchTypeEmails, SearchTypeContactOnly:
		return true
	}
	return false
}

// JobSource records who enqueued a job. Cron-sourced jobs are exempt from
// billing.
type JobSource string

const (
	SourceFrontend     JobSource = "frontend"
	SourceProgrammatic JobSource = "programmatic"
	SourceCron         JobSource = "cron"
)

// Progress phase names shown to polling clients.
const (
	PhaseFindingCompanies  = "Finding companies"
	PhaseSavingCompanies   = "Saving companies"
	PhaseFindingContacts   = "Finding contacts"
	PhaseProcessingCredits = "Processing credits"
	PhaseCompleted         = "Completed"
)

// Progress is the client-visible progress snapshot of a running job.
type Progress struct {
	Phase     string `json:"phase"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Message   string `json:"message,omitempty"`
}

// JobResults is the denormalized summary stored with a completed job.
type JobResults struct {
	Companies    []Company `json:"companies,omitempty"`
	Contacts     []Contact `json:"contacts,omitempty"`
	CompanyCount int       `json:"company_count"`
	ContactCount int       `json:"contact_count"`
	EmailCount   int       `json:"email_count"`
}

// DefaultMaxRetries is the retry budget for a job that fails transiently.
const DefaultMaxRetries = 3

// Job is a durable unit of search work. Jobs survive process restarts: a
// worker that dies mid-job leaves it in processing until stuck-job recovery
// returns it to pending.
type Job struct {
	ID         string     `json:"id"`
	UserID     string     `json:"user_id"`
	Query      string     `json:"query"`
	SearchType SearchType `json:"search_type"`
	Source     JobSource  `json:"source"`
	Status     JobStatus  `json:"status"`
	Priority   int        `json:"priority"`

	Progress    Progress    `json:"progress"`
	Results     *JobResults `json:"results,omitempty"`
	ResultCount int         `json:"result_count"`

	RetryCount int    `json:"retry_count"`
	MaxRetries int    `json:"max_retries"`
	Error      string `json:"error,omitempty"`

	// Metadata carries caller-supplied execution options, e.g. the company
	// ID list for a contact-only job.
	Metadata map[string]any `json:"metadata,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Terminal reports whether the job has reached a final state.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
