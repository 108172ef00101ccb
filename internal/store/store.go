// Package store defines the persistence collaborator for jobs, companies,
// contacts, and credits, with SQLite and Postgres implementations.
package store

import (
	"context"
	"time"

	"github.com/sells-group/prospector/internal/model"
)

// Store is the persistence interface consumed by the orchestration layer.
// Implementations must provide per-record atomic upsert semantics; the
// orchestration layer does not lock, it relies on one job touching a given
// contact at a time by construction.
type Store interface {
	// Jobs
	CreateJob(ctx context.Context, job *model.Job) error
	GetJob(ctx context.Context, jobID string) (*model.Job, error)
	ListJobs(ctx context.Context, userID string, limit int) ([]model.Job, error)

	// ClaimJob transitions a pending job to processing, stamping startedAt.
	// The claim is a conditional update on status, so a second concurrent
	// claimer observes claimed=false rather than double-processing.
	ClaimJob(ctx context.Context, jobID string) (job *model.Job, claimed bool, err error)

	UpdateJobProgress(ctx context.Context, jobID string, p model.Progress) error
	CompleteJob(ctx context.Context, jobID string, results *model.JobResults, resultCount int) error
	FailJob(ctx context.Context, jobID string, errMsg string) error

	// RequeueJob returns a job to pending and increments its retry count.
	RequeueJob(ctx context.Context, jobID string, errMsg string) error

	// CancelPendingJob marks a still-pending job failed with the given reason.
	// Returns false when the job was no longer pending.
	CancelPendingJob(ctx context.Context, jobID string, reason string) (bool, error)

	// NextPendingJob returns the highest-priority pending job, oldest first
	// within a priority, or nil when the queue is empty.
	NextPendingJob(ctx context.Context) (*model.Job, error)

	// ResetStuckJobs returns any job processing for longer than olderThan to
	// pending. This is the crash-recovery path for workers that died without
	// running their own error handler.
	ResetStuckJobs(ctx context.Context, olderThan time.Duration) (int, error)

	DeleteOldJobs(ctx context.Context, cutoff time.Time) (int, error)
	ListFailedJobs(ctx context.Context) ([]model.Job, error)

	// Companies
	CreateCompany(ctx context.Context, c *model.Company) error

	// CreateCompanies persists a batch of discovered companies in one shot.
	// Assigns IDs to any company that lacks one.
	CreateCompanies(ctx context.Context, companies []*model.Company) error
	ListCompaniesByUser(ctx context.Context, userID string) ([]model.Company, error)
	GetCompaniesByIDs(ctx context.Context, ids []string) ([]model.Company, error)

	// Contacts
	ListContactsByCompany(ctx context.Context, companyID string) ([]model.Contact, error)
	InsertContact(ctx context.Context, c *model.Contact) error
	UpdateContact(ctx context.Context, c *model.Contact) error

	// SetContactEmail records a resolved email and its 0-100 provider
	// confidence, refusing to overwrite an already-known address, and logs
	// the attempting provider as a completed-search tag. The discovery
	// probability is left alone so contact ranking is stable across jobs.
	SetContactEmail(ctx context.Context, contactID, email, source string, confidence float64) error
	TagContactSearched(ctx context.Context, contactID, tag string) error

	// Credits
	GrantCredits(ctx context.Context, userID string, amount int) (int, error)
	DeductCredits(ctx context.Context, userID string, amount int) (newBalance int, ok bool, err error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// emailSearchTag is the completed-search tag recorded for a provider that
// produced this contact's email.
func emailSearchTag(source string) string {
	return "email:" + source
}
