package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "prospector.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newTestJob(userID string) *model.Job {
	return &model.Job{
		UserID:     userID,
		Query:      "fintech in miami",
		SearchType: model.SearchTypeEmails,
		Source:     model.SourceFrontend,
	}
}

func TestJobLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := newTestJob("u1")
	require.NoError(t, s.CreateJob(ctx, job))
	require.NotEmpty(t, job.ID)

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, got.Status)
	assert.Equal(t, model.DefaultMaxRetries, got.MaxRetries)
	assert.Nil(t, got.StartedAt)

	claimed, ok, err := s.ClaimJob(ctx, job.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, model.JobStatusProcessing, claimed.Status)
	require.NotNil(t, claimed.StartedAt)

	// A second claim must fail: the job is no longer pending.
	_, ok, err = s.ClaimJob(ctx, job.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.UpdateJobProgress(ctx, job.ID, model.Progress{
		Phase: model.PhaseFindingCompanies, Completed: 1, Total: 4, Message: "searching",
	}))

	results := &model.JobResults{CompanyCount: 2, EmailCount: 1}
	require.NoError(t, s.CompleteJob(ctx, job.ID, results, 2))

	got, err = s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusCompleted, got.Status)
	assert.Equal(t, 2, got.ResultCount)
	require.NotNil(t, got.Results)
	assert.Equal(t, 2, got.Results.CompanyCount)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, model.PhaseFindingCompanies, got.Progress.Phase)
}

func TestGetJob_NotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetJob(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get job")
}

func TestRequeueIncrementsRetryCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := newTestJob("u1")
	require.NoError(t, s.CreateJob(ctx, job))
	_, _, err := s.ClaimJob(ctx, job.ID)
	require.NoError(t, err)

	require.NoError(t, s.RequeueJob(ctx, job.ID, "provider blew up"))

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, "provider blew up", got.Error)
}

func TestCancelPendingJob(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := newTestJob("u1")
	require.NoError(t, s.CreateJob(ctx, job))

	ok, err := s.CancelPendingJob(ctx, job.ID, "cancelled by user")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusFailed, got.Status)
	assert.Equal(t, "cancelled by user", got.Error)

	// Already terminal: cancel is a no-op.
	ok, err = s.CancelPendingJob(ctx, job.ID, "again")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNextPendingJob_PriorityOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	low := newTestJob("u1")
	require.NoError(t, s.CreateJob(ctx, low))

	high := newTestJob("u1")
	high.Priority = 10
	require.NoError(t, s.CreateJob(ctx, high))

	next, err := s.NextPendingJob(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, high.ID, next.ID)

	_, _, err = s.ClaimJob(ctx, high.ID)
	require.NoError(t, err)

	next, err = s.NextPendingJob(ctx)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, low.ID, next.ID)
}

func TestNextPendingJob_EmptyQueue(t *testing.T) {
	s := newTestStore(t)
	next, err := s.NextPendingJob(context.Background())
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestResetStuckJobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	job := newTestJob("u1")
	require.NoError(t, s.CreateJob(ctx, job))
	_, _, err := s.ClaimJob(ctx, job.ID)
	require.NoError(t, err)

	// Not yet stale.
	n, err := s.ResetStuckJobs(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	time.Sleep(20 * time.Millisecond)
	n, err = s.ResetStuckJobs(ctx, 10*time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := s.GetJob(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusPending, got.Status)
}

func TestDeleteOldJobs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	done := newTestJob("u1")
	require.NoError(t, s.CreateJob(ctx, done))
	require.NoError(t, s.CompleteJob(ctx, done.ID, nil, 0))

	pending := newTestJob("u1")
	require.NoError(t, s.CreateJob(ctx, pending))

	time.Sleep(20 * time.Millisecond)
	n, err := s.DeleteOldJobs(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, 1, n, "only terminal jobs are deleted")

	_, err = s.GetJob(ctx, done.ID)
	require.Error(t, err)
	_, err = s.GetJob(ctx, pending.ID)
	require.NoError(t, err)
}

func TestListFailedJobs_RespectsMaxRetries(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	retryable := newTestJob("u1")
	require.NoError(t, s.CreateJob(ctx, retryable))
	require.NoError(t, s.FailJob(ctx, retryable.ID, "boom"))

	exhausted := newTestJob("u1")
	exhausted.MaxRetries = 1
	require.NoError(t, s.CreateJob(ctx, exhausted))
	require.NoError(t, s.RequeueJob(ctx, exhausted.ID, "boom"))
	require.NoError(t, s.FailJob(ctx, exhausted.ID, "boom again"))

	failed, err := s.ListFailedJobs(ctx)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, retryable.ID, failed[0].ID)
}

func TestCompaniesAndContacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	company := &model.Company{UserID: "u1", JobID: "j1", Name: "Acme", Website: "acme.com"}
	require.NoError(t, s.CreateCompany(ctx, company))

	other := &model.Company{UserID: "u2", JobID: "j2", Name: "Globex"}
	require.NoError(t, s.CreateCompany(ctx, other))

	mine, err := s.ListCompaniesByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Acme", mine[0].Name)

	byID, err := s.GetCompaniesByIDs(ctx, []string{company.ID, other.ID})
	require.NoError(t, err)
	assert.Len(t, byID, 2)

	now := time.Now().UTC()
	contact := &model.Contact{
		CompanyID:         company.ID,
		JobID:             "j1",
		Name:              "Avery Gray",
		Role:              "CEO",
		Probability:       0.9,
		CompletedSearches: []string{"j1"},
		LastValidated:     &now,
	}
	require.NoError(t, s.InsertContact(ctx, contact))

	contacts, err := s.ListContactsByCompany(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, []string{"j1"}, contacts[0].CompletedSearches)
	require.NotNil(t, contacts[0].LastValidated)

	contact.Role = "Chief Executive"
	contact.AddSearchTag("j2")
	require.NoError(t, s.UpdateContact(ctx, contact))

	contacts, err = s.ListContactsByCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chief Executive", contacts[0].Role)
	assert.Equal(t, []string{"j1", "j2"}, contacts[0].CompletedSearches)
}

func TestSetContactEmail_NeverOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	company := &model.Company{UserID: "u1", JobID: "j1", Name: "Acme"}
	require.NoError(t, s.CreateCompany(ctx, company))
	contact := &model.Contact{CompanyID: company.ID, Name: "Avery Gray"}
	require.NoError(t, s.InsertContact(ctx, contact))

	require.NoError(t, s.SetContactEmail(ctx, contact.ID, "avery@acme.com", "hunter", 85))

	contacts, err := s.ListContactsByCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "avery@acme.com", contacts[0].Email)
	assert.Equal(t, 85.0, contacts[0].EmailConfidence)
	assert.Contains(t, contacts[0].CompletedSearches, "email:hunter")

	// A later write for the same contact is discarded.
	require.NoError(t, s.SetContactEmail(ctx, contact.ID, "other@acme.com", "apollo", 60))
	contacts, err = s.ListContactsByCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "avery@acme.com", contacts[0].Email)
	assert.NotContains(t, contacts[0].CompletedSearches, "email:apollo")
}

func TestSetContactEmail_PreservesDiscoveryRanking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	company := &model.Company{UserID: "u1", JobID: "j1", Name: "Acme"}
	require.NoError(t, s.CreateCompany(ctx, company))

	top := &model.Contact{CompanyID: company.ID, Name: "Top Rank", Probability: 0.9}
	require.NoError(t, s.InsertContact(ctx, top))
	low := &model.Contact{CompanyID: company.ID, Name: "Low Rank", Probability: 0.2}
	require.NoError(t, s.InsertContact(ctx, low))

	// The 0-100 provider confidence lands in email_confidence, not in the
	// 0-1 discovery probability that drives ranking.
	require.NoError(t, s.SetContactEmail(ctx, low.ID, "low@acme.com", "hunter", 85))

	contacts, err := s.ListContactsByCompany(ctx, company.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "Top Rank", contacts[0].Name)
	assert.Equal(t, "Low Rank", contacts[1].Name)
	assert.Equal(t, 0.2, contacts[1].Probability)
	assert.Equal(t, 85.0, contacts[1].EmailConfidence)
}

func TestTagContactSearched_Idempotent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	company := &model.Company{UserID: "u1", JobID: "j1", Name: "Acme"}
	require.NoError(t, s.CreateCompany(ctx, company))
	contact := &model.Contact{CompanyID: company.ID, Name: "Avery Gray"}
	require.NoError(t, s.InsertContact(ctx, contact))

	require.NoError(t, s.TagContactSearched(ctx, contact.ID, model.TagComprehensiveSearch))
	require.NoError(t, s.TagContactSearched(ctx, contact.ID, model.TagComprehensiveSearch))

	contacts, err := s.ListContactsByCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{model.TagComprehensiveSearch}, contacts[0].CompletedSearches)
}

func TestCredits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	balance, err := s.GrantCredits(ctx, "u1", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, balance)

	balance, ok, err := s.DeductCredits(ctx, "u1", 3)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 7, balance)

	// Insufficient balance: no deduction.
	balance, ok, err = s.DeductCredits(ctx, "u1", 100)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 7, balance)

	// Unknown user: no row, no deduction.
	_, ok, err = s.DeductCredits(ctx, "ghost", 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListJobs_ScopedAndLimited(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for range 3 {
		require.NoError(t, s.CreateJob(ctx, newTestJob("u1")))
	}
	require.NoError(t, s.CreateJob(ctx, newTestJob("u2")))

	jobs, err := s.ListJobs(ctx, "u1", 2)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.Equal(t, "u1", j.UserID)
	}
}
