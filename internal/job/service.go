// Package job owns the durable search-job lifecycle: creation, claim,
// phase-by-phase execution, billing, retry bookkeeping, and the background
// processor that drains the queue.
package job

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/billing"
	"github.com/sells-group/prospector/internal/enrich"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/internal/store"
)

// DefaultCompanyLimit bounds how many companies one discovery phase returns.
const DefaultCompanyLimit = 10

// Service implements the job lifecycle operations over a Store, a company
// discovery provider, the enrichment service, and the billing ledger.
type Service struct {
	store        store.Store
	companies    search.CompanyProvider
	enricher     *enrich.Service
	ledger       billing.Ledger
	companyLimit int
}

// NewService creates a job Service. ledger may be nil to disable billing
// entirely (all jobs then execute as if cron-sourced).
func NewService(st store.Store, companies search.CompanyProvider, enricher *enrich.Service, ledger billing.Ledger, companyLimit int) *Service {
	if companyLimit <= 0 {
		companyLimit = DefaultCompanyLimit
	}
	return &Service{
		store:        st,
		companies:    companies,
		enricher:     enricher,
		ledger:       ledger,
		companyLimit: companyLimit,
	}
}

// CreateJobRequest carries the caller-supplied parameters for a new job.
type CreateJobRequest struct {
	UserID     string           `json:"user_id"`
	Query      string           `json:"query"`
	SearchType model.SearchType `json:"search_type"`
	Source     model.JobSource  `json:"source,omitempty"`
	Priority   int              `json:"priority,omitempty"`
	Metadata   map[string]any   `json:"metadata,omitempty"`
}

// Validate rejects requests that could never execute.
func (r CreateJobRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return eris.New("job: user id is required")
	}
	if !r.SearchType.Valid() {
		return eris.Errorf("job: invalid search type %q", string(r.SearchType))
	}
	if r.SearchType != model.SearchTypeContactOnly && strings.TrimSpace(r.Query) == "" {
		return eris.New("job: query is required")
	}
	return nil
}

// CreateJob validates and enqueues a new pending job.
func (s *Service) CreateJob(ctx context.Context, req CreateJobRequest) (*model.Job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	source := req.Source
	if source == "" {
		source = model.SourceFrontend
	}

	job := &model.Job{
		UserID:     req.UserID,
		Query:      strings.TrimSpace(req.Query),
		SearchType: req.SearchType,
		Source:     source,
		Priority:   req.Priority,
		Metadata:   req.Metadata,
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	zap.L().Info("job: created",
		zap.String("job_id", job.ID),
		zap.String("user_id", job.UserID),
		zap.String("search_type", string(job.SearchType)),
	)
	return job, nil
}

// GetJob returns a job scoped to its owner. A job belonging to another user
// is reported as not found rather than forbidden.
func (s *Service) GetJob(ctx context.Context, jobID, userID string) (*model.Job, error) {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, eris.Errorf("job: not found: %s", jobID)
	}
	return job, nil
}

// ListJobs returns the user's most recent jobs.
func (s *Service) ListJobs(ctx context.Context, userID string, limit int) ([]model.Job, error) {
	return s.store.ListJobs(ctx, userID, limit)
}

// CancelJob cancels a job that has not started yet. A job already picked up
// by a worker cannot be cancelled.
func (s *Service) CancelJob(ctx context.Context, jobID, userID string) error {
	if _, err := s.GetJob(ctx, jobID, userID); err != nil {
		return err
	}
	ok, err := s.store.CancelPendingJob(ctx, jobID, "cancelled by user")
	if err != nil {
		return err
	}
	if !ok {
		return eris.Errorf("job: %s is no longer pending", jobID)
	}
	return nil
}

// RetryJob returns a failed job to the queue, provided it has retry budget
// left. The requeue itself consumes one retry.
func (s *Service) RetryJob(ctx context.Context, jobID, userID string) error {
	job, err := s.GetJob(ctx, jobID, userID)
	if err != nil {
		return err
	}
	if job.Status != model.JobStatusFailed {
		return eris.Errorf("job: %s is %s, only failed jobs can be retried", jobID, job.Status)
	}
	if job.RetryCount >= job.MaxRetries {
		return eris.Errorf("job: %s exhausted its %d retries", jobID, job.MaxRetries)
	}
	return s.store.RequeueJob(ctx, jobID, "")
}

// CleanupOldJobs deletes terminal jobs older than daysToKeep.
func (s *Service) CleanupOldJobs(ctx context.Context, daysToKeep int) (int, error) {
	if daysToKeep <= 0 {
		daysToKeep = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -daysToKeep)
	return s.store.DeleteOldJobs(ctx, cutoff)
}

// FailedJobsForRetry lists failed jobs with retry budget remaining, for the
// scheduled retry sweep.
func (s *Service) FailedJobsForRetry(ctx context.Context) ([]model.Job, error) {
	return s.store.ListFailedJobs(ctx)
}

// ExecuteJob claims and runs one job end to end. A claim miss (the job was
// taken by another worker, cancelled, or already done) is not an error.
//
// State-transition writes use a detached context so a mid-phase timeout or
// cancellation cannot also break the failure bookkeeping.
func (s *Service) ExecuteJob(ctx context.Context, jobID string) error {
	job, claimed, err := s.store.ClaimJob(ctx, jobID)
	if err != nil {
		return err
	}
	if !claimed {
		zap.L().Debug("job: claim missed", zap.String("job_id", jobID))
		return nil
	}

	log := zap.L().With(
		zap.String("job_id", job.ID),
		zap.String("search_type", string(job.SearchType)),
	)
	bctx := context.WithoutCancel(ctx)
	sink := s.progressSink(bctx, job.ID)

	results, count, execErr := s.run(ctx, job, sink)
	if execErr != nil {
		if job.RetryCount < job.MaxRetries {
			log.Warn("job: failed, requeueing",
				zap.Int("retry_count", job.RetryCount+1),
				zap.Error(execErr),
			)
			if err := s.store.RequeueJob(bctx, job.ID, execErr.Error()); err != nil {
				log.Error("job: requeue failed", zap.Error(err))
			}
		} else {
			log.Error("job: failed permanently", zap.Error(execErr))
			if err := s.store.FailJob(bctx, job.ID, execErr.Error()); err != nil {
				log.Error("job: fail transition failed", zap.Error(err))
			}
		}
		return execErr
	}

	s.bill(bctx, job, sink)

	if err := s.store.CompleteJob(bctx, job.ID, results, count); err != nil {
		return eris.Wrapf(err, "job: complete %s", job.ID)
	}
	sink.Publish(model.Progress{Phase: model.PhaseCompleted, Completed: count, Total: count})
	log.Info("job: completed", zap.Int("result_count", count))
	return nil
}

// run executes the pipeline for the job's search type. An empty result set
// is a success, not an error.
func (s *Service) run(ctx context.Context, job *model.Job, sink model.ProgressSink) (*model.JobResults, int, error) {
	switch job.SearchType {
	case model.SearchTypeCompanies:
		companies, err := s.discoverCompanies(ctx, job, sink)
		if err != nil {
			return nil, 0, err
		}
		return &model.JobResults{
			Companies:    companies,
			CompanyCount: len(companies),
		}, len(companies), nil

	case model.SearchTypeContacts, model.SearchTypeEmails:
		companies, err := s.discoverCompanies(ctx, job, sink)
		if err != nil {
			return nil, 0, err
		}
		results, err := s.enrichCompanies(ctx, job, companies, sink)
		if err != nil {
			return nil, 0, err
		}
		results.Companies = companies
		results.CompanyCount = len(companies)
		return results, len(companies), nil

	case model.SearchTypeContactOnly:
		companies, err := s.loadCompanies(ctx, job)
		if err != nil {
			return nil, 0, err
		}
		results, err := s.enrichCompanies(ctx, job, companies, sink)
		if err != nil {
			return nil, 0, err
		}
		results.CompanyCount = len(companies)
		return results, results.ContactCount, nil
	}
	return nil, 0, eris.Errorf("job: unsupported search type %q", string(job.SearchType))
}

// discoverCompanies runs the discovery provider and persists every company
// as a fresh row owned by this job.
func (s *Service) discoverCompanies(ctx context.Context, job *model.Job, sink model.ProgressSink) ([]model.Company, error) {
	sink.Publish(model.Progress{Phase: model.PhaseFindingCompanies, Message: job.Query})

	found, err := s.companies.SearchCompanies(ctx, job.Query, s.companyLimit)
	if err != nil {
		return nil, eris.Wrap(err, "job: company discovery")
	}

	companies := make([]*model.Company, 0, len(found))
	for _, f := range found {
		companies = append(companies, &model.Company{
			UserID:      job.UserID,
			JobID:       job.ID,
			ListID:      metadataString(job.Metadata, "list_id"),
			Name:        f.Name,
			Website:     f.Website,
			Industry:    f.Industry,
			Location:    f.Location,
			Description: f.Description,
		})
	}

	sink.Publish(model.Progress{
		Phase: model.PhaseSavingCompanies,
		Total: len(companies),
	})
	if err := s.store.CreateCompanies(ctx, companies); err != nil {
		return nil, eris.Wrap(err, "job: save companies")
	}

	out := make([]model.Company, len(companies))
	for i, c := range companies {
		out[i] = *c
	}
	return out, nil
}

// loadCompanies resolves the target set for a contact-only job: the company
// IDs named in metadata, or every company the user owns when none are named.
func (s *Service) loadCompanies(ctx context.Context, job *model.Job) ([]model.Company, error) {
	if ids := metadataStrings(job.Metadata, "company_ids"); len(ids) > 0 {
		return s.store.GetCompaniesByIDs(ctx, ids)
	}
	return s.store.ListCompaniesByUser(ctx, job.UserID)
}

// enrichCompanies runs contact enrichment over the companies and folds the
// per-company outcomes into a JobResults. A failed company is logged and
// excluded from the results; it never fails the job.
func (s *Service) enrichCompanies(ctx context.Context, job *model.Job, companies []model.Company, sink model.ProgressSink) (*model.JobResults, error) {
	cfg, err := searchConfigForJob(job)
	if err != nil {
		return nil, err
	}

	companyResults, err := s.enricher.SearchContacts(ctx, companies, job.UserID, cfg, job.ID, sink)
	if err != nil {
		return nil, err
	}

	results := &model.JobResults{}
	for _, cr := range companyResults {
		if cr.Err != nil {
			zap.L().Warn("job: company enrichment failed",
				zap.String("job_id", job.ID),
				zap.String("company", cr.Company.Name),
				zap.Error(cr.Err),
			)
			continue
		}
		results.Contacts = append(results.Contacts, cr.Contacts...)
		results.ContactCount += len(cr.Contacts)
		for _, r := range cr.Emails {
			if r.Found() {
				results.EmailCount++
			}
		}
	}
	return results, nil
}

// bill deducts the billable actions for the job's search type. Billing is
// best-effort and runs after the search value has been delivered: a failed
// or insufficient deduction is logged, never unwound.
func (s *Service) bill(ctx context.Context, job *model.Job, sink model.ProgressSink) {
	if s.ledger == nil || job.Source == model.SourceCron {
		return
	}

	sink.Publish(model.Progress{Phase: model.PhaseProcessingCredits})
	for _, action := range billing.ActionsForSearchType(job.SearchType) {
		res, err := s.ledger.Deduct(ctx, job.UserID, action)
		if err != nil {
			zap.L().Error("job: billing failed",
				zap.String("job_id", job.ID),
				zap.String("action", string(action)),
				zap.Error(err),
			)
			continue
		}
		if !res.Success {
			zap.L().Warn("job: insufficient credits",
				zap.String("job_id", job.ID),
				zap.String("user_id", job.UserID),
				zap.String("action", string(action)),
				zap.Int("balance", res.NewBalance),
			)
		}
	}
}

// progressSink persists every progress update. The sink deliberately uses
// the detached context so late updates from a timed-out phase still land.
func (s *Service) progressSink(ctx context.Context, jobID string) model.ProgressSink {
	return model.ProgressFunc(func(p model.Progress) {
		if err := s.store.UpdateJobProgress(ctx, jobID, p); err != nil {
			zap.L().Warn("job: progress update failed",
				zap.String("job_id", jobID),
				zap.Error(err),
			)
		}
	})
}

// searchConfigForJob builds the contact-search configuration from job
// metadata, defaulting to the decision-makers strategy.
func searchConfigForJob(job *model.Job) (search.ContactSearchConfig, error) {
	cfg := search.ContactSearchConfig{
		Strategies:    []search.Strategy{search.StrategyDecisionMakers},
		CustomRole:    metadataString(job.Metadata, "custom_role"),
		ResolveEmails: job.SearchType == model.SearchTypeEmails,
	}

	if names := metadataStrings(job.Metadata, "strategies"); len(names) > 0 {
		cfg.Strategies = cfg.Strategies[:0]
		for _, name := range names {
			strategy, err := search.ParseStrategy(name)
			if err != nil {
				return cfg, err
			}
			cfg.Strategies = append(cfg.Strategies, strategy)
		}
	}
	if n, ok := metadataInt(job.Metadata, "max_contacts"); ok {
		cfg.MaxContactsPerCompany = n
	}
	return cfg, nil
}

func metadataString(md map[string]any, key string) string {
	v, _ := md[key].(string)
	return v
}

// metadataStrings reads a string list stored in metadata. Values arrive as
// []any after a JSON round-trip through the store.
func metadataStrings(md map[string]any, key string) []string {
	switch v := md[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// metadataInt reads an integer stored in metadata, tolerating the float64
// JSON numbers decode to.
func metadataInt(md map[string]any, key string) (int, bool) {
	switch v := md[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	}
	return 0, false
}
