// Package enrich orchestrates per-company contact discovery: provider
// fan-out, dedupe against stored contacts, idempotent upserts tagged with the
// originating job, and optional email resolution.
package enrich

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/batch"
	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/resolver"
	"github.com/sells-group/prospector/internal/search"
)

// DefaultCompanyConcurrency matches per-provider rate limits: at most this
// many companies are enriched in parallel.
const DefaultCompanyConcurrency = 3

// ContactStore is the slice of the persistence collaborator this service
// needs. Upserts rely on the store providing per-record atomic semantics;
// only one job touches a given contact at a time by construction.
type ContactStore interface {
	ListContactsByCompany(ctx context.Context, companyID string) ([]model.Contact, error)
	InsertContact(ctx context.Context, c *model.Contact) error
	UpdateContact(ctx context.Context, c *model.Contact) error
}

// CompanyResult is the per-company outcome of an enrichment batch.
type CompanyResult struct {
	Company  model.Company
	Contacts []model.Contact
	Emails   []model.EmailSearchResult
	Err      error
}

// Service runs contact enrichment over batches of companies.
type Service struct {
	store       ContactStore
	strategies  *search.StrategyRegistry
	resolver    *resolver.Resolver
	concurrency int
	now         func() time.Time
}

// New creates an enrichment Service. resolver may be nil when email
// resolution is never requested.
func New(store ContactStore, strategies *search.StrategyRegistry, res *resolver.Resolver, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = DefaultCompanyConcurrency
	}
	return &Service{
		store:       store,
		strategies:  strategies,
		resolver:    res,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// ValidateSearchConfig rejects a configuration before any work starts.
func (s *Service) ValidateSearchConfig(cfg search.ContactSearchConfig) error {
	return cfg.Validate()
}

// SearchContacts enriches each company with contacts, bounded at the service
// concurrency. Results preserve company order; a failure for one company is
// captured in its CompanyResult and never blocks the rest. Each processed
// company emits one progress update on sink.
func (s *Service) SearchContacts(ctx context.Context, companies []model.Company, userID string, cfg search.ContactSearchConfig, jobID string, sink model.ProgressSink) ([]CompanyResult, error) {
	if err := s.ValidateSearchConfig(cfg); err != nil {
		return nil, err
	}
	if sink == nil {
		sink = model.NopSink
	}

	var processed atomic.Int64
	total := len(companies)

	results := batch.Run(ctx, companies, s.concurrency, func(ctx context.Context, company model.Company) (CompanyResult, error) {
		res := s.enrichCompany(ctx, company, cfg, jobID)

		done := int(processed.Add(1))
		sink.Publish(model.Progress{
			Phase:     model.PhaseFindingContacts,
			Completed: done,
			Total:     total,
			Message:   progressMessage(company, res),
		})
		return res, res.Err
	})

	out := make([]CompanyResult, len(results))
	for i, r := range results {
		out[i] = r.Value
		if r.Err != nil && out[i].Err == nil {
			out[i].Err = r.Err
			out[i].Company = companies[i]
		}
	}
	return out, nil
}

// enrichCompany discovers, dedupes, and upserts contacts for one company,
// then resolves emails for the top-ranked contacts when requested.
func (s *Service) enrichCompany(ctx context.Context, company model.Company, cfg search.ContactSearchConfig, jobID string) CompanyResult {
	log := zap.L().With(
		zap.String("job_id", jobID),
		zap.String("company", company.Name),
	)

	query := normalizedQuery(company)
	candidates, err := s.discover(ctx, query, cfg, log)
	if err != nil {
		return CompanyResult{Company: company, Err: err}
	}

	existing, err := s.store.ListContactsByCompany(ctx, company.ID)
	if err != nil {
		return CompanyResult{Company: company, Err: eris.Wrapf(err, "enrich: list contacts for %s", company.ID)}
	}

	contacts, err := s.upsertCandidates(ctx, company, existing, candidates, jobID)
	if err != nil {
		return CompanyResult{Company: company, Err: err}
	}

	result := CompanyResult{Company: company, Contacts: contacts}

	if cfg.ResolveEmails && s.resolver != nil {
		result.Emails = s.resolver.Resolve(ctx, company, contacts)
		applyEmailResults(result.Contacts, result.Emails)
	}

	log.Info("enrich: company processed",
		zap.Int("candidates", len(candidates)),
		zap.Int("contacts", len(contacts)),
		zap.Int("emails", countEmails(result.Emails)),
	)
	return result
}

// discover fans the query out to every enabled strategy's provider. A
// provider error fails the company (phase-level), not just one candidate.
func (s *Service) discover(ctx context.Context, query string, cfg search.ContactSearchConfig, log *zap.Logger) ([]search.ContactCandidate, error) {
	var candidates []search.ContactCandidate
	for _, strategy := range cfg.Strategies {
		provider, ok := s.strategies.For(strategy)
		if !ok {
			log.Warn("enrich: no provider for strategy", zap.Stringer("strategy", strategy))
			continue
		}
		found, err := provider.FindContacts(ctx, query, cfg)
		if err != nil {
			return nil, eris.Wrapf(err, "enrich: %s search", strategy)
		}
		candidates = append(candidates, found...)
	}
	return candidates, nil
}

// upsertCandidates dedupes candidates against stored contacts and persists:
// matches are merged (new non-empty fields win, tags unioned, validation
// stamped), misses are inserted tagged with the originating job. Running the
// same provider output twice therefore updates rather than duplicates.
func (s *Service) upsertCandidates(ctx context.Context, company model.Company, existing []model.Contact, candidates []search.ContactCandidate, jobID string) ([]model.Contact, error) {
	now := s.now().UTC()

	for _, cand := range candidates {
		if strings.TrimSpace(cand.Name) == "" {
			continue
		}

		if match := matchExisting(existing, cand); match != nil {
			mergeCandidate(match, cand, jobID, now)
			if err := s.store.UpdateContact(ctx, match); err != nil {
				return nil, eris.Wrapf(err, "enrich: update contact %s", match.ID)
			}
			continue
		}

		contact := model.Contact{
			ID:                uuid.New().String(),
			CompanyID:         company.ID,
			JobID:             jobID,
			Name:              strings.TrimSpace(cand.Name),
			Role:              cand.Role,
			Email:             strings.TrimSpace(cand.Email),
			Probability:       cand.Probability,
			CompletedSearches: []string{jobID},
			LastValidated:     &now,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := s.store.InsertContact(ctx, &contact); err != nil {
			return nil, eris.Wrapf(err, "enrich: insert contact %s", contact.Name)
		}
		existing = append(existing, contact)
	}

	return existing, nil
}

// normalizedQuery builds the provider query string "{companyName} {website}".
func normalizedQuery(company model.Company) string {
	return strings.TrimSpace(strings.Join(strings.Fields(company.Name+" "+company.Website), " "))
}

// applyEmailResults folds resolver wins back into the in-memory contacts so
// callers see the post-resolution state without a re-read.
func applyEmailResults(contacts []model.Contact, results []model.EmailSearchResult) {
	byID := make(map[string]model.EmailSearchResult, len(results))
	for _, r := range results {
		if r.Found() {
			byID[r.ContactID] = r
		}
	}
	for i := range contacts {
		if r, ok := byID[contacts[i].ID]; ok && contacts[i].Email == "" {
			contacts[i].Email = r.Email
			contacts[i].EmailConfidence = r.Confidence
		}
	}
}

func countEmails(results []model.EmailSearchResult) int {
	n := 0
	for _, r := range results {
		if r.Found() {
			n++
		}
	}
	return n
}

func progressMessage(company model.Company, res CompanyResult) string {
	if res.Err != nil {
		return fmt.Sprintf("Failed to process %s", company.Name)
	}
	return fmt.Sprintf("Processed %s (%d contacts)", company.Name, len(res.Contacts))
}
