// Package resolver implements the tiered email-discovery cascade: a cheap
// Tier-1 provider fanned out over a company's top-ranked contacts, escalating
// to fixed-slot Tier-2 fallbacks only when Tier 1 comes back empty.
package resolver

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/search"
)

// ContactWriter is the slice of the persistence collaborator the resolver
// needs: immediate per-contact writes so partial progress survives a crash
// mid-resolution.
type ContactWriter interface {
	// SetContactEmail records a discovered email. It must never overwrite an
	// already-known email.
	SetContactEmail(ctx context.Context, contactID, email, source string, confidence float64) error
	// TagContactSearched appends a completed-search tag to the contact.
	TagContactSearched(ctx context.Context, contactID, tag string) error
}

// Resolver runs the tiered cascade for one company at a time.
type Resolver struct {
	cfg      Config
	registry *search.EmailRegistry
	store    ContactWriter
}

// New creates a Resolver.
func New(cfg Config, registry *search.EmailRegistry, store ContactWriter) *Resolver {
	return &Resolver{cfg: cfg, registry: registry, store: store}
}

// Resolve runs the cascade over the company's contacts, ranked by confidence
// descending (ties keep discovery order) and capped at MaxContacts. It
// returns one result per ranked contact; a contact may exit with no email.
// Contacts already tagged as comprehensively searched are never re-queried.
//
// Which result wins for a contact is first-writer-wins across tiers: a
// later-arriving email for a contact that already has one is discarded.
func (r *Resolver) Resolve(ctx context.Context, company model.Company, contacts []model.Contact) []model.EmailSearchResult {
	ranked := rankContacts(contacts, r.cfg.MaxContacts)
	if len(ranked) == 0 {
		return nil
	}

	log := zap.L().With(
		zap.String("company_id", company.ID),
		zap.String("company", company.Name),
	)

	var mu sync.Mutex
	results := make([]model.EmailSearchResult, len(ranked))
	for i, c := range ranked {
		results[i] = model.EmailSearchResult{ContactID: c.ID}
	}

	// Tier 1: primary provider across every slot in parallel. Contacts with a
	// known email are short-circuited and excluded from the escalation count.
	primary := r.registry.Get(r.cfg.Primary)
	g, gctx := errgroup.WithContext(ctx)
	for i, contact := range ranked {
		if contact.Email != "" {
			results[i] = model.EmailSearchResult{
				ContactID:  contact.ID,
				Email:      contact.Email,
				Source:     model.EmailSourceExisting,
				Confidence: 100,
			}
			continue
		}
		// A contact a prior job already ran through every tier stays
		// found=false without any provider calls.
		if contact.HasSearchTag(model.TagComprehensiveSearch) {
			continue
		}
		if primary == nil {
			continue
		}
		g.Go(func() error {
			res, err := primary.FindEmail(gctx, contact, company)
			if err != nil {
				log.Warn("resolver: tier 1 lookup failed",
					zap.String("provider", r.cfg.Primary),
					zap.String("contact", contact.Name),
					zap.Error(err),
				)
				return nil // provider failure degrades to "no email found"
			}
			if res.Email == "" {
				return nil
			}
			mu.Lock()
			results[i] = model.EmailSearchResult{
				ContactID:  contact.ID,
				Email:      res.Email,
				Source:     r.cfg.Primary,
				Confidence: res.Confidence,
			}
			mu.Unlock()
			r.persist(ctx, log, contact.ID, res.Email, r.cfg.Primary, res.Confidence)
			return nil
		})
	}
	_ = g.Wait()

	// Escalation rule: count emails newly found in Tier 1. Existing emails do
	// not count. One hit is enough to skip Tier 2 for the whole company; this
	// cost/completeness tradeoff is intentional.
	found := 0
	for _, res := range results {
		if res.Found() && res.Source != model.EmailSourceExisting {
			found++
		}
	}

	if found < r.cfg.EscalationThreshold {
		r.runFallbacks(ctx, log, company, ranked, results, &mu)
	} else {
		log.Debug("resolver: tier 2 skipped",
			zap.Int("tier1_found", found),
			zap.Int("threshold", r.cfg.EscalationThreshold),
		)
	}

	// Contacts that exit all tiers empty-handed are tagged so future jobs can
	// skip re-querying them.
	for i, contact := range ranked {
		if contact.HasSearchTag(model.TagComprehensiveSearch) {
			continue
		}
		mu.Lock()
		empty := !results[i].Found()
		mu.Unlock()
		if empty {
			if err := r.store.TagContactSearched(ctx, contact.ID, model.TagComprehensiveSearch); err != nil {
				log.Warn("resolver: tag contact failed", zap.String("contact_id", contact.ID), zap.Error(err))
			}
		}
	}

	return results
}

// runFallbacks executes Tier 2: each fallback provider runs concurrently over
// its fixed slot subset, skipping any contact that already acquired an email
// earlier in the same invocation.
func (r *Resolver) runFallbacks(ctx context.Context, log *zap.Logger, company model.Company, ranked []model.Contact, results []model.EmailSearchResult, mu *sync.Mutex) {
	g, gctx := errgroup.WithContext(ctx)

	for _, fb := range r.cfg.Fallbacks {
		provider := r.registry.Get(fb.Provider)
		if provider == nil {
			log.Warn("resolver: fallback provider not registered", zap.String("provider", fb.Provider))
			continue
		}
		g.Go(func() error {
			for _, slot := range fb.Slots {
				idx := slot - 1
				if idx < 0 || idx >= len(ranked) {
					continue
				}
				contact := ranked[idx]
				if contact.HasSearchTag(model.TagComprehensiveSearch) {
					continue
				}

				mu.Lock()
				taken := results[idx].Found()
				mu.Unlock()
				if taken {
					continue
				}

				res, err := provider.FindEmail(gctx, contact, company)
				if err != nil {
					log.Warn("resolver: tier 2 lookup failed",
						zap.String("provider", fb.Provider),
						zap.Int("slot", slot),
						zap.Error(err),
					)
					continue
				}
				if res.Email == "" {
					continue
				}

				// Re-check under the lock: a faster-completing sibling call may
				// have filled this slot while we were querying.
				mu.Lock()
				if results[idx].Found() {
					mu.Unlock()
					continue
				}
				results[idx] = model.EmailSearchResult{
					ContactID:  contact.ID,
					Email:      res.Email,
					Source:     fb.Provider,
					Confidence: res.Confidence,
				}
				mu.Unlock()
				r.persist(ctx, log, contact.ID, res.Email, fb.Provider, res.Confidence)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// persist writes a discovered email immediately. Store failures are logged
// and do not abort the cascade; the in-memory result still flows upward.
func (r *Resolver) persist(ctx context.Context, log *zap.Logger, contactID, email, source string, confidence float64) {
	if err := r.store.SetContactEmail(ctx, contactID, email, source, confidence); err != nil {
		log.Warn("resolver: persist email failed",
			zap.String("contact_id", contactID),
			zap.String("source", source),
			zap.Error(err),
		)
	}
}

// rankContacts sorts by probability descending, preserving discovery order on
// ties, and truncates to max.
func rankContacts(contacts []model.Contact, max int) []model.Contact {
	ranked := make([]model.Contact, len(contacts))
	copy(ranked, contacts)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Probability > ranked[j].Probability
	})
	if max > 0 && len(ranked) > max {
		ranked = ranked[:max]
	}
	return ranked
}
