// Package billing defines the credit-deduction collaborator and a
// store-backed ledger implementation. Billing runs after search value has
// been delivered and is best-effort: a deduction failure is logged by the
// caller, never rolled back into the search results.
package billing

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/prospector/internal/model"
)

// Action is a billable unit of work.
type Action string

const (
	ActionCompanySearch Action = "company_search"
	ActionContactSearch Action = "contact_search"
	ActionEmailSearch   Action = "email_search"
)

// DefaultCosts is the per-action credit cost used when config is silent.
var DefaultCosts = map[Action]int{
	ActionCompanySearch: 1,
	ActionContactSearch: 2,
	ActionEmailSearch:   3,
}

// Result reports the outcome of a deduction.
type Result struct {
	Success    bool `json:"success"`
	NewBalance int  `json:"new_balance"`
}

// Ledger deducts credits for billable actions.
type Ledger interface {
	Deduct(ctx context.Context, userID string, action Action) (Result, error)
}

// ActionsForSearchType maps a job's search type to the billable actions it
// performs: every non-contact-only job bills company discovery, and jobs that
// enrich further bill the enrichment action on top.
func ActionsForSearchType(t model.SearchType) []Action {
	switch t {
	case model.SearchTypeCompanies:
		return []Action{ActionCompanySearch}
	case model.SearchTypeContacts:
		return []Action{ActionCompanySearch, ActionContactSearch}
	case model.SearchTypeEmails:
		return []Action{ActionCompanySearch, ActionEmailSearch}
	case model.SearchTypeContactOnly:
		return []Action{ActionContactSearch}
	}
	return nil
}

// CreditStore is the persistence slice the ledger needs: an atomic
// conditional deduction against a user's balance.
type CreditStore interface {
	DeductCredits(ctx context.Context, userID string, amount int) (newBalance int, ok bool, err error)
}

// StoreLedger implements Ledger on top of a CreditStore.
type StoreLedger struct {
	store CreditStore
	costs map[Action]int
}

// NewStoreLedger creates a ledger. costs may be nil to use DefaultCosts.
func NewStoreLedger(store CreditStore, costs map[Action]int) *StoreLedger {
	if len(costs) == 0 {
		costs = DefaultCosts
	}
	return &StoreLedger{store: store, costs: costs}
}

// Deduct atomically removes the action's cost from the user's balance.
// An insufficient balance yields Success=false without error.
func (l *StoreLedger) Deduct(ctx context.Context, userID string, action Action) (Result, error) {
	cost, ok := l.costs[action]
	if !ok {
		return Result{}, eris.Errorf("billing: unknown action %q", action)
	}

	balance, ok, err := l.store.DeductCredits(ctx, userID, cost)
	if err != nil {
		return Result{}, eris.Wrapf(err, "billing: deduct %s for %s", action, userID)
	}
	return Result{Success: ok, NewBalance: balance}, nil
}
