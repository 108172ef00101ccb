// Package search defines the external provider collaborators consumed by the
// orchestration layer: company discovery, contact discovery, and email
// discovery. Concrete wire formats live in pkg/; this package owns the
// interfaces, the contact-search strategy set, and the rate-limited
// decorators applied to every provider.
package search

import (
	"context"

	"github.com/sells-group/prospector/internal/model"
)

// CompanyResult is a single company returned by a discovery provider.
type CompanyResult struct {
	Name        string `json:"name"`
	Website     string `json:"website,omitempty"`
	Industry    string `json:"industry,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// CompanyProvider discovers companies matching a free-text query.
type CompanyProvider interface {
	SearchCompanies(ctx context.Context, query string, limit int) ([]CompanyResult, error)
}

// ContactCandidate is a person returned by a contact-discovery provider,
// before deduplication against stored contacts.
type ContactCandidate struct {
	Name        string  `json:"name"`
	Role        string  `json:"role,omitempty"`
	Email       string  `json:"email,omitempty"`
	Probability float64 `json:"probability"`
}

// ContactProvider discovers decision-maker contacts for a company query.
type ContactProvider interface {
	FindContacts(ctx context.Context, query string, cfg ContactSearchConfig) ([]ContactCandidate, error)
}

// EmailResult is the outcome of a single email-provider lookup.
type EmailResult struct {
	Email      string  `json:"email,omitempty"`
	Confidence float64 `json:"confidence"`
}

// EmailProvider resolves an email address for one contact at one company.
// Name must match the provider name used in the resolver tier config.
type EmailProvider interface {
	Name() string
	FindEmail(ctx context.Context, contact model.Contact, company model.Company) (EmailResult, error)
}
