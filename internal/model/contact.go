package model

import (
	"slices"
	"time"
)

// Email result sources with special meaning to the resolver.
const (
	// EmailSourceExisting marks a contact whose email was already known before
	// resolution started. It does not count toward tier escalation.
	EmailSourceExisting = "existing"
)

// TagComprehensiveSearch marks a contact that exhausted every resolver tier
// without finding an email, so future jobs can skip re-querying it.
const TagComprehensiveSearch = "comprehensive_email_search"

// Contact is a person associated with a company. A contact is unique per
// (companyID, email) when the email is known, otherwise per
// (companyID, normalized name).
type Contact struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	JobID     string `json:"job_id"`
	Name      string `json:"name"`
	Role      string `json:"role,omitempty"`
	Email     string `json:"email,omitempty"`

	// Probability is the 0-1 relevance score assigned by the contact finder.
	// It is never touched after discovery; ranking depends on it.
	Probability float64 `json:"probability"`

	// EmailConfidence is the 0-100 score reported by the email provider that
	// resolved Email. Zero when no email has been resolved.
	EmailConfidence float64 `json:"email_confidence,omitempty"`

	// CompletedSearches holds job/provider tags already attempted against this
	// contact, used to avoid redundant re-querying.
	CompletedSearches []string `json:"completed_searches,omitempty"`

	LastValidated *time.Time `json:"last_validated,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// HasSearchTag reports whether tag is already in CompletedSearches.
func (c *Contact) HasSearchTag(tag string) bool {
	return slices.Contains(c.CompletedSearches, tag)
}

// AddSearchTag appends tag to CompletedSearches if not already present.
func (c *Contact) AddSearchTag(tag string) {
	if !c.HasSearchTag(tag) {
		c.CompletedSearches = append(c.CompletedSearches, tag)
	}
}

// EmailSearchResult is the per-contact outcome of one resolver invocation.
// It is ephemeral: the winning email is merged into the Contact record.
type EmailSearchResult struct {
	ContactID  string  `json:"contact_id"`
	Email      string  `json:"email,omitempty"`
	Source     string  `json:"source"`
	Confidence float64 `json:"confidence"`
}

// Found reports whether this result carries a usable email.
func (r EmailSearchResult) Found() bool {
	return r.Email != ""
}
