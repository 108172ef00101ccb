package search

import (
	"sync"

	"github.com/rotisserie/eris"
)

// Strategy is a closed set of contact-discovery strategies. Keeping this an
// enum (rather than string-keyed flags) lets the compiler catch a strategy
// added without a registry entry or validation rule.
type Strategy int

const (
	// StrategyDecisionMakers finds executives and owners (CEO, founder, partner).
	StrategyDecisionMakers Strategy = iota
	// StrategyDepartmentHeads finds functional leads (sales, marketing, ops).
	StrategyDepartmentHeads
	// StrategyCustomRole finds people matching a caller-supplied role string.
	StrategyCustomRole
)

// String returns the stable name used in configs and logs.
func (s Strategy) String() string {
	switch s {
	case StrategyDecisionMakers:
		return "decision_makers"
	case StrategyDepartmentHeads:
		return "department_heads"
	case StrategyCustomRole:
		return "custom_role"
	}
	return "unknown"
}

// ParseStrategy maps a stable strategy name back to its enum value.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "decision_makers":
		return StrategyDecisionMakers, nil
	case "department_heads":
		return StrategyDepartmentHeads, nil
	case "custom_role":
		return StrategyCustomRole, nil
	}
	return 0, eris.Errorf("search: unknown strategy %q", name)
}

// DefaultMaxContactsPerCompany bounds how many ranked contacts proceed to
// email resolution.
const DefaultMaxContactsPerCompany = 3

// ContactSearchConfig selects which discovery strategies run for a job and
// whether discovered contacts proceed to email resolution.
type ContactSearchConfig struct {
	Strategies            []Strategy `json:"strategies"`
	CustomRole            string     `json:"custom_role,omitempty"`
	MaxContactsPerCompany int        `json:"max_contacts_per_company,omitempty"`
	ResolveEmails         bool       `json:"resolve_emails,omitempty"`
}

// Validate rejects configurations that would start work with nothing to do:
// no strategy enabled, or the custom-role strategy enabled without a role.
func (c ContactSearchConfig) Validate() error {
	if len(c.Strategies) == 0 {
		return eris.New("search: no discovery strategy enabled")
	}
	for _, s := range c.Strategies {
		switch s {
		case StrategyDecisionMakers, StrategyDepartmentHeads:
		case StrategyCustomRole:
			if c.CustomRole == "" {
				return eris.New("search: custom_role strategy requires a target role")
			}
		default:
			return eris.Errorf("search: unknown strategy %d", int(s))
		}
	}
	return nil
}

// MaxContacts returns the configured per-company contact cap, defaulted.
func (c ContactSearchConfig) MaxContacts() int {
	if c.MaxContactsPerCompany > 0 {
		return c.MaxContactsPerCompany
	}
	return DefaultMaxContactsPerCompany
}

// StrategyRegistry maps strategies to the contact providers that implement
// them. The factory for building one from config lives in cmd wiring.
type StrategyRegistry struct {
	mu        sync.RWMutex
	providers map[Strategy]ContactProvider
}

// NewStrategyRegistry creates an empty strategy registry.
func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{providers: make(map[Strategy]ContactProvider)}
}

// Register binds a provider to a strategy.
func (r *StrategyRegistry) Register(s Strategy, p ContactProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[s] = p
}

// For returns the provider bound to a strategy.
func (r *StrategyRegistry) For(s Strategy) (ContactProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[s]
	return p, ok
}

// EmailRegistry manages the email providers available to the resolver,
// keyed by provider name.
type EmailRegistry struct {
	mu        sync.RWMutex
	providers map[string]EmailProvider
}

// NewEmailRegistry creates an empty email provider registry.
func NewEmailRegistry() *EmailRegistry {
	return &EmailRegistry{providers: make(map[string]EmailProvider)}
}

// Register adds a provider to the registry.
func (r *EmailRegistry) Register(p EmailProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get returns a provider by name, or nil if not registered.
func (r *EmailRegistry) Get(name string) EmailProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}

// List returns all registered provider names.
func (r *EmailRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}
