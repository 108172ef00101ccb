package resolver

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// FallbackConfig assigns one Tier-2 provider to a fixed subset of contact
// slots. Slots are 1-based ranks by confidence; slot 1 is the
// highest-confidence contact.
type FallbackConfig struct {
	Provider string `yaml:"provider"`
	Slots    []int  `yaml:"slots"`
}

// Config controls the tiered email resolution cascade for one company.
type Config struct {
	// MaxContacts caps how many ranked contacts enter the cascade.
	MaxContacts int `yaml:"max_contacts"`

	// Primary names the Tier-1 provider, run for every contact in parallel.
	Primary string `yaml:"primary"`

	// EscalationThreshold is the minimum number of emails Tier 1 must newly
	// find for Tier 2 to be skipped. Already-known emails do not count.
	EscalationThreshold int `yaml:"escalation_threshold"`

	// Fallbacks are the Tier-2 providers with their fixed slot assignments.
	Fallbacks []FallbackConfig `yaml:"fallbacks"`
}

// DefaultConfig returns the standard cascade: a cheap primary across all
// slots, and two fallbacks arranged so slot 1 always gets two independent
// attempts while lower slots get at most one.
func DefaultConfig() Config {
	return Config{
		MaxContacts:         3,
		Primary:             "hunter",
		EscalationThreshold: 1,
		Fallbacks: []FallbackConfig{
			{Provider: "apollo", Slots: []int{1, 3}},
			{Provider: "perplexity", Slots: []int{1, 2}},
		},
	}
}

// LoadConfig reads resolver config from a YAML file, filling unset fields
// from DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "resolver: read config %s", path)
	}

	// The YAML has a top-level "email_tiers" key.
	var wrapper struct {
		EmailTiers Config `yaml:"email_tiers"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return Config{}, eris.Wrap(err, "resolver: parse config")
	}

	cfg := wrapper.EmailTiers
	def := DefaultConfig()
	if cfg.MaxContacts <= 0 {
		cfg.MaxContacts = def.MaxContacts
	}
	if cfg.Primary == "" {
		cfg.Primary = def.Primary
	}
	if cfg.EscalationThreshold <= 0 {
		cfg.EscalationThreshold = def.EscalationThreshold
	}
	if len(cfg.Fallbacks) == 0 {
		cfg.Fallbacks = def.Fallbacks
	}
	return cfg, nil
}
