package search

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/resilience"
)

// RateLimit holds per-provider throttle settings.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second" mapstructure:"per_second"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

func newLimiter(rl RateLimit) *rate.Limiter {
	if rl.PerSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	burst := rl.Burst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rl.PerSecond), burst)
}

// ThrottledEmailProvider wraps an EmailProvider with a token-bucket rate
// limiter and bounded retry on transient failures.
type ThrottledEmailProvider struct {
	inner   EmailProvider
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// ThrottleEmail decorates p with the given rate limit and retry policy.
func ThrottleEmail(p EmailProvider, rl RateLimit, retry resilience.RetryConfig) *ThrottledEmailProvider {
	return &ThrottledEmailProvider{inner: p, limiter: newLimiter(rl), retry: retry}
}

func (p *ThrottledEmailProvider) Name() string { return p.inner.Name() }

func (p *ThrottledEmailProvider) FindEmail(ctx context.Context, contact model.Contact, company model.Company) (EmailResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return EmailResult{}, err
	}
	return resilience.DoVal(ctx, p.retry, func(ctx context.Context) (EmailResult, error) {
		return p.inner.FindEmail(ctx, contact, company)
	})
}

// ThrottledContactProvider wraps a ContactProvider the same way.
type ThrottledContactProvider struct {
	inner   ContactProvider
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// ThrottleContacts decorates p with the given rate limit and retry policy.
func ThrottleContacts(p ContactProvider, rl RateLimit, retry resilience.RetryConfig) *ThrottledContactProvider {
	return &ThrottledContactProvider{inner: p, limiter: newLimiter(rl), retry: retry}
}

func (p *ThrottledContactProvider) FindContacts(ctx context.Context, query string, cfg ContactSearchConfig) ([]ContactCandidate, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return resilience.DoVal(ctx, p.retry, func(ctx context.Context) ([]ContactCandidate, error) {
		return p.inner.FindContacts(ctx, query, cfg)
	})
}

// ThrottledCompanyProvider wraps a CompanyProvider the same way.
type ThrottledCompanyProvider struct {
	inner   CompanyProvider
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// ThrottleCompanies decorates p with the given rate limit and retry policy.
func ThrottleCompanies(p CompanyProvider, rl RateLimit, retry resilience.RetryConfig) *ThrottledCompanyProvider {
	return &ThrottledCompanyProvider{inner: p, limiter: newLimiter(rl), retry: retry}
}

func (p *ThrottledCompanyProvider) SearchCompanies(ctx context.Context, query string, limit int) ([]CompanyResult, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return resilience.DoVal(ctx, p.retry, func(ctx context.Context) ([]CompanyResult, error) {
		return p.inner.SearchCompanies(ctx, query, limit)
	})
}
