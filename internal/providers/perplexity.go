// Package providers adapts the external API clients in pkg/ to the search
// provider interfaces consumed by the orchestration layer.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/pkg/perplexity"
)

const companyPrompt = `Find up to %d real companies matching this search: %q.
Respond with only a JSON array, no prose. Each element must have the keys
"name", "website", "industry", "location", "description". Use "" for
anything unknown.`

// PerplexityCompanies discovers companies with a structured Perplexity query.
type PerplexityCompanies struct {
	client perplexity.Client
}

// NewPerplexityCompanies creates a company discovery provider.
func NewPerplexityCompanies(client perplexity.Client) *PerplexityCompanies {
	return &PerplexityCompanies{client: client}
}

func (p *PerplexityCompanies) SearchCompanies(ctx context.Context, query string, limit int) ([]search.CompanyResult, error) {
	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "user", Content: fmt.Sprintf(companyPrompt, limit, query)},
		},
	})
	if err != nil {
		return nil, err
	}

	var results []search.CompanyResult
	if err := json.Unmarshal([]byte(extractJSON(resp.Content())), &results); err != nil {
		return nil, eris.Wrap(err, "providers: parse company results")
	}

	// Drop nameless rows and enforce the limit model-side answers ignore.
	out := results[:0]
	for _, r := range results {
		if strings.TrimSpace(r.Name) == "" {
			continue
		}
		out = append(out, r)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

const emailPrompt = `What is the work email address of %s (%s) at %s (%s)?
Respond with only the email address, or the single word "unknown" if you
cannot find one with confidence.`

// PerplexityEmails answers email lookups from public sources. It is the last
// fallback tier: low confidence, broad reach.
type PerplexityEmails struct {
	client perplexity.Client
}

// NewPerplexityEmails creates the Perplexity email provider.
func NewPerplexityEmails(client perplexity.Client) *PerplexityEmails {
	return &PerplexityEmails{client: client}
}

func (p *PerplexityEmails) Name() string { return "perplexity" }

func (p *PerplexityEmails) FindEmail(ctx context.Context, contact model.Contact, company model.Company) (search.EmailResult, error) {
	resp, err := p.client.ChatCompletion(ctx, perplexity.ChatCompletionRequest{
		Messages: []perplexity.Message{
			{Role: "user", Content: fmt.Sprintf(emailPrompt, contact.Name, contact.Role, company.Name, company.Website)},
		},
	})
	if err != nil {
		return search.EmailResult{}, err
	}

	answer := strings.TrimSpace(resp.Content())
	if answer == "" || strings.EqualFold(answer, "unknown") || !strings.Contains(answer, "@") {
		return search.EmailResult{}, nil
	}
	if strings.ContainsAny(answer, " \n") {
		zap.L().Debug("providers: discarding prose email answer", zap.String("answer", answer))
		return search.EmailResult{}, nil
	}
	return search.EmailResult{Email: answer, Confidence: 60}, nil
}

// extractJSON strips markdown code fences and any prose around the first
// JSON array in a model response.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "```"); start >= 0 {
		s = s[start+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
	}
	if start := strings.Index(s, "["); start >= 0 {
		if end := strings.LastIndex(s, "]"); end > start {
			return s[start : end+1]
		}
	}
	return strings.TrimSpace(s)
}
