package providers

import (
	"context"
	"strings"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/pkg/hunter"
)

// HunterEmails is the primary email finder tier.
type HunterEmails struct {
	client hunter.Client
}

// NewHunterEmails creates the Hunter email provider.
func NewHunterEmails(client hunter.Client) *HunterEmails {
	return &HunterEmails{client: client}
}

func (p *HunterEmails) Name() string { return "hunter" }

func (p *HunterEmails) FindEmail(ctx context.Context, contact model.Contact, company model.Company) (search.EmailResult, error) {
	result, err := p.client.EmailFinder(ctx, hunter.EmailFinderRequest{
		Domain:   normalizeDomain(company.Website),
		Company:  company.Name,
		FullName: contact.Name,
	})
	if err != nil {
		return search.EmailResult{}, err
	}
	if result.Email == "" {
		return search.EmailResult{}, nil
	}
	return search.EmailResult{
		Email:      result.Email,
		Confidence: float64(result.Score),
	}, nil
}

// normalizeDomain strips scheme and path from a website value.
func normalizeDomain(website string) string {
	d := strings.TrimSpace(website)
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return d
}
