package providers

import (
	"context"
	"strings"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/pkg/apollo"
)

// Title sets per discovery strategy.
var (
	decisionMakerTitles = []string{"CEO", "Founder", "Owner", "President", "Managing Partner"}
	departmentTitles    = []string{"VP of Sales", "Head of Marketing", "Director of Operations", "CFO", "CTO"}
)

// ApolloContacts finds decision-maker contacts via Apollo people search.
type ApolloContacts struct {
	client apollo.Client
}

// NewApolloContacts creates a contact discovery provider.
func NewApolloContacts(client apollo.Client) *ApolloContacts {
	return &ApolloContacts{client: client}
}

func (p *ApolloContacts) FindContacts(ctx context.Context, query string, cfg search.ContactSearchConfig) ([]search.ContactCandidate, error) {
	name, domain := splitCompanyQuery(query)

	req := apollo.PeopleSearchRequest{
		QOrganizationName: name,
		PersonTitles:      titlesFor(cfg),
		PerPage:           cfg.MaxContacts(),
	}
	if domain != "" {
		req.OrganizationURLs = []string{domain}
	}

	resp, err := p.client.PeopleSearch(ctx, req)
	if err != nil {
		return nil, err
	}

	candidates := make([]search.ContactCandidate, 0, len(resp.People))
	for _, person := range resp.People {
		if strings.TrimSpace(person.Name) == "" {
			continue
		}
		candidates = append(candidates, search.ContactCandidate{
			Name:        person.Name,
			Role:        person.Title,
			Email:       verifiedEmail(person),
			Probability: probabilityFor(person),
		})
	}
	return candidates, nil
}

// ApolloEmails resolves emails via the Apollo person-match endpoint. It runs
// in the fallback tier behind the primary finder.
type ApolloEmails struct {
	client apollo.Client
}

// NewApolloEmails creates the Apollo email provider.
func NewApolloEmails(client apollo.Client) *ApolloEmails {
	return &ApolloEmails{client: client}
}

func (p *ApolloEmails) Name() string { return "apollo" }

func (p *ApolloEmails) FindEmail(ctx context.Context, contact model.Contact, company model.Company) (search.EmailResult, error) {
	resp, err := p.client.EmailMatch(ctx, apollo.EmailMatchRequest{
		Name:             contact.Name,
		OrganizationName: company.Name,
		Domain:           company.Website,
		RevealEmail:      true,
	})
	if err != nil {
		return search.EmailResult{}, err
	}
	if resp.Person == nil || resp.Person.Email == "" {
		return search.EmailResult{}, nil
	}
	return search.EmailResult{
		Email:      resp.Person.Email,
		Confidence: probabilityFor(*resp.Person) * 100,
	}, nil
}

// titlesFor expands the enabled strategies into Apollo title filters.
func titlesFor(cfg search.ContactSearchConfig) []string {
	var titles []string
	for _, s := range cfg.Strategies {
		switch s {
		case search.StrategyDecisionMakers:
			titles = append(titles, decisionMakerTitles...)
		case search.StrategyDepartmentHeads:
			titles = append(titles, departmentTitles...)
		case search.StrategyCustomRole:
			titles = append(titles, cfg.CustomRole)
		}
	}
	return titles
}

// verifiedEmail returns the person's email only when Apollo marks it
// verified; guessed addresses go through the resolver cascade instead.
func verifiedEmail(p apollo.Person) string {
	if p.EmailStatus == "verified" {
		return p.Email
	}
	return ""
}

func probabilityFor(p apollo.Person) float64 {
	if p.EmailStatus == "verified" {
		return 0.9
	}
	return 0.6
}

// splitCompanyQuery pulls an optional trailing domain off a
// "{name} {website}" query.
func splitCompanyQuery(query string) (name, domain string) {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "", ""
	}
	last := fields[len(fields)-1]
	if strings.Contains(last, ".") && !strings.ContainsAny(last, " /") {
		return strings.Join(fields[:len(fields)-1], " "), last
	}
	return query, ""
}
