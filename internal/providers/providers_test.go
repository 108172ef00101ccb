package providers

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/search"
	"github.com/sells-group/prospector/pkg/apollo"
	"github.com/sells-group/prospector/pkg/hunter"
	"github.com/sells-group/prospector/pkg/perplexity"
)

// scriptedChat returns canned completion content.
type scriptedChat struct {
	content string
	err     error
	lastReq perplexity.ChatCompletionRequest
}

func (s *scriptedChat) ChatCompletion(_ context.Context, req perplexity.ChatCompletionRequest) (*perplexity.ChatCompletionResponse, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &perplexity.ChatCompletionResponse{
		Choices: []perplexity.Choice{{Message: perplexity.Message{Role: "assistant", Content: s.content}}},
	}, nil
}

func TestPerplexityCompanies_ParsesFencedJSON(t *testing.T) {
	chat := &scriptedChat{content: "Here you go:\n```json\n[" +
		`{"name": "Acme", "website": "acme.com", "industry": "Manufacturing", "location": "Ohio", "description": "Widgets"},` +
		`{"name": "Globex", "website": "globex.com"},` +
		`{"name": ""}` +
		"]\n```"}

	p := NewPerplexityCompanies(chat)
	results, err := p.SearchCompanies(context.Background(), "manufacturers in ohio", 10)
	require.NoError(t, err)
	require.Len(t, results, 2, "nameless rows are dropped")
	assert.Equal(t, "Acme", results[0].Name)
	assert.Equal(t, "globex.com", results[1].Website)
}

func TestPerplexityCompanies_EnforcesLimit(t *testing.T) {
	chat := &scriptedChat{content: `[{"name": "A"}, {"name": "B"}, {"name": "C"}]`}

	p := NewPerplexityCompanies(chat)
	results, err := p.SearchCompanies(context.Background(), "anything", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestPerplexityCompanies_BadPayload(t *testing.T) {
	chat := &scriptedChat{content: "I could not find any companies."}

	p := NewPerplexityCompanies(chat)
	_, err := p.SearchCompanies(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse company results")
}

func TestPerplexityEmails_Answers(t *testing.T) {
	contact := model.Contact{Name: "Avery Gray", Role: "CEO"}
	company := model.Company{Name: "Acme", Website: "acme.com"}
	p := NewPerplexityEmails(nil)

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"plain address", "avery@acme.com", "avery@acme.com"},
		{"unknown", "unknown", ""},
		{"prose answer", "The email is probably avery@acme.com", ""},
		{"no at sign", "acme.com", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.client = &scriptedChat{content: tt.content}
			result, err := p.FindEmail(context.Background(), contact, company)
			require.NoError(t, err)
			assert.Equal(t, tt.want, result.Email)
		})
	}
}

// scriptedApollo returns canned apollo responses.
type scriptedApollo struct {
	people     []apollo.Person
	match      *apollo.Person
	lastSearch apollo.PeopleSearchRequest
	err        error
}

func (s *scriptedApollo) PeopleSearch(_ context.Context, req apollo.PeopleSearchRequest) (*apollo.PeopleSearchResponse, error) {
	s.lastSearch = req
	if s.err != nil {
		return nil, s.err
	}
	return &apollo.PeopleSearchResponse{People: s.people}, nil
}

func (s *scriptedApollo) EmailMatch(_ context.Context, _ apollo.EmailMatchRequest) (*apollo.EmailMatchResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &apollo.EmailMatchResponse{Person: s.match}, nil
}

func TestApolloContacts_MapsPeople(t *testing.T) {
	client := &scriptedApollo{people: []apollo.Person{
		{Name: "Avery Gray", Title: "CEO", Email: "avery@acme.com", EmailStatus: "verified"},
		{Name: "Jordan Lee", Title: "CTO", Email: "jordan@acme.com", EmailStatus: "guessed"},
		{Name: "  "},
	}}

	p := NewApolloContacts(client)
	cfg := search.ContactSearchConfig{Strategies: []search.Strategy{search.StrategyDecisionMakers}}
	candidates, err := p.FindContacts(context.Background(), "Acme acme.com", cfg)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	// Verified emails pass through; guessed ones go to the resolver instead.
	assert.Equal(t, "avery@acme.com", candidates[0].Email)
	assert.Empty(t, candidates[1].Email)
	assert.Greater(t, candidates[0].Probability, candidates[1].Probability)

	// The trailing domain becomes an organization filter.
	assert.Equal(t, "Acme", client.lastSearch.QOrganizationName)
	assert.Equal(t, []string{"acme.com"}, client.lastSearch.OrganizationURLs)
	assert.Contains(t, client.lastSearch.PersonTitles, "CEO")
}

func TestApolloContacts_CustomRoleTitles(t *testing.T) {
	client := &scriptedApollo{}
	p := NewApolloContacts(client)

	cfg := search.ContactSearchConfig{
		Strategies: []search.Strategy{search.StrategyCustomRole},
		CustomRole: "Plant Manager",
	}
	_, err := p.FindContacts(context.Background(), "Acme", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Plant Manager"}, client.lastSearch.PersonTitles)
}

func TestApolloEmails(t *testing.T) {
	contact := model.Contact{Name: "Avery Gray"}
	company := model.Company{Name: "Acme", Website: "acme.com"}

	p := NewApolloEmails(&scriptedApollo{match: &apollo.Person{Email: "avery@acme.com", EmailStatus: "verified"}})
	result, err := p.FindEmail(context.Background(), contact, company)
	require.NoError(t, err)
	assert.Equal(t, "avery@acme.com", result.Email)
	assert.InDelta(t, 90, result.Confidence, 0.001)

	p = NewApolloEmails(&scriptedApollo{match: nil})
	result, err = p.FindEmail(context.Background(), contact, company)
	require.NoError(t, err)
	assert.Empty(t, result.Email)

	p = NewApolloEmails(&scriptedApollo{err: eris.New("boom")})
	_, err = p.FindEmail(context.Background(), contact, company)
	require.Error(t, err)
}

// scriptedHunter returns a canned finder result.
type scriptedHunter struct {
	result  hunter.EmailFinderResult
	lastReq hunter.EmailFinderRequest
}

func (s *scriptedHunter) EmailFinder(_ context.Context, req hunter.EmailFinderRequest) (*hunter.EmailFinderResult, error) {
	s.lastReq = req
	return &s.result, nil
}

func TestHunterEmails_NormalizesDomain(t *testing.T) {
	client := &scriptedHunter{result: hunter.EmailFinderResult{Email: "avery@acme.com", Score: 88}}
	p := NewHunterEmails(client)

	result, err := p.FindEmail(context.Background(),
		model.Contact{Name: "Avery Gray"},
		model.Company{Name: "Acme", Website: "https://www.acme.com/about"},
	)
	require.NoError(t, err)
	assert.Equal(t, "avery@acme.com", result.Email)
	assert.InDelta(t, 88, result.Confidence, 0.001)
	assert.Equal(t, "acme.com", client.lastReq.Domain)
}

func TestSplitCompanyQuery(t *testing.T) {
	tests := []struct {
		query      string
		wantName   string
		wantDomain string
	}{
		{"Acme acme.com", "Acme", "acme.com"},
		{"Acme Corp", "Acme Corp", ""},
		{"acme.com", "", "acme.com"},
		{"", "", ""},
	}
	for _, tt := range tests {
		name, domain := splitCompanyQuery(tt.query)
		assert.Equal(t, tt.wantName, name, tt.query)
		assert.Equal(t, tt.wantDomain, domain, tt.query)
	}
}
