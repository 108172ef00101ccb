package enrich

import (
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/sells-group/prospector/internal/model"
	"github.com/sells-group/prospector/internal/search"
)

var foldCaser = cases.Fold()

// normalizeName lowercases via Unicode case folding and collapses internal
// whitespace, so "José  GARCÍA" and "josé garcía" dedupe to the same contact.
func normalizeName(name string) string {
	folded := foldCaser.String(strings.TrimSpace(name))
	return strings.Join(strings.Fields(folded), " ")
}

// matchExisting finds a stored contact for a candidate: case-insensitive
// email match first, then normalized-name match.
func matchExisting(existing []model.Contact, cand search.ContactCandidate) *model.Contact {
	if cand.Email != "" {
		candEmail := strings.ToLower(strings.TrimSpace(cand.Email))
		for i := range existing {
			if existing[i].Email != "" && strings.ToLower(existing[i].Email) == candEmail {
				return &existing[i]
			}
		}
	}
	candName := normalizeName(cand.Name)
	for i := range existing {
		if normalizeName(existing[i].Name) == candName {
			return &existing[i]
		}
	}
	return nil
}

// mergeCandidate folds a candidate into an existing contact: non-empty
// candidate fields win, empty candidate fields never erase stored values, and
// a stored email is never replaced (email resolution owns email updates).
// The job tag is unioned in and the validation timestamp refreshed.
func mergeCandidate(c *model.Contact, cand search.ContactCandidate, jobTag string, now time.Time) {
	if cand.Role != "" {
		c.Role = cand.Role
	}
	if cand.Probability > 0 {
		c.Probability = cand.Probability
	}
	if c.Email == "" && cand.Email != "" {
		c.Email = strings.TrimSpace(cand.Email)
	}
	c.AddSearchTag(jobTag)
	c.LastValidated = &now
	c.UpdatedAt = now
}
