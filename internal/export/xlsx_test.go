package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospector/internal/model"
)

func TestWriteJobResults(t *testing.T) {
	job := &model.Job{
		ID: "job-1",
		Results: &model.JobResults{
			Companies: []model.Company{
				{ID: "co-1", Name: "Acme Corp", Website: "acme.com", Industry: "Manufacturing", Location: "Toledo, OH"},
				{ID: "co-2", Name: "Globex", Website: "globex.io"},
			},
			Contacts: []model.Contact{
				{
					CompanyID:         "co-1",
					Name:              "Alice Alpha",
					Role:              "CEO",
					Email:             "alice@acme.com",
					Probability:       0.9,
					EmailConfidence:   90,
					CompletedSearches: []string{"email:hunter"},
				},
				{CompanyID: "co-2", Name: "Bob Beta", Role: "CTO"},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "results.xlsx")
	require.NoError(t, WriteJobResults(path, job))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheets, 2)

	companies := f.Sheet["Companies"]
	require.NotNil(t, companies)
	require.Len(t, companies.Rows, 3)
	assert.Equal(t, "Name", companies.Rows[0].Cells[0].Value)
	assert.Equal(t, "Acme Corp", companies.Rows[1].Cells[0].Value)
	assert.Equal(t, "acme.com", companies.Rows[1].Cells[1].Value)
	assert.Equal(t, "Globex", companies.Rows[2].Cells[0].Value)

	contacts := f.Sheet["Contacts"]
	require.NotNil(t, contacts)
	require.Len(t, contacts.Rows, 3)

	alice := contacts.Rows[1].Cells
	assert.Equal(t, "Acme Corp", alice[0].Value)
	assert.Equal(t, "Alice Alpha", alice[1].Value)
	assert.Equal(t, "alice@acme.com", alice[3].Value)
	assert.Equal(t, "90", alice[4].Value)
	assert.Equal(t, "email:hunter", alice[5].Value)

	bob := contacts.Rows[2].Cells
	assert.Equal(t, "Globex", bob[0].Value)
	assert.Equal(t, "", bob[3].Value)
	assert.Equal(t, "", bob[4].Value)
}

func TestWriteJobResults_NoResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteJobResults(path, &model.Job{ID: "job-2"}))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, f.Sheet["Companies"].Rows, 1)
	require.Len(t, f.Sheet["Contacts"].Rows, 1)
}

func TestWriteJobResults_NilJob(t *testing.T) {
	err := WriteJobResults(filepath.Join(t.TempDir(), "x.xlsx"), nil)
	assert.Error(t, err)
}
