// Package export writes completed job results to spreadsheet files.
package export

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/prospector/internal/model"
)

var (
	companyHeader = []string{"Name", "Website", "Industry", "Location", "Description"}
	contactHeader = []string{"Company", "Name", "Role", "Email", "Confidence", "Completed Searches"}
)

// WriteJobResults writes the job's companies and contacts to an XLSX
// workbook at path. Jobs without results produce a workbook with only
// headers.
func WriteJobResults(path string, job *model.Job) error {
	if job == nil {
		return eris.New("export: nil job")
	}

	f := xlsx.NewFile()

	companies, err := f.AddSheet("Companies")
	if err != nil {
		return eris.Wrap(err, "export: add companies sheet")
	}
	addRow(companies, companyHeader...)

	contacts, err := f.AddSheet("Contacts")
	if err != nil {
		return eris.Wrap(err, "export: add contacts sheet")
	}
	addRow(contacts, contactHeader...)

	if job.Results != nil {
		companyNames := make(map[string]string, len(job.Results.Companies))
		for _, c := range job.Results.Companies {
			companyNames[c.ID] = c.Name
			addRow(companies, c.Name, c.Website, c.Industry, c.Location, c.Description)
		}
		for _, c := range job.Results.Contacts {
			addRow(contacts,
				companyNames[c.CompanyID],
				c.Name,
				c.Role,
				c.Email,
				formatConfidence(c.EmailConfidence),
				strings.Join(c.CompletedSearches, ", "),
			)
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}

func formatConfidence(p float64) string {
	if p == 0 {
		return ""
	}
	return fmt.Sprintf("%.0f", p)
}
