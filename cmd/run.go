package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/prospector/internal/job"
	"github.com/sells-group/prospector/internal/model"
)

var (
	runUser        string
	runQuery       string
	runType        string
	runPriority    int
	runStrategies  []string
	runCustomRole  string
	runMaxContacts int
	runCompanyIDs  []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create and execute a single job in the foreground",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		metadata := map[string]any{}
		if len(runStrategies) > 0 {
			metadata["strategies"] = runStrategies
		}
		if runCustomRole != "" {
			metadata["custom_role"] = runCustomRole
		}
		if runMaxContacts > 0 {
			metadata["max_contacts"] = runMaxContacts
		}
		if len(runCompanyIDs) > 0 {
			metadata["company_ids"] = runCompanyIDs
		}

		j, err := env.Service.CreateJob(ctx, job.CreateJobRequest{
			UserID:     runUser,
			Query:      runQuery,
			SearchType: model.SearchType(runType),
			Source:     model.SourceProgrammatic,
			Priority:   runPriority,
			Metadata:   metadata,
		})
		if err != nil {
			return eris.Wrap(err, "create job")
		}

		zap.L().Info("job created", zap.String("job_id", j.ID), zap.String("type", runType))

		if err := env.Processor.ExecuteNow(ctx, j.ID); err != nil {
			return eris.Wrap(err, "execute job")
		}

		done, err := env.Service.GetJob(ctx, j.ID, runUser)
		if err != nil {
			return eris.Wrap(err, "load job result")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(done)
	},
}

func init() {
	runCmd.Flags().StringVar(&runUser, "user", "", "owning user ID (required)")
	runCmd.Flags().StringVar(&runQuery, "query", "", "company search query")
	runCmd.Flags().StringVar(&runType, "type", "companies", "search type: companies, contacts, emails, contact_only")
	runCmd.Flags().IntVar(&runPriority, "priority", 0, "queue priority, higher runs first")
	runCmd.Flags().StringSliceVar(&runStrategies, "strategy", nil, "contact strategy: decision_makers, department_heads, custom_role")
	runCmd.Flags().StringVar(&runCustomRole, "custom-role", "", "role title for the custom_role strategy")
	runCmd.Flags().IntVar(&runMaxContacts, "max-contacts", 0, "max contacts per company")
	runCmd.Flags().StringSliceVar(&runCompanyIDs, "company-id", nil, "company IDs for contact_only jobs")
	_ = runCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(runCmd)
}
