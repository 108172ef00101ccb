package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospector/internal/model"
)

var jobsUser string

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and manage jobs",
	Long:  "Commands for listing, viewing, cancelling, and retrying jobs for a user.",
}

// -- jobs list --

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a user's jobs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		limit, _ := cmd.Flags().GetInt("limit")

		jobs, err := env.Service.ListJobs(ctx, jobsUser, limit)
		if err != nil {
			return eris.Wrap(err, "jobs list")
		}

		if len(jobs) == 0 {
			fmt.Fprintln(os.Stderr, "No jobs found.")
			return nil
		}

		formatJobsList(os.Stdout, jobs)
		return nil
	},
}

// -- jobs show --

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show full details of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		j, err := env.Service.GetJob(ctx, args[0], jobsUser)
		if err != nil {
			return eris.Wrap(err, "jobs show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(j)
	},
}

// -- jobs cancel --

var jobsCancelCmd = &cobra.Command{
	Use:   "cancel <job-id>",
	Short: "Cancel a pending job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Service.CancelJob(ctx, args[0], jobsUser); err != nil {
			return eris.Wrap(err, "jobs cancel")
		}

		fmt.Println("Job cancelled.")
		return nil
	},
}

// -- jobs retry --

var jobsRetryCmd = &cobra.Command{
	Use:   "retry <job-id>",
	Short: "Requeue a failed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Service.RetryJob(ctx, args[0], jobsUser); err != nil {
			return eris.Wrap(err, "jobs retry")
		}

		fmt.Println("Job requeued.")
		return nil
	},
}

// -- jobs credits --

var jobsCreditsCmd = &cobra.Command{
	Use:   "credits <amount>",
	Short: "Grant credits to a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var amount int
		if _, err := fmt.Sscanf(args[0], "%d", &amount); err != nil {
			return eris.Errorf("invalid amount: %s", args[0])
		}

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		balance, err := env.Store.GrantCredits(ctx, jobsUser, amount)
		if err != nil {
			return eris.Wrap(err, "grant credits")
		}

		fmt.Printf("New balance: %d\n", balance)
		return nil
	},
}

func init() {
	jobsCmd.PersistentFlags().StringVar(&jobsUser, "user", "", "owning user ID (required)")
	_ = jobsCmd.MarkPersistentFlagRequired("user")

	jobsListCmd.Flags().Int("limit", 50, "max number of jobs to display")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsCancelCmd)
	jobsCmd.AddCommand(jobsRetryCmd)
	jobsCmd.AddCommand(jobsCreditsCmd)
	rootCmd.AddCommand(jobsCmd)
}

// formatJobsList writes a tabular list of jobs to out.
func formatJobsList(out io.Writer, jobs []model.Job) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tPHASE\tRESULTS\tRETRIES\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t-----\t-------\t-------\t-------")

	for _, j := range jobs {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d/%d\t%s\n",
			truncateID(j.ID),
			j.SearchType,
			j.Status,
			j.Progress.Phase,
			j.ResultCount,
			j.RetryCount,
			j.MaxRetries,
			j.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
