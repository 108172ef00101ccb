package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospector/internal/export"
)

var (
	exportUser string
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export <job-id>",
	Short: "Export a completed job's results to an XLSX workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		j, err := env.Service.GetJob(ctx, args[0], exportUser)
		if err != nil {
			return eris.Wrap(err, "load job")
		}

		out := exportOut
		if out == "" {
			out = fmt.Sprintf("%s.xlsx", truncateID(j.ID))
		}

		if err := export.WriteJobResults(out, j); err != nil {
			return err
		}

		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "owning user ID (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default <job-id>.xlsx)")
	_ = exportCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(exportCmd)
}
