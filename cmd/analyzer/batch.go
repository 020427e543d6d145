package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"msacli/internal/config"
	"msacli/internal/operations"
)

func newBatchCmd() *cobra.Command {
	var (
		month    string
		analyzer string
		region   string
		export   bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Analyze every workbook in a period folder",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}
			defer cli.close()

			workbooks, err := cli.discovery.ListWorkbooks(month)
			if err != nil {
				return err
			}
			if len(workbooks) == 0 {
				return fmt.Errorf("no workbooks found for period %q", month)
			}

			svc := cli.newAnalysisService()
			failures := 0
			for _, wb := range workbooks {
				fmt.Fprintf(cmd.OutOrStdout(), "==> %s\n", wb.Name)

				state, err := svc.RunSync(cmd.Context(), operations.Request{
					Workbook: wb.Name,
					Month:    month,
					Analyzer: analyzer,
					Region:   region,
					Export:   export,
				})
				if err != nil {
					failures++
					fmt.Fprintf(cmd.ErrOrStderr(), "    failed: %v\n", err)
					continue
				}
				printResults(cmd.OutOrStdout(), state)
			}

			if failures > 0 {
				return fmt.Errorf("%d of %d workbooks failed", failures, len(workbooks))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", `Period folder, e.g. "Jan 2026"`)
	cmd.Flags().StringVar(&analyzer, "analyzer", config.ConsolidatedAnalyzer, "Analyzer name, or Consolidated for all")
	cmd.Flags().StringVar(&region, "region", "", "Filter rows to one region")
	cmd.Flags().BoolVar(&export, "export", false, "Write Excel and CSV exports")

	return cmd
}
