package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"msacli/internal/config"
	"msacli/internal/files"
	"msacli/internal/operations"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		sheet        string
		month        string
		analyzer     string
		region       string
		includeValue bool
		export       bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [workbook.xlsx]",
		Short: "Run market share analysis against one workbook (default: the newest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}
			defer cli.close()

			var workbook string
			if len(args) > 0 {
				workbook = args[0]
			} else {
				workbook, err = latestWorkbook(cli, month)
				if err != nil {
					return err
				}
			}

			svc := cli.newAnalysisService()
			state, err := svc.RunSync(cmd.Context(), operations.Request{
				Workbook:     workbook,
				Sheet:        sheet,
				Month:        month,
				Analyzer:     analyzer,
				Region:       region,
				IncludeValue: includeValue,
				Export:       export,
			})
			if err != nil {
				return err
			}

			printResults(cmd.OutOrStdout(), state)
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Worksheet name (default: first sheet)")
	cmd.Flags().StringVar(&month, "month", "", `Period folder, e.g. "Jan 2026"`)
	cmd.Flags().StringVar(&analyzer, "analyzer", config.ConsolidatedAnalyzer, "Analyzer name, or Consolidated for all")
	cmd.Flags().StringVar(&region, "region", "", "Filter rows to one region")
	cmd.Flags().BoolVar(&includeValue, "value", false, "Include value market share (volume x test price)")
	cmd.Flags().BoolVar(&export, "export", false, "Write Excel and CSV exports")

	return cmd
}

// latestWorkbook picks the most recently modified workbook in the
// input tree when no explicit name was given.
func latestWorkbook(cli *cliContext, month string) (string, error) {
	workbooks, err := cli.discovery.ListWorkbooks(month)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", errors.New("no workbooks found, add one to the input directory")
		}
		return "", err
	}
	latest, ok := files.GetLatestFile(workbooks)
	if !ok {
		return "", errors.New("no workbooks found, add one to the input directory")
	}
	return latest.Path, nil
}

func printResults(w interface{ Write([]byte) (int, error) }, state *operations.RunState) {
	for _, result := range state.GetResults() {
		fmt.Fprintf(w, "\n%s\n", result.Analyzer)

		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "BRAND\tYEARLY VOLUME\tSHARE")
		for _, share := range result.MarketShare {
			fmt.Fprintf(tw, "%s\t%.2f\t%.1f%%\n",
				share.Brand, result.BrandTotals[share.Brand], share.Share)
		}
		tw.Flush()

		if len(result.ValueShare) > 0 {
			fmt.Fprintln(w, "\nValue share:")
			vw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			for _, share := range result.ValueShare {
				fmt.Fprintf(vw, "%s\t%.2f\t%.1f%%\n",
					share.Brand, result.BrandValues[share.Brand], share.Share)
			}
			vw.Flush()
		}

		fmt.Fprintf(w, "\nSites: %d  Cities: %d  Total volume: %.2f\n",
			result.Summary.TotalSites,
			result.Summary.UniqueCities,
			result.Summary.TotalVolume)
	}

	if paths := state.GetExportPaths(); len(paths) > 0 {
		fmt.Fprintln(w, "\nExports:")
		for _, path := range paths {
			fmt.Fprintf(w, "  %s\n", path)
		}
	}
}

func newSheetsCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "sheets [workbook.xlsx]",
		Short: "List the worksheets in a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}
			defer cli.close()

			svc := cli.newDataService()
			sheets, err := svc.ListSheets(cmd.Context(), args[0], month)
			if err != nil {
				return err
			}
			for _, sheet := range sheets {
				fmt.Fprintln(cmd.OutOrStdout(), sheet)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", `Period folder, e.g. "Jan 2026"`)
	return cmd
}

func newWorkbooksCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "workbooks",
		Short: "List the workbooks available for analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli, err := newCLIContext()
			if err != nil {
				return err
			}
			defer cli.close()

			if month == "" {
				months, err := cli.discovery.ListMonths()
				if err != nil {
					return err
				}
				if len(months) > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Periods:")
					for _, m := range months {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", m)
					}
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}

			workbooks, err := cli.discovery.ListWorkbooks(month)
			if err != nil {
				if errors.Is(err, os.ErrNotExist) {
					return nil
				}
				return err
			}
			for _, wb := range workbooks {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d bytes\n", wb.Name, wb.Size)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", `Period folder, e.g. "Jan 2026"`)
	return cmd
}
