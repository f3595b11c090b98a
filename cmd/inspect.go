package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/choromap/internal/pipeline"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load, filter, and join the inputs, then print a summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := pipeline.Prepare(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "regions retained: %d (excluded by allow-list: %d)\n", len(result.Regions), result.Excluded)
		fmt.Fprintf(out, "metric records:   %d\n", len(result.Metrics))
		fmt.Fprintf(out, "metric layers:    %d\n\n", len(result.Defs))

		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "METRIC\tMATCHED\tMIN\tMAX")
		for _, def := range result.Defs {
			matched := 0
			min, max := 0.0, 0.0
			for _, r := range result.Regions {
				v, ok := r.Value(def.Column)
				if !ok {
					continue
				}
				if matched == 0 || v < min {
					min = v
				}
				if matched == 0 || v > max {
					max = v
				}
				matched++
			}
			fmt.Fprintf(w, "%s\t%d/%d\t%g\t%g\n", def.Label, matched, len(result.Regions), min, max)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		var unmatched []string
		for _, r := range result.Regions {
			if r.Metrics == nil {
				unmatched = append(unmatched, r.Code)
			}
		}
		if len(unmatched) > 0 {
			fmt.Fprintf(out, "\nregions with no metric record: %v\n", unmatched)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
