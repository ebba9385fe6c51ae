package cmd

import (
	"fmt"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	"github.com/KaramelBytes/mortstat/internal/dataset"
	"github.com/spf13/cobra"
)

var (
	statsFields []string

	corrX string
	corrY string
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Descriptive statistics for numeric fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(args[0])
		if err != nil {
			return err
		}
		fields := statsFields
		if len(fields) == 0 {
			fields = dataset.NumericFields()
		}
		t := newTable(out(cmd), "Field", "Mean", "Median", "Std Dev", "Min", "Max", "Total")
		for _, f := range fields {
			vals, err := dataset.Values(records, f)
			if err != nil {
				return err
			}
			s := analysis.ComputeStatistics(vals)
			t.Append([]string{dataset.Label(f), f2(s.Mean), f2(s.Median), f2(s.StdDev), f2(s.Min), f2(s.Max), f2(s.Total)})
		}
		heading(out(cmd), fmt.Sprintf("Statistics (%d records)", len(records)))
		t.Render()
		return nil
	},
}

var correlateCmd = &cobra.Command{
	Use:   "correlate <file>",
	Short: "Pearson correlations between numeric fields",
	Long: `Without --x/--y the standard pairs are reported (rate vs GDP, rate vs population).
With both flags set, the single requested pair is computed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if (corrX == "") != (corrY == "") {
			return fmt.Errorf("--x and --y must be given together")
		}
		records, err := loadRecords(args[0])
		if err != nil {
			return err
		}
		var results []analysis.CorrelationResult
		if corrX != "" {
			r, err := analysis.CorrelateFields(records, corrX, corrY)
			if err != nil {
				return err
			}
			results = append(results, r)
		} else {
			results = analysis.AnalyzeCorrelations(records)
		}
		t := newTable(out(cmd), "Variable 1", "Variable 2", "r", "Strength")
		for _, r := range results {
			t.Append([]string{r.Variable1, r.Variable2, fmt.Sprintf("%.3f", r.Coefficient), r.Strength})
		}
		heading(out(cmd), "Correlations")
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(correlateCmd)
	statsCmd.Flags().StringSliceVar(&statsFields, "field", nil, "numeric fields to describe (repeatable; default all)")
	correlateCmd.Flags().StringVar(&corrX, "x", "", "first numeric field")
	correlateCmd.Flags().StringVar(&corrY, "y", "", "second numeric field")
}
