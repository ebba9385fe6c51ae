package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	"github.com/KaramelBytes/mortstat/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaFormat     string
	anaOutputPath string
	anaSeed       int64
	anaClusters   int
	anaYears      int
	anaMethod     string
	anaTopN       int
	anaRegions    bool
	anaPredictors []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Run every analysis over a dataset and print a full report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt, err := reportOptions(filepath.Base(path))
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("seed") {
			opt.Seed = anaSeed
		}
		if flags.Changed("clusters") {
			opt.Clusters = anaClusters
		}
		if flags.Changed("years") {
			opt.ForecastYears = anaYears
		}
		if flags.Changed("method") {
			m, err := analysis.ParseForecastMethod(anaMethod)
			if err != nil {
				return err
			}
			opt.ForecastMethod = m
		}
		if flags.Changed("top") {
			opt.TopN = anaTopN
		}
		if flags.Changed("regions") {
			opt.IncludeRegions = anaRegions
		}
		if len(anaPredictors) > 0 {
			opt.Predictors = anaPredictors
		}

		records, err := loadRecords(path)
		if err != nil {
			return err
		}
		rep, err := analysis.BuildReport(records, opt)
		if err != nil {
			return err
		}
		body, err := renderReport(rep, anaFormat)
		if err != nil {
			return err
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, body); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			success(out(cmd), "Wrote analysis to %s", anaOutputPath)
			return nil
		}
		fmt.Fprintln(out(cmd), string(body))
		return nil
	},
}

// reportFormat normalizes the --format value to "markdown" or "json".
func reportFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "markdown", "md":
		return "markdown", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported --format: %s (use markdown|json)", format)
	}
}

// renderReport encodes a report as markdown or indented JSON.
func renderReport(rep *analysis.Report, format string) ([]byte, error) {
	f, err := reportFormat(format)
	if err != nil {
		return nil, err
	}
	if f == "json" {
		return utils.PrettyJSON(rep)
	}
	return []byte(rep.Markdown()), nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "markdown", "output format: markdown | json")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the report to a file instead of stdout")
	analyzeCmd.Flags().Int64Var(&anaSeed, "seed", 0, "k-means seed (0 = random; overrides config)")
	analyzeCmd.Flags().IntVarP(&anaClusters, "clusters", "k", 3, "number of country clusters (overrides config)")
	analyzeCmd.Flags().IntVar(&anaYears, "years", 5, "forecast horizon in years (overrides config)")
	analyzeCmd.Flags().StringVar(&anaMethod, "method", "arima", "forecast method: arima | linear (overrides config)")
	analyzeCmd.Flags().IntVarP(&anaTopN, "top", "n", 10, "countries listed in the highest/lowest tables (overrides config)")
	analyzeCmd.Flags().BoolVar(&anaRegions, "regions", false, "break year trends down by region (overrides config)")
	analyzeCmd.Flags().StringSliceVar(&anaPredictors, "predictors", nil, "regression predictors (comma-separated; overrides config)")
}
