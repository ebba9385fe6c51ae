package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	"github.com/KaramelBytes/mortstat/internal/chart"
	"github.com/spf13/cobra"
)

var (
	topN int

	trRegions bool
	trPlot    string
)

var topCmd = &cobra.Command{
	Use:   "top <file>",
	Short: "Countries with the highest and lowest average rates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(args[0])
		if err != nil {
			return err
		}
		n := cfg.TopN
		if cmd.Flags().Changed("top") {
			n = topN
		}
		highest, lowest := analysis.TopCountries(records, n)
		w := out(cmd)
		heading(w, "Highest rates")
		countryTable(w, highest)
		heading(w, "Lowest rates")
		countryTable(w, lowest)
		return nil
	},
}

func countryTable(w io.Writer, rows []analysis.CountryRate) {
	t := newTable(w, "#", "Country", "Avg Rate", "Total Suicides", "Years")
	for i, r := range rows {
		t.Append([]string{fmt.Sprintf("%d", i+1), r.Country, f2(r.AvgRate), fmt.Sprintf("%d", r.TotalSuicides), fmt.Sprintf("%d", r.Years)})
	}
	t.Render()
}

var generationsCmd = &cobra.Command{
	Use:   "generations <file>",
	Short: "Rates per generation cohort, highest first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(args[0])
		if err != nil {
			return err
		}
		t := newTable(out(cmd), "Generation", "Avg Rate", "Total Suicides", "Records", "Countries")
		for _, g := range analysis.AnalyzeGenerations(records) {
			t.Append([]string{g.Generation, f2(g.AvgRate), fmt.Sprintf("%d", g.TotalSuicides), fmt.Sprintf("%d", g.Count), fmt.Sprintf("%d", g.Countries)})
		}
		heading(out(cmd), "Generations")
		t.Render()
		return nil
	},
}

var trendsCmd = &cobra.Command{
	Use:   "trends <file>",
	Short: "Mean rate per year, optionally per region",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(args[0])
		if err != nil {
			return err
		}
		regions := cfg.IncludeRegions
		if cmd.Flags().Changed("regions") {
			regions = trRegions
		}
		trends := analysis.YearTrends(records, regions)

		var names []string
		if regions {
			seen := map[string]struct{}{}
			for _, tr := range trends {
				for r := range tr.ByRegion {
					if _, ok := seen[r]; !ok {
						seen[r] = struct{}{}
						names = append(names, r)
					}
				}
			}
			sort.Strings(names)
		}
		w := out(cmd)
		t := newTable(w, append([]string{"Year", "Global"}, names...)...)
		for _, tr := range trends {
			row := []string{fmt.Sprintf("%d", tr.Year), f2(tr.GlobalRate)}
			for _, r := range names {
				if v, ok := tr.ByRegion[r]; ok {
					row = append(row, f2(v))
				} else {
					row = append(row, "-")
				}
			}
			t.Append(row)
		}
		heading(w, "Year trends")
		t.Render()

		if trPlot != "" {
			if err := chart.TrendsPNG(trPlot, trends); err != nil {
				return err
			}
			success(w, "Wrote trends chart to %s", trPlot)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(generationsCmd)
	rootCmd.AddCommand(trendsCmd)
	topCmd.Flags().IntVarP(&topN, "top", "n", 10, "countries per list (overrides config)")
	trendsCmd.Flags().BoolVar(&trRegions, "regions", false, "add per-region columns (overrides config)")
	trendsCmd.Flags().StringVar(&trPlot, "plot", "", "also draw the trends to an image (png, svg or pdf)")
}
