package cmd

import (
	"fmt"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	"github.com/KaramelBytes/mortstat/internal/chart"
	"github.com/spf13/cobra"
)

var (
	fcYears  int
	fcMethod string
	fcPlot   string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast <file>",
	Short: "Project the global yearly rate forward with confidence bounds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(args[0])
		if err != nil {
			return err
		}
		years := cfg.ForecastYears
		if cmd.Flags().Changed("years") {
			years = fcYears
		}
		name := cfg.ForecastMethod
		if cmd.Flags().Changed("method") {
			name = fcMethod
		}
		method, err := analysis.ParseForecastMethod(name)
		if err != nil {
			return err
		}
		points, err := analysis.Forecast(records, years, method)
		if err != nil {
			return err
		}

		w := out(cmd)
		heading(w, fmt.Sprintf("Forecast (%s, %d years)", method, years))
		if len(points) == 0 {
			warn(w, "nothing to forecast")
			return nil
		}
		t := newTable(w, "Year", "Predicted", "Low (95%)", "High (95%)")
		for _, p := range points {
			t.Append([]string{fmt.Sprintf("%d", p.Year), f2(p.Predicted), f2(p.ConfidenceLow), f2(p.ConfidenceHigh)})
		}
		t.Render()

		if fcPlot != "" {
			ys, rates := analysis.YearlyRates(records)
			if err := chart.ForecastPNG(fcPlot, ys, rates, points); err != nil {
				return err
			}
			success(w, "Wrote forecast chart to %s", fcPlot)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(forecastCmd)
	forecastCmd.Flags().IntVar(&fcYears, "years", 5, "years to forecast (overrides config)")
	forecastCmd.Flags().StringVar(&fcMethod, "method", "arima", "forecast method: arima | linear (overrides config)")
	forecastCmd.Flags().StringVar(&fcPlot, "plot", "", "also draw the series and forecast to an image (png, svg or pdf)")
}
