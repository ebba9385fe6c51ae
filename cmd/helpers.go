package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	cfgpkg "github.com/KaramelBytes/mortstat/internal/config"
	"github.com/KaramelBytes/mortstat/internal/dataset"
	"github.com/KaramelBytes/mortstat/internal/parser"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// ingestOptions merges the persistent ingestion flags over the loaded config.
func ingestOptions() (parser.Options, error) {
	pick := func(flag, conf string) string {
		if flag != "" {
			return flag
		}
		return conf
	}
	var opt parser.Options
	delim, err := cfgpkg.ParseRune(pick(flagDelimiter, cfg.Delimiter))
	if err != nil {
		return opt, fmt.Errorf("unsupported --delimiter: %w", err)
	}
	dec, err := cfgpkg.ParseRune(separatorAlias(pick(flagDecimal, cfg.Decimal)))
	if err != nil {
		return opt, fmt.Errorf("unsupported --decimal: %w (use '.'|'comma')", err)
	}
	thou, err := cfgpkg.ParseRune(separatorAlias(pick(flagThousands, cfg.Thousands)))
	if err != nil {
		return opt, fmt.Errorf("unsupported --thousands: %w (use ','|'.'|'space')", err)
	}
	opt.Delimiter = delim
	opt.Number = dataset.NumberFormat{DecimalSeparator: dec, ThousandsSeparator: thou}
	opt.SheetName = pick(flagSheetName, cfg.SheetName)
	opt.SheetIndex = cfg.SheetIndex
	if flagSheetIndex > 0 {
		opt.SheetIndex = flagSheetIndex
	}
	return opt, nil
}

// separatorAlias maps the spelled-out separator names to their character.
func separatorAlias(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "comma":
		return ","
	case "dot":
		return "."
	case "space":
		return " "
	}
	return s
}

// loadRecords reads and cleans a dataset file, reporting dropped rows through the logger.
func loadRecords(path string) ([]dataset.Record, error) {
	opt, err := ingestOptions()
	if err != nil {
		return nil, err
	}
	records, _, err := parser.LoadRecords(path, opt, log)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", filepath.Base(path), err)
	}
	return records, nil
}

// reportOptions builds analysis options from the loaded config.
func reportOptions(name string) (analysis.ReportOptions, error) {
	opt := analysis.DefaultReportOptions()
	opt.Name = name
	if len(cfg.Predictors) > 0 {
		opt.Predictors = cfg.Predictors
	}
	opt.Clusters = cfg.Clusters
	opt.Seed = cfg.ClusterSeed
	opt.ForecastYears = cfg.ForecastYears
	opt.TopN = cfg.TopN
	opt.IncludeRegions = cfg.IncludeRegions
	m, err := analysis.ParseForecastMethod(cfg.ForecastMethod)
	if err != nil {
		return opt, err
	}
	opt.ForecastMethod = m
	return opt, nil
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetAutoWrapText(false)
	return t
}

func heading(w io.Writer, title string) {
	fmt.Fprintln(w, color.New(color.FgYellow, color.Bold).Sprint(title))
}

func success(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", color.GreenString("✓"), fmt.Sprintf(format, a...))
}

func warn(w io.Writer, format string, a ...any) {
	fmt.Fprintf(w, "%s %s\n", color.YellowString("⚠ Warning:"), fmt.Sprintf(format, a...))
}

func f2(v float64) string { return fmt.Sprintf("%.2f", v) }

// out returns the writer commands print to; tests redirect it with SetOut.
func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }
