package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/mortstat/internal/config"
	"github.com/KaramelBytes/mortstat/internal/logging"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Ingestion flags (override config if set)
	flagDelimiter  string
	flagDecimal    string
	flagThousands  string
	flagSheetName  string
	flagSheetIndex int

	// Loaded configuration and logger
	cfg *cfgpkg.Global
	log *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mortstat",
	Short: "mortstat: statistics, models and forecasts over suicide-rate datasets",
	Long: `mortstat cleans country/year/sex/age mortality tables (CSV, TSV, XLSX or JSON)
and runs descriptive statistics, correlations, aggregations, regression,
k-means clustering and forecasting over them, from the command line or as a JSON API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)

	// Persistent global flags available to all subcommands
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.mortstat/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.StringVar(&logFormat, "log-format", "", "log format: text | json (overrides config)")
	pf.StringVar(&flagDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (default by extension)")
	pf.StringVar(&flagDecimal, "decimal", "", "decimal separator for numbers: '.' | ',' (auto-detect if omitted)")
	pf.StringVar(&flagThousands, "thousands", "", "thousands separator for numbers: ',' | '.' | ' ' (auto-detect if omitted)")
	pf.StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to load")
	pf.IntVar(&flagSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func loadConfig() {
	// MORTSTAT_* variables may live in a local .env file
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to read .env: %v\n", err)
	}
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c
}

func setupLogger() error {
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	level, format := cfg.LogLevel, cfg.LogFormat
	if debug {
		level = "debug"
	}
	if logFormat != "" {
		format = logFormat
	}
	l, err := logging.New(level, format, os.Stderr)
	if err != nil {
		return err
	}
	log = l
	return nil
}
