package cmd

import (
	"fmt"
	"strings"

	cfgpkg "github.com/KaramelBytes/mortstat/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set mortstat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := out(cmd)
		if cfg == nil {
			fmt.Fprintln(w, "No config loaded")
			return nil
		}
		fmt.Fprintf(w, "predictors: %s\n", strings.Join(cfg.Predictors, ","))
		fmt.Fprintf(w, "clusters: %d\n", cfg.Clusters)
		fmt.Fprintf(w, "cluster_seed: %d\n", cfg.ClusterSeed)
		fmt.Fprintf(w, "forecast_years: %d\n", cfg.ForecastYears)
		fmt.Fprintf(w, "forecast_method: %s\n", cfg.ForecastMethod)
		fmt.Fprintf(w, "top_n: %d\n", cfg.TopN)
		fmt.Fprintf(w, "include_regions: %t\n", cfg.IncludeRegions)
		if cfg.Delimiter != "" {
			fmt.Fprintf(w, "delimiter: %q\n", cfg.Delimiter)
		}
		if cfg.Decimal != "" {
			fmt.Fprintf(w, "decimal: %q\n", cfg.Decimal)
		}
		if cfg.Thousands != "" {
			fmt.Fprintf(w, "thousands: %q\n", cfg.Thousands)
		}
		if cfg.SheetName != "" {
			fmt.Fprintf(w, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(w, "sheet_index: %d\n", cfg.SheetIndex)
		fmt.Fprintf(w, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(w, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(w, "server_addr: %s\n", cfg.ServerAddr)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Long:  "Set a config value and save to disk.\nKeys: " + strings.Join(cfgpkg.Keys(), ", "),
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		if err := cfg.Set(key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		success(out(cmd), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
