package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/KaramelBytes/mortstat/internal/dataset"
	"github.com/KaramelBytes/mortstat/internal/parser"
	"github.com/KaramelBytes/mortstat/internal/utils"
	"github.com/spf13/cobra"
)

var cleanOutputPath string

var cleanCmd = &cobra.Command{
	Use:   "clean <file>",
	Short: "Validate and normalize a dataset, writing the kept records as JSON",
	Long: `Reads a CSV/TSV/XLSX/JSON dataset, drops rows that fail validation and
prints the kept records as a JSON array. The output can be fed back to every
other command.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := ingestOptions()
		if err != nil {
			return err
		}
		records, st, err := parser.LoadRecords(args[0], opt, log)
		if err != nil {
			return fmt.Errorf("load %s: %w", filepath.Base(args[0]), err)
		}
		if records == nil {
			records = []dataset.Record{}
		}
		body, err := utils.PrettyJSON(records)
		if err != nil {
			return err
		}
		w := out(cmd)
		if cleanOutputPath == "" {
			fmt.Fprintln(w, string(body))
			return nil
		}
		if err := utils.SafeWriteFile(cleanOutputPath, body); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		success(w, "Kept %d of %d rows; wrote %s", st.Kept, st.Total, cleanOutputPath)
		if st.Dropped > 0 {
			warn(w, "dropped %d invalid rows", st.Dropped)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().StringVarP(&cleanOutputPath, "output", "o", "", "write cleaned records to a JSON file instead of stdout")
}
