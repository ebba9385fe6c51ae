package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	"github.com/KaramelBytes/mortstat/internal/utils"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/cobra"
)

var (
	abFormat  string
	abOutDir  string
	abSeed    int64
	abWorkers int
	abQuiet   bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX/JSON files and write one report per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		format, err := reportFormat(abFormat)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(abOutDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		targets := reportTargets(files, abOutDir, reportExt(format))

		workers := abWorkers
		if workers < 1 {
			workers = runtime.NumCPU()
		}
		w := out(cmd)
		total := len(files)
		p := pool.New().WithMaxGoroutines(workers).WithErrors()
		for i, path := range files {
			i, path := i, path
			p.Go(func() error {
				opt, err := reportOptions(filepath.Base(path))
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("seed") {
					opt.Seed = abSeed
				}
				records, err := loadRecords(path)
				if err != nil {
					return err
				}
				rep, err := analysis.BuildReport(records, opt)
				if err != nil {
					return fmt.Errorf("%s: %w", filepath.Base(path), err)
				}
				body, err := renderReport(rep, format)
				if err != nil {
					return err
				}
				if err := utils.SafeWriteFile(targets[i], body); err != nil {
					return fmt.Errorf("write report: %w", err)
				}
				log.WithField("file", filepath.Base(path)).WithField("records", len(records)).Debug("report written")
				return nil
			})
		}
		if err := p.Wait(); err != nil {
			return err
		}
		if !abQuiet {
			for i, path := range files {
				fmt.Fprintf(w, "[%d/%d] %s -> %s\n", i+1, total, filepath.Base(path), targets[i])
			}
			success(w, "Wrote %d reports to %s", total, abOutDir)
		}
		return nil
	},
}

// expandInputs resolves globs and literal paths, dropping duplicates, sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

func reportExt(format string) string {
	if format == "json" {
		return ".report.json"
	}
	return ".report.md"
}

// reportTargets picks one output path per input. Inputs sharing a base name,
// or clashing with a file already on disk, get a numeric suffix.
func reportTargets(files []string, dir, ext string) []string {
	taken := map[string]struct{}{}
	out := make([]string, len(files))
	for i, f := range files {
		base := filepath.Base(f)
		safe := strings.TrimSuffix(base, filepath.Ext(base))
		cand := filepath.Join(dir, safe+ext)
		for idx := 2; ; idx++ {
			_, clash := taken[cand]
			if _, err := os.Stat(cand); !clash && os.IsNotExist(err) {
				break
			}
			cand = filepath.Join(dir, fmt.Sprintf("%s__%d%s", safe, idx, ext))
		}
		taken[cand] = struct{}{}
		out[i] = cand
	}
	return out
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abFormat, "format", "markdown", "report format: markdown | json")
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "reports", "directory receiving one report per input file")
	analyzeBatchCmd.Flags().Int64Var(&abSeed, "seed", 0, "k-means seed (0 = random; overrides config)")
	analyzeBatchCmd.Flags().IntVar(&abWorkers, "workers", 0, "files analyzed concurrently (0 = number of CPUs)")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
