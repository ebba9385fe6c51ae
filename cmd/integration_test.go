package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	"github.com/KaramelBytes/mortstat/internal/dataset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so sticky Changed state and
// bound variables do not leak between invocations.
func resetFlags(c *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		if sv, ok := fl.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = fl.Value.Set(fl.DefValue)
		}
		fl.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execCmd runs the root command with args and returns what it printed.
func execCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// runCmd is a helper to execute the root command with args.
func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execCmd(t, args...)
	if err != nil {
		t.Fatalf("command %v failed: %v\n%s", args, err, out)
	}
	return out
}

// isolate points HOME at a temp dir so no user config leaks in.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	oldHome := os.Getenv("HOME")
	t.Cleanup(func() { os.Setenv("HOME", oldHome) })
	os.Setenv("HOME", home)
	return home
}

// writeDataset writes a WHO-style CSV: three countries, four years, both sexes,
// plus one row that fails validation.
func writeDataset(t *testing.T, dir, name string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("country,year,sex,age,suicides_no,population,suicides/100k pop,gdp_per_capita ($),generation\n")
	countries := []struct {
		name string
		base float64
		gdp  int
	}{{"Japan", 20, 40000}, {"Brazil", 5, 9000}, {"Germany", 12, 45000}}
	for _, c := range countries {
		for y := 2000; y < 2004; y++ {
			for s, sex := range []string{"male", "female"} {
				rate := c.base + float64(y-2000) + float64(s)*0.5
				fmt.Fprintf(&b, "%s,%d,%s,35-54 years,%d,100000,%.2f,%d,Boomers\n",
					c.name, y, sex, int(rate), rate, c.gdp+(y-2000)*500)
			}
		}
	}
	b.WriteString("Nowhere,1970,male,35-54 years,1,1000,,100,Boomers\n")
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return p
}

func TestCLI_AnalyzeMarkdownAndJSON(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home, "who.csv")

	md := runCmd(t, "analyze", data, "--seed", "3", "-k", "2", "--regions")
	for _, section := range []string{"[DATASET SUMMARY]", "[REGRESSION]", "[CLUSTERS]", "[FORECAST] method=arima", "[EXECUTIVE SUMMARY]"} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "Records: 24")

	outPath := filepath.Join(home, "out", "report.json")
	msg := runCmd(t, "analyze", data, "--format", "json", "-o", outPath, "--method", "linear", "--years", "3")
	assert.Contains(t, msg, "Wrote analysis to")

	b, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var rep analysis.Report
	require.NoError(t, json.Unmarshal(b, &rep))
	assert.Equal(t, 24, rep.Records)
	assert.Equal(t, analysis.MethodLinear, rep.ForecastMethod)
	assert.Len(t, rep.Forecast, 3)
	assert.Equal(t, "who.csv", rep.Name)
}

func TestCLI_AnalyzeRejectsBadOptions(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home, "who.csv")

	_, err := execCmd(t, "analyze", data, "--format", "pdf")
	require.Error(t, err)

	_, err = execCmd(t, "analyze", data, "--method", "prophet")
	require.ErrorIs(t, err, analysis.ErrUnknownMethod)

	_, err = execCmd(t, "analyze", data, "-k", "0")
	require.ErrorIs(t, err, analysis.ErrInvalidClusterCount)

	_, err = execCmd(t, "analyze", filepath.Join(home, "notes.docx"))
	require.Error(t, err)
}

func TestCLI_StatsAndCorrelate(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home, "who.csv")

	out := runCmd(t, "stats", data)
	assert.Contains(t, out, "Statistics (24 records)")
	assert.Contains(t, out, "Suicide Rate")
	assert.Contains(t, out, "GDP per Capita")

	out = runCmd(t, "stats", data, "--field", "year")
	assert.Contains(t, out, "2001.50")
	assert.NotContains(t, out, "Population")

	_, err := execCmd(t, "stats", data, "--field", "height")
	require.ErrorIs(t, err, dataset.ErrUnknownField)

	out = runCmd(t, "correlate", data)
	assert.Contains(t, out, "Suicide Rate")
	assert.Contains(t, out, "Population")

	out = runCmd(t, "correlate", data, "--x", "year", "--y", "suicides_per_100k")
	assert.Contains(t, out, "Year")

	_, err = execCmd(t, "correlate", data, "--x", "year")
	require.Error(t, err)
}

func TestCLI_RegressAndCluster(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home, "who.csv")

	out := runCmd(t, "regress", data, "--predictors", "gdp_per_capita,year,sex_male")
	assert.Contains(t, out, "R²:")
	assert.Contains(t, out, "sex_male")

	out = runCmd(t, "cluster", data, "-k", "3", "--seed", "5")
	assert.Contains(t, out, "Clusters (effective 3 of 3")
	for _, c := range []string{"Japan", "Brazil", "Germany"} {
		assert.Contains(t, out, c)
	}
	assert.NotContains(t, out, "Nowhere", "invalid rows are dropped before clustering")
}

func TestCLI_ForecastWithPlot(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home, "who.csv")
	png := filepath.Join(home, "forecast.png")

	out := runCmd(t, "forecast", data, "--years", "3", "--method", "linear", "--plot", png)
	assert.Contains(t, out, "Forecast (linear, 3 years)")
	assert.Contains(t, out, "2006")
	assert.Contains(t, out, "Wrote forecast chart")
	info, err := os.Stat(png)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	_, err = execCmd(t, "forecast", data, "--years", "-1")
	require.ErrorIs(t, err, analysis.ErrInvalidHorizon)
	_, err = execCmd(t, "forecast", data, "--years", "1152921504606846976")
	require.ErrorIs(t, err, analysis.ErrInvalidHorizon)
}

func TestCLI_TopGenerationsTrends(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home, "who.csv")

	out := runCmd(t, "top", data, "-n", "1")
	assert.Contains(t, out, "Highest rates")
	assert.Contains(t, out, "Japan")
	assert.Contains(t, out, "Brazil")
	assert.NotContains(t, out, "Germany")

	out = runCmd(t, "generations", data)
	assert.Contains(t, out, "Boomers")

	svg := filepath.Join(home, "trends.svg")
	out = runCmd(t, "trends", data, "--regions", "--plot", svg)
	assert.Contains(t, out, analysis.RegionEurope)
	assert.Contains(t, out, "2003")
	_, err := os.Stat(svg)
	require.NoError(t, err)
}

func TestCLI_CleanRoundTrip(t *testing.T) {
	home := isolate(t)
	data := writeDataset(t, home, "who.csv")
	cleaned := filepath.Join(home, "clean.json")

	out := runCmd(t, "clean", data, "-o", cleaned)
	assert.Contains(t, out, "Kept 24 of 25 rows")
	assert.Contains(t, out, "dropped 1 invalid rows")

	var records []dataset.Record
	b, err := os.ReadFile(cleaned)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &records))
	require.Len(t, records, 24)
	assert.Equal(t, "Japan", records[0].Country)

	// the cleaned JSON is itself a valid input
	out = runCmd(t, "stats", cleaned)
	assert.Contains(t, out, "Statistics (24 records)")
}

func TestCLI_SemicolonDatasetWithLocaleFlags(t *testing.T) {
	home := isolate(t)
	p := filepath.Join(home, "eu.csv")
	content := "country;year;sex;age;suicides_no;population;gdp_per_capita\n" +
		"France;2001;male;35-54 years;1.200;4.000.000;22.000,5\n"
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))

	out := runCmd(t, "clean", p, "--delimiter", ";", "--decimal", "comma", "--thousands", ".")
	assert.Contains(t, out, `"gdp_per_capita": 22000.5`)
	assert.Contains(t, out, `"population": 4000000`)

	_, err := execCmd(t, "clean", p, "--delimiter", ";;")
	require.Error(t, err)
}

func TestCLI_ConfigSetAndShow(t *testing.T) {
	home := isolate(t)

	runCmd(t, "config", "set", "clusters", "4")
	runCmd(t, "config", "set", "forecast_method", "linear")
	_, err := os.Stat(filepath.Join(home, ".mortstat", "config.yaml"))
	require.NoError(t, err)

	out := runCmd(t, "config", "show")
	assert.Contains(t, out, "clusters: 4")
	assert.Contains(t, out, "forecast_method: linear")

	_, err = execCmd(t, "config", "set", "clusters", "0")
	require.Error(t, err)
	_, err = execCmd(t, "config", "set", "clusters", "1000000000")
	require.Error(t, err)
	_, err = execCmd(t, "config", "set", "api_key", "x")
	require.Error(t, err)

	// saved settings drive the analysis commands
	data := writeDataset(t, home, "who.csv")
	out = runCmd(t, "forecast", data)
	assert.Contains(t, out, "Forecast (linear, 5 years)")
}

func TestCLI_AnalyzeBatch(t *testing.T) {
	home := isolate(t)
	a := writeDataset(t, filepath.Join(home), "alpha.csv")
	require.NoError(t, os.MkdirAll(filepath.Join(home, "more"), 0o755))
	b := writeDataset(t, filepath.Join(home, "more"), "alpha.csv")
	outDir := filepath.Join(home, "reports")

	out := runCmd(t, "analyze-batch", a, b, "--out-dir", outDir, "--seed", "2", "--format", "json")
	assert.Contains(t, out, "[1/2]")
	assert.Contains(t, out, "Wrote 2 reports")
	for _, name := range []string{"alpha.report.json", "alpha__2.report.json"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		require.NoError(t, err, name)
	}

	_, err := execCmd(t, "analyze-batch", filepath.Join(home, "*.nope"))
	require.Error(t, err)
}

func TestReportTargetsAvoidsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "who.report.md"), nil, 0o644))
	got := reportTargets([]string{"a/who.csv", "b/who.xlsx", "c/other.json"}, dir, ".report.md")
	assert.Equal(t, []string{
		filepath.Join(dir, "who__2.report.md"),
		filepath.Join(dir, "who__3.report.md"),
		filepath.Join(dir, "other.report.md"),
	}, got)
}
