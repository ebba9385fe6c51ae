package cmd

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/KaramelBytes/mortstat/internal/analysis"
	"github.com/spf13/cobra"
)

var (
	regPredictors []string

	clK    int
	clSeed int64
)

var regressCmd = &cobra.Command{
	Use:   "regress <file>",
	Short: "Fit a least-squares model of the suicide rate",
	Long: "Fits an OLS model over standardized predictors.\nAvailable predictors: " +
		strings.Join(analysis.Predictors(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(args[0])
		if err != nil {
			return err
		}
		predictors := cfg.Predictors
		if len(regPredictors) > 0 {
			predictors = regPredictors
		}
		model, err := analysis.FitLinearModel(records, predictors)
		if err != nil {
			return err
		}
		w := out(cmd)
		heading(w, "Regression")
		fmt.Fprintf(w, "R²: %.4f\nIntercept: %.4f\n", model.RSquared, model.Intercept)
		t := newTable(w, "Predictor", "Coefficient (standardized)")
		for _, p := range model.Predictors {
			t.Append([]string{p, fmt.Sprintf("%.4f", model.Coefficients[p])})
		}
		t.Render()
		return nil
	},
}

var clusterCmd = &cobra.Command{
	Use:   "cluster <file>",
	Short: "Group countries by mean rate and GDP with k-means",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(args[0])
		if err != nil {
			return err
		}
		k := cfg.Clusters
		if cmd.Flags().Changed("clusters") {
			k = clK
		}
		seed := cfg.ClusterSeed
		if cmd.Flags().Changed("seed") {
			seed = clSeed
		}
		var rng *rand.Rand
		if seed != 0 {
			rng = rand.New(rand.NewSource(seed))
		}
		res, err := analysis.KMeans(records, k, rng)
		if err != nil {
			return err
		}
		w := out(cmd)
		heading(w, fmt.Sprintf("Clusters (effective %d of %d, %d iterations)", res.EffectiveClusters(), k, res.Iterations))
		if res.EffectiveClusters() < k && len(res.Countries) > 0 {
			warn(w, "%d cluster(s) ended up empty", k-res.EffectiveClusters())
		}
		t := newTable(w, "Cluster", "Mean Rate", "GDP (k$)", "Trend", "Countries")
		for i, members := range res.Members() {
			if len(members) == 0 {
				continue
			}
			sort.Strings(members)
			c := res.Centroids[i]
			t.Append([]string{fmt.Sprintf("%d", i+1), f2(c[0]), f2(c[1]), f2(c[2]), strings.Join(members, ", ")})
		}
		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(regressCmd)
	rootCmd.AddCommand(clusterCmd)
	regressCmd.Flags().StringSliceVar(&regPredictors, "predictors", nil, "predictor names (comma-separated; overrides config)")
	clusterCmd.Flags().IntVarP(&clK, "clusters", "k", 3, "number of clusters (overrides config)")
	clusterCmd.Flags().Int64Var(&clSeed, "seed", 0, "random seed (0 = random; overrides config)")
}
