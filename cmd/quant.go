package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/loomstat/internal/analysis"
	"github.com/KaramelBytes/loomstat/internal/logger"
	"github.com/KaramelBytes/loomstat/internal/model"
	"github.com/spf13/cobra"
)

const rankN = 10

var (
	quantInput   inputFlags
	quantKeyCol  string
	descMeasures []string
	descX        string
	descY        string

	modelMethod   string
	modelFeatures []string
	modelTarget   string
	modelK        int
	modelNComp    int
	modelSeed     int64
	modelRestarts int
)

var quantCmd = &cobra.Command{
	Use:   "quant",
	Short: "Analyze numeric survey tables",
}

var quantDescribeCmd = &cobra.Command{
	Use:   "describe <table.csv|table.xlsx>",
	Short: "Summary statistics, top/bottom rankings and correlations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := quantInput.loadTable(args[0])
		if err != nil {
			return err
		}
		keyCol := keyColumn(cmd)
		measures, err := analysis.ResolveMeasures(t, descMeasures)
		if err != nil {
			return err
		}
		if len(descMeasures) == 0 {
			logger.Info("auto-picked measures: %s", strings.Join(measures, ", "))
		}
		x, y := descX, descY
		if x == "" {
			x = measures[0]
		}
		if y == "" {
			y = measures[0]
			if len(measures) > 1 {
				y = measures[1]
			}
		}

		sum, err := analysis.Describe(t, measures)
		if err != nil {
			return err
		}
		if t.Has(keyCol) && t.Has(x) {
			top, bottom, err := analysis.Rank(t, keyCol, x, rankN)
			if err != nil {
				return err
			}
			sum.RankBy, sum.Top, sum.Bottom = x, top, bottom
		} else {
			logger.Warn("key column %q not found; skipping rankings", keyCol)
		}
		if len(measures) > 1 {
			corr, err := analysis.Correlate(t, measures)
			if err != nil {
				logger.Warn("correlation skipped: %v", err)
			} else {
				sum.Corr = corr
			}
		}

		run, err := startRun("quant describe", args[0], map[string]any{
			"measures": measures, "key_col": keyCol, "x": x, "y": y,
		})
		if err != nil {
			return err
		}
		if t.Has(keyCol) {
			pts, err := analysis.Scatter(t, keyCol, x, y)
			if err != nil {
				return err
			}
			if _, err := run.WriteJSON("quant_B_scatter.json", pts); err != nil {
				return err
			}
		}
		if x != y {
			if pair, err := analysis.Correlate(t, []string{x, y}); err == nil {
				r, _ := pair.At(x, y)
				sum.Notes = append(sum.Notes, fmt.Sprintf("KEY FINDING: %s and %s correlation ≈ %.2f (n=%d).", x, y, r, pair.Rows))
			}
		}
		if _, err := run.WriteJSON("quant_B_summary.json", sum); err != nil {
			return err
		}
		fmt.Print(sum.Markdown())
		return finishRun(cmd.Context(), run)
	},
}

var quantModelCmd = &cobra.Command{
	Use:   "model <table.csv|table.xlsx>",
	Short: "Fit a regression, k-means clustering or PCA model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := model.DefaultParams(model.Method(strings.ToLower(modelMethod)), modelFeatures...)
		p.Target = modelTarget
		p.KeyCol = keyColumn(cmd)
		p.K, p.NComponents, p.Seed, p.Restarts = cfg.K, cfg.NComponents, cfg.Seed, cfg.Restarts
		f := cmd.Flags()
		if f.Changed("k") {
			p.K = modelK
		}
		if f.Changed("n-components") {
			p.NComponents = modelNComp
		}
		if f.Changed("seed") {
			p.Seed = modelSeed
		}
		if f.Changed("restarts") {
			p.Restarts = modelRestarts
		}

		t, err := quantInput.loadTable(args[0])
		if err != nil {
			return err
		}
		logger.Section(string(p.Method))
		res, err := model.Fit(t, p)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			logger.Warn("%s", w)
		}

		run, err := startRun("quant model", args[0], map[string]any{
			"method": p.Method, "features": p.Features, "target": p.Target,
			"k": p.K, "n_components": p.NComponents, "seed": p.Seed, "restarts": p.Restarts,
		})
		if err != nil {
			return err
		}
		if _, err := run.WriteJSON("quant_C_scatter.json", res.Scatter); err != nil {
			return err
		}
		switch {
		case res.Regression != nil:
			r := res.Regression
			fmt.Printf("\n[REGRESSION]\nIntercept: %.4g\n", r.Intercept)
			for _, c := range r.Coefficients {
				fmt.Printf("- %s: %.4g\n", c.Feature, c.Value)
			}
			fmt.Printf("R^2: %.4f (n=%d)\n", r.R2, r.Rows)
			fmt.Printf("\n[INTERPRETATION] R^2 ≈ %.2f. Strongest predictor appears to be '%s'.\n", r.R2, r.StrongestPredictor)
			if _, err := run.WriteJSON("quant_C_regression.json", r); err != nil {
				return err
			}
		case res.Clustering != nil:
			c := res.Clustering
			if _, err := run.WriteJSON("quant_C_hist.json", c.Histogram); err != nil {
				return err
			}
			fmt.Printf("\n[CLUSTERS]\n")
			for i, n := range c.Sizes {
				fmt.Printf("- cluster %d: %d rows\n", i, n)
			}
			fmt.Printf("\n[INTERPRETATION] Formed %d clusters (inertia %.4g). Explore differences by cluster in the dashboard.\n", c.K, c.Inertia)
		case res.PCA != nil:
			if _, err := run.WriteJSON("quant_C_pca_loadings.json", res.PCA.Components); err != nil {
				return err
			}
			ratios := make([]string, 0, len(res.PCA.Components))
			for _, v := range res.PCA.ExplainedVariance() {
				ratios = append(ratios, fmt.Sprintf("%.2f", v))
			}
			fmt.Printf("\n[INTERPRETATION] PCA explained variance ≈ [%s]. Use loadings to interpret components.\n", strings.Join(ratios, ", "))
		}
		return finishRun(cmd.Context(), run)
	},
}

func keyColumn(cmd *cobra.Command) string {
	if cmd.Flags().Changed("key-col") {
		return quantKeyCol
	}
	return cfg.KeyCol
}

func init() {
	for _, c := range []*cobra.Command{quantDescribeCmd, quantModelCmd} {
		quantInput.register(c.Flags())
		c.Flags().StringVar(&quantKeyCol, "key-col", "Country", "row identifier column")
	}
	quantDescribeCmd.Flags().StringSliceVarP(&descMeasures, "measures", "m", nil, "measure columns (default: first 3 numeric)")
	quantDescribeCmd.Flags().StringVar(&descX, "x", "", "scatter x column (default: first measure)")
	quantDescribeCmd.Flags().StringVar(&descY, "y", "", "scatter y column (default: second measure)")

	quantModelCmd.Flags().StringVar(&modelMethod, "method", "", "regression, clustering, or pca")
	quantModelCmd.Flags().StringSliceVarP(&modelFeatures, "features", "f", nil, "feature columns")
	quantModelCmd.Flags().StringVar(&modelTarget, "target", "", "regression target column")
	quantModelCmd.Flags().IntVar(&modelK, "k", 4, "number of clusters")
	quantModelCmd.Flags().IntVar(&modelNComp, "n-components", 2, "number of principal components")
	quantModelCmd.Flags().Int64Var(&modelSeed, "seed", 42, "random seed")
	quantModelCmd.Flags().IntVar(&modelRestarts, "restarts", 10, "k-means restarts (at least 10)")
	_ = quantModelCmd.MarkFlagRequired("method")
	_ = quantModelCmd.MarkFlagRequired("features")

	quantCmd.AddCommand(quantDescribeCmd, quantModelCmd)
	rootCmd.AddCommand(quantCmd)
}
