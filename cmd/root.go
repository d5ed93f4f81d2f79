package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/loomstat/internal/config"
	"github.com/KaramelBytes/loomstat/internal/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
	debug   bool
	// Output flags (override config if set)
	flagOutDir    string
	flagStorePath string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "loomstat",
	Short: "loomstat: exploratory analysis for survey tables and short texts",
	Long: `loomstat runs exploratory analyses over survey data: word frequencies and
lexicon sentiment, LDA topics, descriptive statistics with rankings and
correlations, and regression, k-means or PCA models. Results are written as
JSON/CSV files for dashboards.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.loomstat/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress details")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVarP(&flagOutDir, "outdir", "o", "", "output directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagStorePath, "store", "", "SQLite run history file (overrides config)")
}

func loadConfig() error {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("outdir") && flagOutDir != "" {
		cfg.OutDir = flagOutDir
	}
	if f.Changed("store") {
		cfg.StorePath = flagStorePath
	}
	logger.Configure(verbose || cfg.Verbose, debug)
	logger.Debug("config loaded: outdir=%s store=%q", cfg.OutDir, cfg.StorePath)
	return nil
}
