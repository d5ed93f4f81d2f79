package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/loomstat/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set loomstat configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Println("No config loaded")
			return nil
		}
		fmt.Printf("outdir: %s\n", cfg.OutDir)
		fmt.Printf("top_n: %d\n", cfg.TopN)
		fmt.Printf("n_topics: %d\n", cfg.NTopics)
		fmt.Printf("max_features: %d\n", cfg.MaxFeatures)
		fmt.Printf("lda_iterations: %d\n", cfg.LDAIterations)
		fmt.Printf("doc_id_col: %s\n", cfg.DocIDCol)
		fmt.Printf("text_col: %s\n", cfg.TextCol)
		fmt.Printf("key_col: %s\n", cfg.KeyCol)
		fmt.Printf("k: %d\n", cfg.K)
		fmt.Printf("n_components: %d\n", cfg.NComponents)
		fmt.Printf("restarts: %d\n", cfg.Restarts)
		fmt.Printf("seed: %d\n", cfg.Seed)
		if cfg.StorePath != "" {
			fmt.Printf("store_path: %s\n", cfg.StorePath)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
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
		positive := func(dst *int) error {
			i, err := strconv.Atoi(val)
			if err != nil || i < 1 {
				return fmt.Errorf("invalid value for %s: %q (want integer >= 1)", key, val)
			}
			*dst = i
			return nil
		}
		var err error
		switch key {
		case "outdir":
			cfg.OutDir = val
		case "top_n":
			err = positive(&cfg.TopN)
		case "n_topics":
			err = positive(&cfg.NTopics)
		case "max_features":
			err = positive(&cfg.MaxFeatures)
		case "lda_iterations":
			err = positive(&cfg.LDAIterations)
		case "k":
			err = positive(&cfg.K)
		case "n_components":
			err = positive(&cfg.NComponents)
		case "restarts":
			err = positive(&cfg.Restarts)
		case "seed":
			s, perr := strconv.ParseInt(val, 10, 64)
			if perr != nil {
				return fmt.Errorf("invalid int for seed: %w", perr)
			}
			cfg.Seed = s
		case "doc_id_col":
			cfg.DocIDCol = val
		case "text_col":
			cfg.TextCol = val
		case "key_col":
			cfg.KeyCol = val
		case "store_path":
			cfg.StorePath = val
		case "verbose":
			b, perr := strconv.ParseBool(val)
			if perr != nil {
				return fmt.Errorf("invalid bool for verbose: %w", perr)
			}
			cfg.Verbose = b
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err != nil {
			return err
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
