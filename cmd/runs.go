package cmd

import (
	"fmt"

	"github.com/KaramelBytes/loomstat/internal/output"
	"github.com/spf13/cobra"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded runs from the SQLite store",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StorePath == "" {
			return fmt.Errorf("no run store configured (set store_path or pass --store)")
		}
		store, err := output.OpenStore(cfg.StorePath)
		if err != nil {
			return err
		}
		defer store.Close()
		runs, err := store.Runs(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded")
			return nil
		}
		for _, r := range runs {
			fmt.Printf("%s  %s  %-15s %s (%d artifacts)\n",
				r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.RunID, r.Command, r.Input, r.Artifacts)
		}
		return nil
	},
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "maximum runs to list")
	rootCmd.AddCommand(runsCmd)
}
