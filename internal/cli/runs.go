package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bbachinco/yeoshin/internal/store"
	"github.com/bbachinco/yeoshin/internal/ui"
)

var (
	runsLimit int
	runsDBDir string
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List crawls saved in the local database",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(runsDBDir)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(cmd.Context(), runsLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println(ui.Info("No saved runs."))
			return nil
		}
		for _, r := range runs {
			note := ""
			if r.Truncated {
				note = "  (truncated)"
			}
			fmt.Printf("  %4d  %s  %-20s %5d rows%s\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Keyword, r.RowCount, note)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Maximum runs to list")
	runsCmd.Flags().StringVar(&runsDBDir, "db-dir", "", "Directory for the results database")
}
