package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bbachinco/yeoshin/internal/config"
	"github.com/bbachinco/yeoshin/internal/crawler"
	"github.com/bbachinco/yeoshin/internal/credentials"
	"github.com/bbachinco/yeoshin/internal/report"
	"github.com/bbachinco/yeoshin/internal/store"
	"github.com/bbachinco/yeoshin/internal/ui"
	"github.com/bbachinco/yeoshin/pkg/models"
)

var (
	scrapeOutput string
	scrapeNoDB   bool
	scrapeDBDir  string
)

// progressScale maps the crawl's completion fraction onto the bar.
const progressScale = 1000

var scrapeCmd = &cobra.Command{
	Use:   "scrape <keyword>",
	Short: "Crawl every event listed for a keyword",
	Long: `Scrape authenticates with the stored session tokens, searches the
keyword, opens every listed event, and collects one row per purchasable
option. Results are printed as CSV unless --output selects a file, whose
extension picks the format (.csv, .json, .md).`,
	Example: `  # Crawl a keyword and print CSV to stdout
  yeoshin scrape 리프팅

  # Save as JSON with five browser workers
  yeoshin scrape 보톡스 --workers=5 --output=botox.json

  # Cap the crawl at 20 items
  yeoshin scrape 필러 --max-items=20 --output=filler.md`,
	Args: cobra.ExactArgs(1),
	RunE: runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)

	scrapeCmd.Flags().StringVarP(&scrapeOutput, "output", "o", "", "File path to save results (.csv, .json, .md)")
	scrapeCmd.Flags().Int("max-items", config.DefaultMaxItems, "Maximum listing items to process")
	scrapeCmd.Flags().Int("workers", 1, "Browser sessions to run in parallel")
	scrapeCmd.Flags().Bool("pooled", false, fmt.Sprintf("Shorthand for --workers=%d", config.DefaultWorkers))
	scrapeCmd.Flags().BoolVar(&scrapeNoDB, "no-db", false, "Skip persisting the run to the local database")
	scrapeCmd.Flags().StringVar(&scrapeDBDir, "db-dir", "", "Directory for the results database")
}

func runScrape(cmd *cobra.Command, args []string) error {
	keyword := args[0]

	cfg, err := config.Load(cmd)
	if err != nil {
		return err
	}

	creds, missing, err := credentials.Load()
	if err != nil {
		if errors.Is(err, credentials.ErrAllMissing) {
			fmt.Fprintln(os.Stderr, ui.Error("No session tokens configured. Run \"yeoshin auth set <token> <value>\" first."))
		}
		return err
	}
	if len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "%s\n", ui.Info(fmt.Sprintf("Proceeding without %d of %d tokens", len(missing), len(config.CookieNames))))
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := crawler.New(cfg)
	var bar *progressbar.ProgressBar
	if !cfg.JSONLog {
		bar = progressbar.NewOptions(progressScale,
			progressbar.OptionSetDescription("Crawling "+keyword),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		c.OnProgress(func(fraction float64) {
			_ = bar.Set(int(fraction * progressScale))
		})
	}

	table, err := c.Run(ctx, keyword, creds)
	if bar != nil {
		_ = bar.Finish()
	}
	if err != nil {
		var ce *crawler.CrawlError
		if errors.As(err, &ce) {
			fmt.Fprintln(os.Stderr, ui.Error(fmt.Sprintf("Crawl failed during %s: %v", ce.Stage, ce.Err)))
		}
		// A partially filled table is still worth exporting.
		if table != nil && !table.Empty() {
			fmt.Fprintln(os.Stderr, ui.Info(fmt.Sprintf("Exporting %d rows collected before the failure", table.Len())))
			if exportErr := exportTable(table); exportErr != nil {
				log.Error().Err(exportErr).Msg("Failed to export partial results")
			}
		}
		return err
	}

	if table.Truncated {
		fmt.Fprintln(os.Stderr, ui.Info(fmt.Sprintf("Listing exceeded the %d item cap; results are truncated", cfg.MaxItems)))
	}
	if table.Empty() {
		fmt.Fprintln(os.Stderr, ui.Info("No usable results for this keyword."))
		return nil
	}

	if err := exportTable(table); err != nil {
		return err
	}
	if !scrapeNoDB {
		persistRun(ctx, table)
	}
	return nil
}

func exportTable(table *models.ResultTable) error {
	if scrapeOutput == "" {
		wr, _ := report.ForFormat(report.FormatCSV)
		return wr.Write(os.Stdout, table)
	}
	if err := report.WriteFile(scrapeOutput, table); err != nil {
		return err
	}
	fmt.Fprintln(os.Stderr, ui.Success(fmt.Sprintf("Saved %d rows to %s", table.Len(), scrapeOutput)))
	return nil
}

// persistRun saves the run to the local database. Persistence is best
// effort; the export already succeeded.
func persistRun(ctx context.Context, table *models.ResultTable) {
	st, err := store.Open(scrapeDBDir)
	if err != nil {
		log.Warn().Err(err).Msg("Could not open results database")
		return
	}
	defer st.Close()

	id, err := st.SaveRun(ctx, table)
	if err != nil {
		log.Warn().Err(err).Msg("Could not persist run")
		return
	}
	log.Info().Int64("run", id).Str("db", st.Path()).Msg("Run persisted")
}
