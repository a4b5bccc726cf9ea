package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"stock-screener/src/importer"
	"stock-screener/src/interfaces"
	"stock-screener/src/logger"
	"stock-screener/src/models"

	"github.com/google/subcommands"
)

// importCmd loads financial report rows from a CSV file into storage.
type importCmd struct {
	file       string
	periodType string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import financial report rows from a csv file" }
func (*importCmd) Usage() string {
	return `screener [-config <file>] import -i <file.csv> [-t year|season]

  The first csv row names the columns. security_code and report_date are
  required; report_type falls back to -t. Rows are upserted on
  (security_code, report_date, report_type).
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.file, "i", "", "input file")
	f.StringVar(&c.periodType, "t", "", "period type for rows without a report_type column")
}

// -----------------------------------------------------------------------------

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Println("-i argument is required")
		return subcommands.ExitUsageError
	}
	if c.periodType != "" && c.periodType != models.PeriodYear && c.periodType != models.PeriodSeason {
		fmt.Printf("-t must be %q or %q\n", models.PeriodYear, models.PeriodSeason)
		return subcommands.ExitUsageError
	}

	r, err := os.Open(c.file)
	if err != nil {
		fmt.Printf("cannot open file %q: %v\n", c.file, err)
		return subcommands.ExitFailure
	}
	defer r.Close()

	reports, err := importer.ParseReports(r, c.periodType)
	if err != nil {
		fmt.Printf("invalid csv %q: %v\n", c.file, err)
		return subcommands.ExitFailure
	}

	a, err := openStore()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer a.close()

	if !a.openCache(ctx) && a.config.Cache.Enabled {
		a.logger.Warning("Cached screens on %s stay stale until their TTL expires", a.config.Cache.RedisAddr)
	}

	if err := storeReports(ctx, a.store, a.cache, reports, a.logger); err != nil {
		a.logger.Error("import failed: %v", err)
		return subcommands.ExitFailure
	}

	a.logger.Info("Imported %d reports from %s", len(reports), c.file)
	return subcommands.ExitSuccess
}

// storeReports upserts reports, then drops cached screens computed from the
// old data. A failed invalidation is logged; the rows are already stored.
func storeReports(ctx context.Context, store interfaces.IPerformanceStore, resultCache interfaces.IResultCache, reports []models.MFinancialReport, log *logger.Logger) error {
	if err := store.SaveReports(ctx, reports); err != nil {
		return err
	}
	if err := resultCache.Invalidate(ctx); err != nil {
		log.Warning("Cached screens not invalidated, they expire with the cache TTL: %v", err)
	}
	return nil
}
