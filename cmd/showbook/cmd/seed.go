package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/models"
	"github.com/jmylchreest/showbook/internal/observability"
	"github.com/jmylchreest/showbook/internal/repository"
	"github.com/jmylchreest/showbook/internal/testutil"
	"github.com/spf13/cobra"
)

var (
	seedShows        int
	seedArrangements int
	seedValue        int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate the database with generated sample data",
	Long: `Generate sample shows and arrangements and insert them, applying any
pending migrations first. A non-zero --seed makes the data reproducible.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVar(&seedShows, "shows", 50, "number of shows to generate")
	seedCmd.Flags().IntVar(&seedArrangements, "arrangements", 120, "number of arrangements to generate")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (0 picks one at random)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	if seedShows < 0 || seedArrangements < 0 {
		return errors.New("counts must not be negative")
	}

	ctx := cmd.Context()
	logger := observability.WithComponent(slog.Default(), "seed")
	db, migrator, err := openMigrator()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	cat, err := catalog.New(nil)
	if err != nil {
		return fmt.Errorf("building catalog: %w", err)
	}
	showEntity, _ := cat.Lookup(string(catalog.Shows))
	arrangementEntity, _ := cat.Lookup(string(catalog.Arrangements))
	showRepo := repository.NewShowRepository(db.DB, showEntity, appConfig.Filters.MaxLimit)
	arrangementRepo := repository.NewArrangementRepository(db.DB, arrangementEntity, appConfig.Filters.MaxLimit)
	tagRepo := repository.NewTagRepository(db.DB)

	gen := testutil.NewSampleDataGenerator()
	if seedValue != 0 {
		gen = testutil.NewSampleDataGeneratorWithSeed(seedValue)
	}

	done := observability.TimedOperation(ctx, logger, "seed")
	defer done()

	for _, name := range testutil.TagNames {
		existing, err := tagRepo.GetByName(ctx, name)
		if err != nil {
			return fmt.Errorf("looking up tag %q: %w", name, err)
		}
		if existing == nil {
			if err := tagRepo.Create(ctx, &models.Tag{Name: name}); err != nil {
				return fmt.Errorf("creating tag %q: %w", name, err)
			}
		}
	}

	shows := gen.GenerateShows(seedShows, testutil.DefaultShowGenerateOptions())
	for i := range shows {
		if err := showRepo.Create(ctx, &shows[i]); err != nil {
			return fmt.Errorf("creating show %q: %w", shows[i].Title, err)
		}
	}

	arrangements := gen.GenerateArrangements(seedArrangements, shows)
	for i := range arrangements {
		if err := arrangementRepo.Create(ctx, &arrangements[i]); err != nil {
			return fmt.Errorf("creating arrangement %q: %w", arrangements[i].Title, err)
		}
	}

	totalShows, err := showRepo.Count(ctx)
	if err != nil {
		return err
	}
	tags, err := tagRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("listing tags: %w", err)
	}

	logger.Info("sample data inserted",
		slog.Int("shows", len(shows)),
		slog.Int("arrangements", len(arrangements)),
		slog.Int64("total_shows", totalShows),
		slog.Int("total_tags", len(tags)),
	)
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "inserted %d shows and %d arrangements\n", len(shows), len(arrangements)); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "database now holds %d shows and %d tags\n", totalShows, len(tags))
	return err
}
