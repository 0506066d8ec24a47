package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmylchreest/showbook/internal/catalog"
	"github.com/jmylchreest/showbook/internal/config"
	"github.com/jmylchreest/showbook/internal/database"
	"github.com/jmylchreest/showbook/internal/database/migrations"
	internalhttp "github.com/jmylchreest/showbook/internal/http"
	"github.com/jmylchreest/showbook/internal/http/handlers"
	"github.com/jmylchreest/showbook/internal/observability"
	"github.com/jmylchreest/showbook/internal/repository"
	"github.com/jmylchreest/showbook/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the showbook server",
	Long: `Start the showbook HTTP server and API.

The server provides:
- Filtered, sorted and paginated listings of shows and arrangements
- Filter field metadata and preset deep links for building list UIs
- Liveness and readiness probes
- OpenAPI documentation at /docs`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Int("port", 8080, "Port to listen on")
	serveCmd.Flags().String("base-url", "", "Public base URL used for preset deep links")
	serveCmd.Flags().Bool("migrate", true, "Apply pending migrations before serving")
}

// applyServerFlags overrides server settings with flags the user set.
func applyServerFlags(cfg *config.ServerConfig, flags *pflag.FlagSet) {
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("base-url") {
		cfg.BaseURL, _ = flags.GetString("base-url")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := appConfig
	applyServerFlags(&cfg.Server, cmd.Flags())
	logger := slog.Default()

	db, err := database.New(cfg.Database, observability.WithComponent(logger, "database"))
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := runMigrations(ctx, db, logger); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
	}

	cat, err := catalog.New(nil)
	if err != nil {
		return fmt.Errorf("building catalog: %w", err)
	}
	showEntity, _ := cat.Lookup(string(catalog.Shows))
	arrangementEntity, _ := cat.Lookup(string(catalog.Arrangements))

	showRepo := repository.NewShowRepository(db.DB, showEntity, cfg.Filters.MaxLimit)
	arrangementRepo := repository.NewArrangementRepository(db.DB, arrangementEntity, cfg.Filters.MaxLimit)

	server := internalhttp.NewServer(cfg.Server, logger, version.Version)
	handlerLogger := observability.WithComponent(logger, "api")
	server.Register(
		handlers.NewHealthHandler(db),
		handlers.NewCatalogHandler(cat, cfg.Server.BaseURL).WithLogger(handlerLogger),
		handlers.NewShowHandler(showRepo, cat, cfg.Filters.DefaultLimit).WithLogger(handlerLogger),
		handlers.NewArrangementHandler(arrangementRepo, cat, cfg.Filters.DefaultLimit).WithLogger(handlerLogger),
	)

	logger.Info("starting showbook server",
		slog.String("address", cfg.Server.Address()),
		slog.String("version", version.Version),
		slog.String("database_driver", db.Driver()),
		slog.Int("default_limit", cfg.Filters.DefaultLimit),
		slog.Int("max_limit", cfg.Filters.MaxLimit),
	)

	return server.ListenAndServe(ctx)
}

func runMigrations(ctx context.Context, db *database.DB, logger *slog.Logger) error {
	migrator := migrations.NewMigrator(db.DB, observability.WithComponent(logger, "migrations"))
	migrator.RegisterAll(migrations.AllMigrations())
	return migrator.Up(ctx)
}
