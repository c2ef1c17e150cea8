// main.go
//
// Entry point of the qgisgame binary.
// Commands:
//   - serve (default): run the JSON/HTTP adapter over the card catalog.
//   - catalog validate|import|export: maintain catalog files and databases.
//
// Configuration comes from the environment, optionally seeded from a .env file.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pierridotite/QGISGame/internal/catalog"
	"github.com/pierridotite/QGISGame/internal/catalogdb"
	"github.com/pierridotite/QGISGame/internal/config"
	"github.com/pierridotite/QGISGame/internal/httpserver"
	"github.com/pierridotite/QGISGame/internal/puzzle"
	"github.com/pierridotite/QGISGame/internal/store"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Commands stay silent on failure; the error is reported once, here.
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		cancel()
		log.Fatal().Err(err).Msg("qgisgame exited")
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "qgisgame",
		Short:         "QGIS processing-chain card game",
		Long:          `Serves the card game in which learners find the hidden step of a QGIS processing chain.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
		RunE: runServe,
	}
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	})
	root.AddCommand(newCatalogCmd())
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg)

	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	cards, chains := cat.Stats()
	log.Info().Int("cards", cards).Int("chains", chains).Msg("catalog loaded")
	if cfg.UsesDevSecret() {
		log.Warn().Msg("SESSION_SECRET not set; using the development secret")
	}

	mem := store.NewMemoryStore(cfg.SessionTTL, cfg.SessionTTL/4)
	defer mem.Close()

	srv := httpserver.New(httpserver.Options{
		Addr:    cfg.Addr(),
		Catalog: cat,
		Store:   mem,
		Session: httpserver.SessionConfig{
			Secret: []byte(cfg.SessionSecret),
			TTL:    cfg.SessionTTL,
			Cookie: cfg.SessionCookie,
			Secure: cfg.SecureCookies,
		},
		ClientOrigin: cfg.ClientOrigin,
		DefaultLang:  cfg.Lang(),
		NewSource:    sourceFactory(cfg.RandomSeed),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("starting qgisgame server")
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down http server")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

// setupLogging applies the configured level and, for development, a
// human-readable console writer.
func setupLogging(cfg *config.Config) {
	zerolog.SetGlobalLevel(cfg.LogLevel)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// loadCatalog reads the catalog from CATALOG_DB when set, else from
// CATALOG_FILE, else the embedded default.
func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogDB == "" {
		return catalog.Load(cfg.CatalogFile)
	}
	db, err := catalogdb.Open(cfg.CatalogDB)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.CatalogDB, err)
	}
	defer db.Close()
	if err := catalogdb.Migrate(ctx, db); err != nil {
		return nil, fmt.Errorf("migrate %s: %w", cfg.CatalogDB, err)
	}
	return catalogdb.Load(ctx, db)
}

// sourceFactory returns the per-session random source constructor. A zero
// seed draws each session's seed from crypto/rand; any other seed makes
// every session replay the same sequence.
func sourceFactory(seed uint64) func() (puzzle.Source, error) {
	if seed == 0 {
		return func() (puzzle.Source, error) { return puzzle.NewRandomSource() }
	}
	return func() (puzzle.Source, error) { return puzzle.NewSource(seed), nil }
}
