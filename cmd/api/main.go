package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"server/internal/adapter/repo"
	"server/internal/build"
	"server/internal/content"
	"server/internal/http/handlers"
	httpapi "server/internal/http/httpapi"
	"server/internal/infra"
	"server/internal/infra/geoip"
	"server/internal/middleware"
	"server/internal/providers/scraper"
	"server/internal/providers/template"
	"server/internal/provision"
	"server/internal/seo"
	"server/internal/storage"
	"server/internal/voice"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	dbpool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer dbpool.Close()

	sites := repo.NewSiteRepository(dbpool)
	jobs := repo.NewBuildJobRepository(dbpool)
	progress := repo.NewProgressWriter(dbpool)

	scrape := scraper.NewClient(scraper.Options{BaseURL: cfg.ScraperBaseURL, Logger: &logger})
	engine := template.NewEngine(&logger)
	stage := content.NewStage(scrape, engine, &logger)

	var provisioner provision.Provisioner
	if cfg.ProvisionerBaseURL != "" {
		provisioner = provision.NewClient(provision.Options{BaseURL: cfg.ProvisionerBaseURL, Logger: &logger})
	} else {
		local, err := provision.NewLocal(cfg.LocalRepoRoot, &logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init local provisioner")
		}
		provisioner = local
	}

	voiceClient := voice.NewClient(voice.Options{BaseURL: cfg.VoiceBaseURL, Logger: &logger})

	console := seo.NewConsole(seo.ConsoleOptions{
		BaseURL:         cfg.SearchConsoleBaseURL,
		IndexingBaseURL: cfg.IndexingBaseURL,
		TokenURL:        cfg.OAuthTokenURL,
		ClientID:        cfg.OAuthClientID,
		ClientSecret:    cfg.OAuthClientSecret,
		Logger:          &logger,
	})
	publisher := seo.NewPublisher(console, console, &logger)

	var artifacts build.ArtifactStore
	if cfg.StoragePath != "" {
		store, err := storage.NewFileStore(cfg.StoragePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init artifact store")
		}
		artifacts = store
	}

	runner := build.NewRunner(logger, cfg.BuildConcurrency)
	orchestrator := build.NewOrchestrator(build.Options{
		Sites:            sites,
		Jobs:             jobs,
		Progress:         progress,
		Content:          stage,
		Provisioner:      provisioner,
		Voice:            voiceClient,
		SEO:              publisher,
		Scheduler:        runner,
		Artifacts:        artifacts,
		Logger:           logger,
		ProvisionTimeout: cfg.ProvisionTimeout,
		VoiceTimeout:     cfg.VoiceTimeout,
	})

	var countryLookup middleware.CountryLookup
	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	} else if resolver != nil {
		countryLookup = resolver.CountryCode
	}

	app := &handlers.App{
		SQL:    infra.NewSQLRunner(dbpool, logger),
		Builds: orchestrator,
		Logger: logger,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:         logger,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		DefaultLocale:  cfg.DefaultLocale,
		CountryLookup:  countryLookup,
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	// Let in-flight builds reach a terminal state before exiting.
	if err := runner.Drain(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("builds still in flight at shutdown")
	}
	logger.Info().Msg("server stopped")
}
