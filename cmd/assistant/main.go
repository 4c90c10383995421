package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/joho/godotenv"
	"github.com/povarna/knowledge-assistant/internal/answer"
	"github.com/povarna/knowledge-assistant/internal/api"
	"github.com/povarna/knowledge-assistant/internal/config"
	"github.com/povarna/knowledge-assistant/internal/confluence"
	"github.com/povarna/knowledge-assistant/internal/database"
	"github.com/povarna/knowledge-assistant/internal/knowledge"
	"github.com/povarna/knowledge-assistant/internal/llm/bedrock"
	"github.com/povarna/knowledge-assistant/internal/metrics"
	"github.com/povarna/knowledge-assistant/internal/middleware"
	"github.com/povarna/knowledge-assistant/internal/policy"
	"github.com/povarna/knowledge-assistant/internal/setup/logger"
	slackbot "github.com/povarna/knowledge-assistant/internal/slack"
	"github.com/povarna/knowledge-assistant/internal/translator"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

var (
	// Set by LDFLAGS
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "Knowledge Assistant API",
			Description: "Slack knowledge assistant over Confluence and Postgres",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "ask", Description: "Question answering"}},
	}
}

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log.Logger = logger.New(cfg.LogLevel)
	log.Info().Msg("Starting Knowledge Assistant")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	contentPolicy, err := policy.New(cfg.Policy.BlockedPatterns)
	if err != nil {
		return err
	}

	// The main model synthesizes answers; the mini model translates
	// questions into SQL, which is a cheaper, shorter task.
	claudeClient, err := bedrock.NewClient(ctx, cfg.Bedrock.Region, cfg.Bedrock.ModelID)
	if err != nil {
		return fmt.Errorf("unable to initialize Bedrock client: %w", err)
	}
	miniClient, err := bedrock.NewClient(ctx, cfg.Bedrock.Region, cfg.Bedrock.MiniModelID)
	if err != nil {
		return fmt.Errorf("unable to initialize mini Bedrock client: %w", err)
	}

	log.Info().
		Str("region", cfg.Bedrock.Region).
		Str("model", cfg.Bedrock.ModelID).
		Msg("Bedrock clients initialized")

	db, err := database.New(ctx, database.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Database: cfg.Postgres.Database,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	log.Info().Str("host", cfg.Postgres.Host).Str("database", cfg.Postgres.Database).Msg("Database connected")

	confluenceClient := confluence.NewClient(confluence.ClientConfig{
		BaseURL:             cfg.Confluence.BaseURL,
		Username:            cfg.Confluence.Username,
		APIToken:            cfg.Confluence.APIToken,
		Timeout:             cfg.Limits.ConfluenceTimeout,
		MaxIdleConns:        cfg.Limits.MaxIdleConns,
		MaxIdleConnsPerHost: cfg.Limits.MaxIdleConnsPerHost,
	})

	wikiSearcher := knowledge.NewWikiSearcher(confluenceClient, contentPolicy, cfg.Limits.WikiResults)
	queryTranslator := translator.New(miniClient, cfg.Limits.TranslateMaxTokens)
	recordSearcher := knowledge.NewRecordSearcher(
		queryTranslator,
		translator.NewGuard(),
		db,
		contentPolicy,
		cfg.Postgres.AllowedTables,
	)
	composer := answer.NewComposer(wikiSearcher, recordSearcher, claudeClient, contentPolicy, cfg.Limits.SynthesisMaxTokens)

	startMetricsServer()
	startOpsServer(composer, cfg.Limits.RequestTimeout)

	slackCfg, err := slackbot.LoadFromEnv()
	if err != nil {
		return err
	}

	bot := slackbot.NewBot(slackCfg, composer, cfg.Limits.RequestTimeout)
	if err := bot.Initialize(ctx); err != nil {
		log.Warn().Err(err).Msg("Slack auth test failed, continuing anyway")
	}

	log.Info().Msg("Slack bot running")
	err = bot.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("Shutting down")
		return nil
	}
	return err
}

func startMetricsServer() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		return
	}

	metrics.BuildInfo.WithLabelValues(version, commit, date).Set(1)

	go func() {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			log.Error().Err(err).Msg("Failed to start metrics listener")
			return
		}
		log.Info().Str("address", listener.Addr().String()).Msg("Metrics server listening")
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.Serve(listener, mux); err != nil {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
}

func startOpsServer(composer *answer.Composer, timeout time.Duration) {
	port := os.Getenv("OPS_API_PORT")
	if port == "" {
		port = "8081"
	}

	handler := api.NewHandler(composer, timeout)

	container := restful.NewContainer()
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)
	api.RegisterRoutes(container, handler)

	openAPIConfig := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/api/v1/openapi.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}
	container.Add(restfulspec.NewOpenAPIService(openAPIConfig))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	server := http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      corsHandler.Handler(container),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", server.Addr).Msg("Ops API server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Ops API server stopped")
		}
	}()
}
