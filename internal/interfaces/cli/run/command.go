// Package run wires the bot together and starts the polling loops.
package run

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kungming2/translator-BOT-reborn/internal/application/ziwen"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/command"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/language"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/notification"
	"github.com/kungming2/translator-BOT-reborn/internal/domain/title"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/cache"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/config"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/database"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/migration"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/platform"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/repository"
	"github.com/kungming2/translator-BOT-reborn/internal/infrastructure/scheduler"
	"github.com/kungming2/translator-BOT-reborn/internal/shared/logger"
)

var (
	env         string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Long:  `Start the translation-request bot: poll for new posts, comments and messages, and process them.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("starting bot",
		"environment", env,
		"community", cfg.Bot.Community)

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()
	db := database.Get()

	if autoMigrate {
		if err := migration.NewManager(env).Run(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	registry, err := language.NewRegistry()
	if err != nil {
		return fmt.Errorf("failed to load language registry: %w", err)
	}

	var resolverCache language.Cache = cache.NewMemoryResolverCache()
	if cfg.Redis.Enabled {
		client, err := cache.NewClient(&cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		ttl := time.Duration(cfg.Processing.ResolverCacheTTLM) * time.Minute
		resolverCache = cache.NewResolverCache(client, ttl)
	}

	log := logger.NewLogger()
	resolver := language.NewResolver(registry, resolverCache, cfg.Processing.FuzzyThreshold, log)
	titleParser := title.NewParser(resolver, log, cfg.Processing.LongPostChars, cfg.Processing.LongVideoSeconds)
	commandParser := command.NewParser(resolver, log)

	requestRepo := repository.NewRequestRepository(db, registry)
	companionRepo := repository.NewCompanionRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	tallyRepo := repository.NewNotificationTallyRepository(db)
	eventMarker := repository.NewProcessedEventRepository(db)

	// The platform client is pluggable behind the ports; without one
	// configured the bot runs against the dry-run adapter.
	client := platform.NewDryRun(log)
	source, actions := client, client

	dispatcher := notification.NewDispatcher(
		subscriptionRepo,
		platform.NewNotificationMessenger(actions),
		tallyRepo,
		requestRepo,
		rand.New(rand.NewSource(time.Now().UnixNano())),
		cfg.Processing.NotifyCap,
		log,
	)

	freshness := time.Duration(cfg.Bot.FreshnessHours) * time.Hour
	claimExpiry := time.Duration(cfg.Processing.ClaimExpiryHours) * time.Hour
	closeout := time.Duration(cfg.Processing.CloseoutDays) * 24 * time.Hour
	interval := time.Duration(cfg.Bot.PollIntervalSeconds) * time.Second

	posts := ziwen.NewPostProcessor(
		source, actions, eventMarker, requestRepo, companionRepo,
		titleParser, dispatcher, cfg.Bot.BatchSize, freshness,
		cfg.Processing.LabelMaxRunes, log)
	comments := ziwen.NewCommandProcessor(
		source, actions, eventMarker, requestRepo, companionRepo,
		commandParser, dispatcher, cfg.Bot.Username, cfg.Bot.Moderators,
		cfg.Bot.BatchSize, claimExpiry, cfg.Processing.LabelMaxRunes, log)
	messages := ziwen.NewMessageProcessor(
		source, actions, eventMarker, subscriptionRepo, resolver,
		cfg.Bot.BatchSize, log)
	claims := ziwen.NewClaimProcessor(
		requestRepo, actions, companionRepo, claimExpiry,
		cfg.Processing.LabelMaxRunes, log)
	closeouts := ziwen.NewCloseoutProcessor(
		requestRepo, actions, companionRepo, closeout,
		cfg.Bot.BatchSize, log)

	// Everything runs as one sequential pass so no two processors can
	// race on the same request row. Claim expiry runs once per pass; the
	// closeout sweep is folded in on its own cadence.
	pipeline := ziwen.NewPipeline(closeouts, 6*time.Hour, log,
		posts, comments, messages, claims)

	manager := scheduler.NewManager(log)
	manager.Add(scheduler.NewPollScheduler(pipeline, interval, log))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	manager.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	cancel()
	manager.Stop()
	return nil
}
