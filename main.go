package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	sentry "github.com/getsentry/sentry-go"
	telego "github.com/mymmrac/telego"

	"taxiads-backend/internal/ads"
	"taxiads-backend/internal/auth"
	"taxiads-backend/internal/config"
	"taxiads-backend/internal/database"
	"taxiads-backend/internal/expiration"
	"taxiads-backend/internal/locales"
	"taxiads-backend/internal/notify"
	"taxiads-backend/internal/opsbot"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize localization bundle
	locales.Init(cfg.DefaultLanguage)

	// Initialize Sentry (if DSN is provided)
	err = sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.AppEnv,
		Release:          cfg.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}
	defer sentry.Flush(2 * time.Second)

	// Connect to MongoDB
	client, db, err := database.ConnectDB(cfg)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal(err)
	}
	defer func() {
		if err = client.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
			sentry.CaptureException(err)
		} else {
			log.Println("Disconnected from MongoDB.")
		}
	}()

	// Create repository instances
	adRepo := database.NewMongoAdvertisementRepository(client, db)
	userRepo := database.NewMongoUserRepository(db)

	// Creating context for application lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Admin checker for operator-gated actions (manual runs, review).
	adminChecker, err := auth.NewAdminChecker(userRepo)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to create admin checker: %v", err)
	}

	// Advertisement lifecycle service (draft/publish/review/upgrade).
	adService := ads.NewService(adRepo)

	// The operator bot is optional: without a token the expiration
	// pipeline runs silently and review happens through the admin panel.
	var notifier expiration.Notifier = notify.NoopNotifier{}
	var bot *telego.Bot
	if cfg.OpsBotToken != "" {
		if cfg.Debug {
			bot, err = telego.NewBot(cfg.OpsBotToken, telego.WithDefaultDebugLogger())
		} else {
			bot, err = telego.NewBot(cfg.OpsBotToken, telego.WithDefaultLogger(false, false))
		}
		if err != nil {
			sentry.CaptureException(err)
			log.Fatalf("Failed to create operator bot: %v", err)
		}
		notifier, err = notify.NewTelegramNotifier(bot, cfg.OpsChatID)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatalf("Failed to create operator notifier: %v", err)
		}
	}

	// Expiration pipeline: scanner + committer behind the scheduler guard.
	// All timers start here explicitly; nothing runs at import time.
	scanner := expiration.NewScanner(adRepo, nil)
	committer := expiration.NewCommitter(adRepo, nil)
	scheduler := expiration.NewScheduler(scanner, committer, notifier, nil, expiration.SchedulerConfig{
		Cooldown:        cfg.ExpirationCooldown,
		WatchdogTimeout: cfg.ExpirationWatchdogTimeout,
	})

	stopPeriodic := scheduler.StartPeriodic(ctx, cfg.ExpirationInitialDelay, cfg.ExpirationInterval)
	defer stopPeriodic()
	log.Printf("Expiration scheduler started (initial delay %v, interval %v, cooldown %v)",
		cfg.ExpirationInitialDelay, cfg.ExpirationInterval, cfg.ExpirationCooldown)

	// Operator command surface: /expire, /approve, /reject.
	if bot != nil {
		updates, err := bot.UpdatesViaLongPolling(ctx, nil)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatalf("Failed to start long polling: %v", err)
		}
		appBot, err := opsbot.New(opsbot.Deps{
			Bot:          bot,
			UpdatesChan:  updates,
			Runner:       scheduler,
			Reviewer:     adService,
			AdminChecker: adminChecker,
			Debug:        cfg.Debug,
		})
		if err != nil {
			sentry.CaptureException(err)
			log.Fatalf("Failed to create ops bot: %v", err)
		}
		go appBot.Start(ctx)

		// With operators online, poll faster than the baseline interval.
		// Still subject to the cooldown, so this never doubles up runs.
		stopAdminPoll := scheduler.StartAdminPoll(ctx, cfg.AdminPollInterval)
		defer stopAdminPoll()
	}

	// Wait for context cancellation (e.g., SIGINT, SIGTERM)
	<-ctx.Done()

	log.Println("Shutting down...")
	log.Println("Shutdown complete.")
}
