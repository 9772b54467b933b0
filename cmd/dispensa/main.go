package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/promoworks/dispensa/internal/config"
	"github.com/promoworks/dispensa/internal/dispensa"
	"github.com/promoworks/dispensa/internal/http_api"
	"github.com/promoworks/dispensa/internal/notificator"
	"github.com/promoworks/dispensa/internal/repository"
	"github.com/promoworks/dispensa/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "dispensa",
		Usage: "Dispensa is a coupon distribution service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.IntFlag{Name: "api-port", Aliases: []string{"a"}, Usage: "API listen port"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
			&cli.Int64Flag{Name: "cooldown-ms", Aliases: []string{"c"}, Usage: "Cooldown between claims in milliseconds"},
			&cli.IntFlag{Name: "minimum-coupons", Aliases: []string{"m"}, Usage: "Unclaimed floor that triggers replenishment"},
			&cli.IntFlag{Name: "replenish-count", Aliases: []string{"r"}, Usage: "Coupons generated per replenishment batch"},
			&cli.IntFlag{Name: "seed-count", Aliases: []string{"s"}, Usage: "Coupons seeded into an empty store"},
		},
		Action: func(c *cli.Context) error {
			return run(c)
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

func run(c *cli.Context) error {
	// Load configuration from environment variables
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	// Override with flags if set
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("api-port") {
		cfg.APIPort = c.Int("api-port")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}
	if c.IsSet("cooldown-ms") {
		cfg.CooldownDurationMs = c.Int64("cooldown-ms")
	}
	if c.IsSet("minimum-coupons") {
		cfg.MinimumCoupons = c.Int("minimum-coupons")
	}
	if c.IsSet("replenish-count") {
		cfg.ReplenishCount = c.Int("replenish-count")
	}
	if c.IsSet("seed-count") {
		cfg.InitialSeedCount = c.Int("seed-count")
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize database
	db, err := repository.NewPostgresDB(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %v", err)
	}

	// Initialize ops alerting, each provider optional
	var telegramAlerter *notificator.TelegramAlerter
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		telegramAlerter, err = notificator.NewTelegramAlerter(log, cfg.TelegramBotToken, cfg.TelegramChatID, db)
		if err != nil {
			return fmt.Errorf("failed to initialize telegram alerter: %v", err)
		}
	}
	var emailAlerter *notificator.EmailAlerter
	if cfg.SMTPHost != "" && cfg.AlertRecipient != "" {
		emailAlerter = notificator.NewEmailAlerter(log, cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.SMTPSender, cfg.AlertRecipient)
	}
	alerter := notificator.NewNotificator(log, telegramAlerter, emailAlerter)

	// Create Dispensa instance
	dispensaApp := dispensa.NewDispensa(db, alerter, log, cfg)

	// Seed the pool before accepting claims
	if err := dispensaApp.Bootstrap(); err != nil {
		return fmt.Errorf("failed to bootstrap coupon pool: %v", err)
	}

	apiServer := http_api.NewHTTPServer(dispensaApp, cfg, log)

	go apiServer.Start()

	// Block until asked to stop, then drain in-flight requests
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := apiServer.Shutdown(); err != nil {
		log.Error("Failed to shut down API server", "error", err)
	}
	if err := db.Close(); err != nil {
		log.Error("Failed to close database", "error", err)
	}
	_ = log.Sync()

	return nil
}
