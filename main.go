package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/fealty/fealty"
	"github.com/ellavondegurechaff/fealty/fealty/commands"
	"github.com/ellavondegurechaff/fealty/fealty/database"
	"github.com/ellavondegurechaff/fealty/fealty/database/repositories"
	"github.com/ellavondegurechaff/fealty/fealty/economy"
	"github.com/ellavondegurechaff/fealty/fealty/handlers"
	"github.com/ellavondegurechaff/fealty/fealty/logger"
	"github.com/ellavondegurechaff/fealty/fealty/migration"
	"github.com/ellavondegurechaff/fealty/fealty/progression"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	slog.Info("Starting Fealty Discord Bot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	migrateLegacy := flag.String("migrate-legacy", "", "Import legacy BSON dumps from this directory (or s3://bucket/prefix) and exit")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := fealty.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	if *migrateLegacy != "" {
		dataDir := *migrateLegacy
		if strings.HasPrefix(dataDir, "s3://") {
			dataDir, err = fetchLegacyDumps(ctx, cfg.Spaces, *migrateLegacy)
			if err != nil {
				slog.Error("Failed to fetch legacy dumps", slog.Any("error", err))
				os.Exit(-1)
			}
			defer os.RemoveAll(dataDir)
		}

		migrator := migration.NewMigrator(db.BunDB(), dataDir)
		if err := migrator.MigrateAll(ctx); err != nil {
			slog.Error("Legacy migration failed", slog.Any("error", err))
			os.Exit(-1)
		}
		return
	}

	b := fealty.New(*cfg, version, commit)
	b.DB = db

	b.ActivityRepository = repositories.NewActivityRepository(db.BunDB())
	b.OrderRepository = repositories.NewOrderRepository(db.BunDB())
	b.DisciplineRepository = repositories.NewDisciplineRepository(db.BunDB())
	b.WalletRepository = repositories.NewWalletRepository(db.BunDB())
	b.RankCacheRepository = repositories.NewRankCacheRepository(db.BunDB())
	b.WeeklyClaimRepository = repositories.NewWeeklyClaimRepository(db.BunDB())
	b.JobRunRepository = repositories.NewJobRunRepository(db.BunDB())

	b.RankService = progression.NewService(
		b.ActivityRepository,
		b.OrderRepository,
		b.DisciplineRepository,
		b.WalletRepository,
		b.RankCacheRepository,
		cfg.Economy.DebtDemotionThreshold,
	)
	b.StipendService = economy.NewStipendService(
		b.RankService,
		b.WalletRepository,
		b.DisciplineRepository,
		b.WeeklyClaimRepository,
		economy.StipendConfig{
			ClaimMin:       cfg.Economy.ClaimMin,
			ClaimMax:       cfg.Economy.ClaimMax,
			GarnishPercent: cfg.Economy.GarnishPercent,
		},
	)
	b.JobRunner = economy.NewJobRunner(
		b.RankService,
		b.ActivityRepository,
		b.DisciplineRepository,
		b.WalletRepository,
		b.WeeklyClaimRepository,
		b.JobRunRepository,
		economy.JobConfig{
			InactivityTaxFloor:  cfg.Economy.InactivityTaxFloor,
			InactivityTaxRate:   cfg.Economy.InactivityTaxRate,
			DebtInterestPercent: cfg.Economy.DebtInterestPercent,
		},
	)

	activityListener := handlers.NewActivityListener(b.ActivityRepository)

	h := handler.New()
	h.Command("/rank", handlers.WrapWithLogging("rank", activityListener.TrackCommand(commands.RankHandler(b))))
	h.Command("/stipend", handlers.WrapWithLogging("stipend", activityListener.TrackCommand(commands.StipendHandler(b))))
	h.Command("/debt", handlers.WrapWithLogging("debt", commands.DebtHandler(b)))
	h.Command("/ladder", handlers.WrapWithLogging("ladder", activityListener.TrackCommand(commands.LadderHandler(b))))
	h.Autocomplete("/ladder", commands.LadderAutocompleteHandler)
	h.Command("/order", handlers.WrapWithLogging("order", commands.OrderHandler(b)))

	listeners := append([]bot.EventListener{h, bot.NewListenerFunc(b.OnReady)}, activityListener.Listeners()...)
	if err = b.SetupBot(listeners...); err != nil {
		logger.LogError("Failed to setup bot", err)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		logger.LogSystem("Syncing commands", slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			logger.LogError("Failed to sync commands", err)
		}
	}

	gatewayCtx, gatewayCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer gatewayCancel()
	if err = b.Client.OpenGateway(gatewayCtx); err != nil {
		logger.LogError("Failed to open gateway", err)
		os.Exit(-1)
	}

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	activityListener.StartPresenceTicker(runCtx)

	b.Scheduler = economy.NewScheduler(b.JobRunner, func() []string {
		var ids []string
		b.Client.Caches().GuildsForEach(func(guild discord.Guild) {
			ids = append(ids, guild.ID.String())
		})
		return ids
	})
	b.Scheduler.Start(runCtx)

	logger.LogSystem("Fealty is running")

	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-s
	logger.LogSystem("Shutting down")
}

// fetchLegacyDumps downloads the dump files named by an s3://bucket/prefix
// location into a fresh temp directory and returns its path.
func fetchLegacyDumps(ctx context.Context, spaces fealty.SpacesConfig, location string) (string, error) {
	bucket, prefix, err := migration.ParseSpacesURL(location)
	if err != nil {
		return "", err
	}

	fetcher, err := migration.NewSpacesFetcher(spaces.Key, spaces.Secret, spaces.Region, bucket)
	if err != nil {
		return "", err
	}

	dataDir, err := os.MkdirTemp("", "fealty-dumps-*")
	if err != nil {
		return "", err
	}

	if err := fetcher.FetchDumps(ctx, prefix, dataDir); err != nil {
		os.RemoveAll(dataDir)
		return "", err
	}
	return dataDir, nil
}
