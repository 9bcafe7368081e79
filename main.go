package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/shiftwise/shiftbot/shiftbot"
	"github.com/shiftwise/shiftbot/shiftbot/commands"
	"github.com/shiftwise/shiftbot/shiftbot/database"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/employees"
	"github.com/shiftwise/shiftbot/shiftbot/logger"
	"github.com/shiftwise/shiftbot/shiftbot/quiz"
	"github.com/shiftwise/shiftbot/shiftbot/sales"
	"github.com/shiftwise/shiftbot/shiftbot/session"
	"github.com/shiftwise/shiftbot/shiftbot/timeclock"
	"github.com/shiftwise/shiftbot/shiftbot/timeutil"
)

var (
	version = "dev"
	commit  = "unknown"
)

const conversationCacheSize = 1024

func main() {
	customHandler := logger.NewHandler("bot")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting ShiftBot",
		slog.String("version", version),
		slog.String("commit", commit))

	// Local development convenience; production sets real env vars.
	_ = godotenv.Load()

	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := shiftbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
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

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	defer db.Close()

	b := shiftbot.New(*cfg, version, commit)
	b.DB = db

	b.EmployeeRepository = repositories.NewEmployeeRepository(db.BunDB())
	b.ClockInRepository = repositories.NewClockInRepository(db.BunDB())
	b.SaleRepository = repositories.NewSaleRepository(db.BunDB())
	b.QuizRepository = repositories.NewQuizRepository(db.BunDB())
	b.QuizAttemptRepository = repositories.NewQuizAttemptRepository(db.BunDB())

	b.Resolver = timeutil.NewResolver(cfg.Timeclock.TimezoneOffsets)
	b.Clock = timeutil.SystemClock{}

	b.Employees = employees.NewService(b.EmployeeRepository)
	b.Timeclock = timeclock.NewService(b.ClockInRepository, b.Resolver, b.Clock,
		cfg.Quiz.DefaultTimezone, cfg.Timeclock.StaleThresholdHours)
	b.Sales = sales.NewService(b.SaleRepository, b.ClockInRepository, b.Resolver, b.Clock,
		cfg.Quiz.DefaultTimezone)

	selector := quiz.NewRotationSelector(b.QuizRepository, b.Resolver, b.Clock, cfg.Quiz.DefaultTimezone)
	b.Quiz = quiz.NewService(b.QuizRepository, b.QuizAttemptRepository, selector, b.Resolver, b.Clock, cfg.Quiz.DefaultTimezone)

	sessions, err := session.NewStore(conversationCacheSize)
	if err != nil {
		slog.Error("Failed to create session store", slog.Any("error", err))
		os.Exit(-1)
	}
	b.Sessions = sessions

	if err := b.SetupBot(); err != nil {
		slog.Error("Failed to setup bot", slog.Any("error", err))
		os.Exit(-1)
	}
	defer b.Close()

	if _, err := b.API.Request(tgbotapi.NewSetMyCommands(commands.BotCommands()...)); err != nil {
		slog.Error("Failed to register bot commands", slog.Any("error", err))
	}

	router := commands.NewRouter(b)

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		updates := b.Updates()
		for {
			select {
			case <-gCtx.Done():
				return gCtx.Err()
			case update, ok := <-updates:
				if !ok {
					return nil
				}
				router.HandleUpdate(gCtx, update)
			}
		}
	})

	slog.Info("ShiftBot is now running. Press CTRL-C to exit.",
		slog.String("type", "sys"))

	if err := g.Wait(); err != nil && err != context.Canceled {
		slog.Error("Bot stopped with error", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Shutting down...")
}
