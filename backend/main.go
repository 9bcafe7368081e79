package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/shiftwise/shiftbot/backend/config"
	"github.com/shiftwise/shiftbot/backend/handlers"
	"github.com/shiftwise/shiftbot/backend/middleware"
	webmodels "github.com/shiftwise/shiftbot/backend/models"
	"github.com/shiftwise/shiftbot/shiftbot"
	"github.com/shiftwise/shiftbot/shiftbot/database"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/employees"
	"github.com/shiftwise/shiftbot/shiftbot/logger"
	"github.com/shiftwise/shiftbot/shiftbot/quiz"
	"github.com/shiftwise/shiftbot/shiftbot/sales"
	"github.com/shiftwise/shiftbot/shiftbot/timeclock"
	"github.com/shiftwise/shiftbot/shiftbot/timeutil"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	customHandler := logger.NewHandler("backend")
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting ShiftBot admin backend",
		slog.String("version", version),
		slog.String("commit", commit))

	_ = godotenv.Load()

	cfg, err := shiftbot.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	webCfg := config.NewWebAppConfig(cfg, os.Getenv("ENV") != "production")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	slog.Info("Connecting to database...")
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Database connected successfully")

	repos := webmodels.NewRepositories(
		repositories.NewEmployeeRepository(db.BunDB()),
		repositories.NewClockInRepository(db.BunDB()),
		repositories.NewSaleRepository(db.BunDB()),
		repositories.NewQuizRepository(db.BunDB()),
		repositories.NewQuizAttemptRepository(db.BunDB()),
	)

	resolver := timeutil.NewResolver(cfg.Timeclock.TimezoneOffsets)
	clock := timeutil.SystemClock{}

	employeeSvc := employees.NewService(repos.Employee)
	timeclockSvc := timeclock.NewService(repos.ClockIn, resolver, clock,
		cfg.Quiz.DefaultTimezone, cfg.Timeclock.StaleThresholdHours)
	salesSvc := sales.NewService(repos.Sale, repos.ClockIn, resolver, clock,
		cfg.Quiz.DefaultTimezone)
	selector := quiz.NewRotationSelector(repos.Quiz, resolver, clock, cfg.Quiz.DefaultTimezone)
	quizSvc := quiz.NewService(repos.Quiz, repos.QuizAttempt, selector, resolver, clock, cfg.Quiz.DefaultTimezone)

	app := fiber.New(fiber.Config{
		AppName:      "ShiftBot Backend API",
		ServerHeader: "ShiftBot-Backend",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Web.AllowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		AllowCredentials: true,
	}))
	app.Use(middleware.LoggingMiddleware())

	webApp := &handlers.WebApp{
		Config:    webCfg,
		DB:        db,
		Repos:     repos,
		Resolver:  resolver,
		Clock:     clock,
		Employees: employeeSvc,
		Timeclock: timeclockSvc,
		Sales:     salesSvc,
		Quiz:      quizSvc,
		Version:   version,
		Commit:    commit,
	}

	setupRoutes(app, webApp)

	address := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	slog.Info("Starting backend server", slog.String("address", address))

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := app.Listen(address); err != nil {
			slog.Error("Failed to start server", slog.String("error", err.Error()))
		}
	}()

	<-c
	slog.Info("Shutting down backend server...")

	ctx, cancel = context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		slog.Error("Server shutdown error", slog.String("error", err.Error()))
	}

	db.Close()

	slog.Info("Backend server shutdown complete")
}

// setupRoutes configures all application routes
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "ShiftBot Backend API",
			"version": webApp.Version,
			"status":  "running",
		})
	})

	// Login gets its own tight rate limit.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	auth := app.Group("/auth")
	auth.Post("/login", middleware.RateLimit(loginLimiter), handlers.Login(webApp))

	// Employee-facing endpoints used by the telegram web client.
	apiLimiter := middleware.NewRateLimiter(120, time.Minute)
	app.Get("/quiz/today", middleware.RateLimit(apiLimiter), handlers.QuizToday(webApp))
	app.Post("/quiz/attempt", middleware.RateLimit(apiLimiter), handlers.QuizAttempt(webApp))
	app.Post("/clockin", middleware.RateLimit(apiLimiter), handlers.ClockIn(webApp))
	app.Post("/clockout", middleware.RateLimit(apiLimiter), handlers.ClockOut(webApp))

	// Protected admin routes
	admin := app.Group("/admin")
	admin.Use(middleware.AuthRequired(webApp.Config))
	admin.Use(middleware.AdminRequired())

	emps := admin.Group("/employees")
	emps.Get("/", handlers.EmployeesList(webApp))
	emps.Post("/", handlers.EmployeesCreate(webApp))
	emps.Get("/:id", handlers.EmployeesDetail(webApp))
	emps.Put("/:id", handlers.EmployeesUpdate(webApp))
	emps.Delete("/:id", handlers.EmployeesDeactivate(webApp))
	emps.Post("/:id/admin", handlers.EmployeesGrantAdmin(webApp))
	emps.Get("/:id/clockins", handlers.ClockInsList(webApp))
	emps.Get("/:id/stats", handlers.StatsEmployee(webApp))

	salesGroup := admin.Group("/sales")
	salesGroup.Get("/", handlers.SalesList(webApp))
	salesGroup.Post("/", handlers.SalesCreate(webApp))
	salesGroup.Put("/:id", handlers.SalesUpdate(webApp))
	salesGroup.Delete("/:id", handlers.SalesDelete(webApp))

	quizGroup := admin.Group("/quiz")
	quizGroup.Get("/questions", handlers.QuestionsList(webApp))
	quizGroup.Post("/questions", handlers.QuestionsCreate(webApp))
	quizGroup.Get("/questions/:id", handlers.QuestionsDetail(webApp))
	quizGroup.Put("/questions/:id", handlers.QuestionsUpdate(webApp))
	quizGroup.Delete("/questions/:id", handlers.QuestionsDelete(webApp))
	quizGroup.Get("/settings", handlers.QuizSettingsGet(webApp))
	quizGroup.Put("/settings", handlers.QuizSettingsUpdate(webApp))

	admin.Get("/stats", handlers.StatsOverview(webApp))
	admin.Post("/clockins/:id/correct", handlers.ClockInsCorrect(webApp))
}
