package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shiftwise/shiftbot/backend/config"
	"github.com/shiftwise/shiftbot/backend/models"
	"github.com/shiftwise/shiftbot/backend/utils"
	"github.com/shiftwise/shiftbot/shiftbot/database"
	"github.com/shiftwise/shiftbot/shiftbot/employees"
	"github.com/shiftwise/shiftbot/shiftbot/quiz"
	"github.com/shiftwise/shiftbot/shiftbot/sales"
	"github.com/shiftwise/shiftbot/shiftbot/timeclock"
	"github.com/shiftwise/shiftbot/shiftbot/timeutil"
)

// WebApp holds everything the HTTP handlers need.
type WebApp struct {
	Config   *config.WebAppConfig
	DB       *database.DB
	Repos    *models.Repositories
	Resolver *timeutil.Resolver
	Clock    timeutil.Clock

	Employees *employees.Service
	Timeclock *timeclock.Service
	Sales     *sales.Service
	Quiz      *quiz.Service

	Version string
	Commit  string
}

// Timezone is the business timezone used for date arithmetic.
func (app *WebApp) Timezone() string {
	return app.Config.Config.Quiz.DefaultTimezone
}

// requestContext bounds handler work against a slow database.
func requestContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), 10*time.Second)
}

// HealthCheck reports process and database health.
func HealthCheck(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		dbStatus := "ok"
		if err := app.DB.Ping(ctx); err != nil {
			dbStatus = "unreachable"
		}

		status := fiber.StatusOK
		if dbStatus != "ok" {
			status = fiber.StatusServiceUnavailable
		}

		return utils.SendJSON(c, status, fiber.Map{
			"status":   dbStatus,
			"version":  app.Version,
			"commit":   app.Commit,
			"env":      app.Config.Environment,
			"database": dbStatus,
		})
	}
}
