package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/shiftwise/shiftbot/backend/utils"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/sales"
)

// StatsOverview is the dashboard summary: who's working today and what the
// team moved today and over the trailing week.
func StatsOverview(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		now := app.Clock.Now()
		today := app.Resolver.LocalDate(now, app.Timezone())
		weekStart := app.Resolver.LocalDate(now.AddDate(0, 0, -6), app.Timezone())

		working, err := app.Repos.ClockIn.CountEmployeesOnDate(ctx, today)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to build stats")
		}
		salesToday, err := app.Repos.Sale.SumOnDate(ctx, today)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to build stats")
		}
		salesWeek, err := app.Repos.Sale.SumInRange(ctx, weekStart, today)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to build stats")
		}
		hoursWeek, err := app.Repos.ClockIn.SumHoursInRange(ctx, weekStart, today)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to build stats")
		}

		return utils.SendSuccess(c, fiber.Map{
			"date":              today,
			"employees_working": working,
			"sales_today":       salesToday,
			"sales_week":        salesWeek,
			"hours_week":        hoursWeek,
		}, "")
	}
}

// StatsEmployee returns one employee's period summary; the period query
// parameter accepts today, week, biweek or month.
func StatsEmployee(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid employee id", nil)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if _, err := app.Employees.Get(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				return utils.SendNotFound(c, "Employee not found")
			}
			return utils.SendInternalServerError(c, "Failed to fetch employee")
		}

		period := sales.Period(c.Query("period", string(sales.PeriodToday)))
		stats, err := app.Sales.Stats(ctx, id, period)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to build stats")
		}
		return utils.SendSuccess(c, stats, "")
	}
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
