package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"log/slog"

	"github.com/shiftwise/shiftbot/backend/models"
	"github.com/shiftwise/shiftbot/backend/utils"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/timeclock"
)

// ClockIn opens today's session for the employee behind a telegram account.
// Quiz gating happens in the client; the server only enforces the session
// rules.
func ClockIn(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ClockActionRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		employee, err := app.Employees.Lookup(ctx, req.TelegramID)
		if err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				return utils.SendNotFound(c, "Unknown telegram account")
			}
			return utils.SendInternalServerError(c, "Failed to look up employee")
		}

		session, err := app.Timeclock.ClockIn(ctx, employee.ID)
		var stale *timeclock.StaleSessionError
		switch {
		case errors.As(err, &stale):
			return utils.SendConflict(c, "An open session from a previous day needs correction", map[string]string{
				"session_id":    itoa(stale.SessionID),
				"date":          stale.Date,
				"implied_hours": ftoa(stale.ImpliedHours),
			})
		case errors.Is(err, timeclock.ErrAlreadyClockedIn):
			return utils.SendConflict(c, "Already clocked in today", nil)
		case err != nil:
			return utils.SendInternalServerError(c, "Failed to clock in")
		}
		return utils.SendCreated(c, session, "Clocked in")
	}
}

func ClockOut(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.ClockActionRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		employee, err := app.Employees.Lookup(ctx, req.TelegramID)
		if err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				return utils.SendNotFound(c, "Unknown telegram account")
			}
			return utils.SendInternalServerError(c, "Failed to look up employee")
		}

		session, err := app.Timeclock.ClockOut(ctx, employee.ID)
		switch {
		case errors.Is(err, timeclock.ErrNotClockedIn):
			return utils.SendConflict(c, "No open session today", nil)
		case errors.Is(err, timeclock.ErrSessionClosed):
			return utils.SendConflict(c, "Already clocked out today", nil)
		case err != nil:
			return utils.SendInternalServerError(c, "Failed to clock out")
		}
		return utils.SendSuccess(c, session, "Clocked out")
	}
}

// ClockInsList returns one employee's sessions in a date range.
func ClockInsList(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		employeeID, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid employee id", nil)
		}

		endDate := c.Query("end_date")
		startDate := c.Query("start_date")
		if endDate == "" {
			endDate = app.Resolver.LocalDate(app.Clock.Now(), app.Timezone())
		}
		if startDate == "" {
			startDate = app.Resolver.LocalDate(app.Clock.Now().AddDate(0, 0, -30), app.Timezone())
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		sessions, err := app.Timeclock.History(ctx, employeeID, startDate, endDate)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list sessions")
		}
		return utils.SendSuccess(c, sessions, "")
	}
}

// ClockInsCorrect rewrites a session's times. The stored hours are always
// recomputed from the corrected pair rather than trusted from the caller.
func ClockInsCorrect(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid session id", nil)
		}

		var req models.CorrectionRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		clockIn, err := time.Parse(time.RFC3339, req.ClockInTime)
		if err != nil {
			return utils.SendBadRequest(c, "clock_in_time must be RFC 3339", nil)
		}
		var clockOut *time.Time
		if req.ClockOutTime != nil {
			parsed, err := time.Parse(time.RFC3339, *req.ClockOutTime)
			if err != nil {
				return utils.SendBadRequest(c, "clock_out_time must be RFC 3339", nil)
			}
			clockOut = &parsed
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		session, err := app.Timeclock.Correct(ctx, id, clockIn, clockOut)
		switch {
		case errors.Is(err, repositories.ErrSessionNotFound):
			return utils.SendNotFound(c, "Session not found")
		case errors.Is(err, timeclock.ErrInvalidCorrection):
			return utils.SendBadRequest(c, "Clock-out must come after clock-in", nil)
		case err != nil:
			return utils.SendInternalServerError(c, "Failed to correct session")
		}

		if claims, ok := utils.ExtractAdminClaims(c); ok {
			slog.Info("Session corrected by admin",
				slog.Int64("session_id", id),
				slog.Int64("admin_id", claims.EmployeeID))
		}
		return utils.SendSuccess(c, session, "Session corrected")
	}
}
