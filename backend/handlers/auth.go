package handlers

import (
	"crypto/subtle"
	"errors"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/shiftwise/shiftbot/backend/models"
	"github.com/shiftwise/shiftbot/backend/utils"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
)

// Login exchanges the shared panel password plus a telegram identity for a
// bearer token. Only employees with an admin grant get a token.
func Login(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.LoginRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		configured := app.Config.GetWebConfig().AdminPassword
		if configured == "" {
			slog.Error("Login attempted with no admin password configured")
			return utils.SendInternalServerError(c, "Login is not configured")
		}
		if subtle.ConstantTimeCompare([]byte(req.Password), []byte(configured)) != 1 {
			slog.Warn("Login failed: bad password",
				slog.String("telegram_id", req.TelegramID),
				slog.String("ip", utils.GetIPAddress(c)))
			return utils.SendUnauthorized(c, "Invalid credentials")
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		employee, err := app.Employees.Lookup(ctx, req.TelegramID)
		if err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				return utils.SendUnauthorized(c, "Invalid credentials")
			}
			return utils.SendInternalServerError(c, "Login failed")
		}

		isAdmin, err := app.Employees.IsAdmin(ctx, employee.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Login failed")
		}
		if !isAdmin {
			slog.Warn("Login refused: not an admin",
				slog.Int64("employee_id", employee.ID))
			return utils.SendForbidden(c, "Admin access required")
		}

		now := time.Now()
		claims := &models.AdminClaims{
			EmployeeID: employee.ID,
			Name:       employee.Name,
			TelegramID: employee.TelegramID,
			IsAdmin:    true,
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        uuid.NewString(),
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(app.Config.TokenTTL)),
			},
		}

		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
			SignedString(app.Config.JWTSecret())
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to issue token")
		}

		slog.Info("Admin logged in",
			slog.Int64("employee_id", employee.ID),
			slog.String("name", employee.Name))

		return utils.SendSuccess(c, fiber.Map{
			"token":      token,
			"expires_at": claims.ExpiresAt.Time,
			"employee": fiber.Map{
				"id":   employee.ID,
				"name": employee.Name,
			},
		}, "Logged in")
	}
}
