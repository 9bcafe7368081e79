package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/shiftwise/shiftbot/backend/utils"
)

// LoggingMiddleware logs HTTP requests in a structured format
func LoggingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start)

		statusCode := c.Response().StatusCode()
		logLevel := slog.LevelInfo
		if statusCode >= 400 && statusCode < 500 {
			logLevel = slog.LevelWarn
		} else if statusCode >= 500 {
			logLevel = slog.LevelError
		}

		logger := slog.With(
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("query", c.Request().URI().QueryArgs().String()),
			slog.Int("status", statusCode),
			slog.Duration("duration", duration),
			slog.String("ip", utils.GetIPAddress(c)),
			slog.String("user_agent", utils.GetUserAgent(c)),
			slog.Int("size", len(c.Response().Body())),
		)

		if claims, ok := utils.ExtractAdminClaims(c); ok {
			logger = logger.With(
				slog.Int64("employee_id", claims.EmployeeID),
				slog.String("name", claims.Name),
			)
		}

		if err != nil {
			logger = logger.With(slog.Any("error", err))
		}

		logger.Log(c.Context(), logLevel, "HTTP request")

		return err
	}
}
