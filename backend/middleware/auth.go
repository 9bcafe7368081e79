package middleware

import (
	"errors"
	"strings"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"github.com/shiftwise/shiftbot/backend/config"
	"github.com/shiftwise/shiftbot/backend/models"
	"github.com/shiftwise/shiftbot/backend/utils"
)

// AuthRequired middleware ensures the request carries a valid bearer token
func AuthRequired(cfg *config.WebAppConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := parseBearerToken(c, cfg)
		if err != nil {
			slog.Debug("Auth required: no valid token", slog.String("error", err.Error()))
			return utils.SendUnauthorized(c, "Authentication required")
		}

		c.Locals("user", claims)

		slog.Debug("Auth middleware: user authenticated",
			slog.Int64("employee_id", claims.EmployeeID),
			slog.String("name", claims.Name))

		return c.Next()
	}
}

// AdminRequired middleware ensures the user has admin privileges
func AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := utils.ExtractAdminClaims(c)
		if !ok {
			slog.Warn("Admin required: no user in context")
			return utils.SendForbidden(c, "Access denied")
		}

		if !claims.IsAdmin {
			slog.Warn("Admin required: user lacks admin privileges",
				slog.Int64("employee_id", claims.EmployeeID),
				slog.String("name", claims.Name))
			return utils.SendForbidden(c, "Admin access required")
		}

		return c.Next()
	}
}

func parseBearerToken(c *fiber.Ctx, cfg *config.WebAppConfig) (*models.AdminClaims, error) {
	header := c.Get("Authorization")
	if header == "" {
		return nil, errors.New("missing authorization header")
	}
	raw := strings.TrimPrefix(header, "Bearer ")
	if raw == header {
		return nil, errors.New("malformed authorization header")
	}

	claims := new(models.AdminClaims)
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return cfg.JWTSecret(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
