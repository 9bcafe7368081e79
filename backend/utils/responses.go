package utils

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/shiftwise/shiftbot/backend/models"
)

// SendJSON sends a JSON response using Fiber
func SendJSON(c *fiber.Ctx, statusCode int, data interface{}) error {
	return c.Status(statusCode).JSON(data)
}

// SendSuccess sends a successful JSON response
func SendSuccess(c *fiber.Ctx, data interface{}, message string) error {
	response := models.NewSuccessResponse(data, message)
	return SendJSON(c, http.StatusOK, response)
}

// SendCreated sends a created resource JSON response
func SendCreated(c *fiber.Ctx, data interface{}, message string) error {
	response := models.NewSuccessResponse(data, message)
	return SendJSON(c, http.StatusCreated, response)
}

// SendError sends an error JSON response
func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	response := models.NewErrorResponse(code, message, details)
	return SendJSON(c, statusCode, response)
}

// SendBadRequest sends a bad request error response
func SendBadRequest(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

// SendUnauthorized sends an unauthorized error response
func SendUnauthorized(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// SendForbidden sends a forbidden error response
func SendForbidden(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusForbidden, "FORBIDDEN", message, nil)
}

// SendNotFound sends a not found error response
func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

// SendConflict sends a conflict error response
func SendConflict(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusConflict, "CONFLICT", message, details)
}

// SendInternalServerError sends an internal server error response
func SendInternalServerError(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}

// SendUnprocessableEntity sends an unprocessable entity error response
func SendUnprocessableEntity(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, details)
}

// SendPaginated sends a paginated JSON response
func SendPaginated(c *fiber.Ctx, data interface{}, pagination *models.PaginationInfo, message string) error {
	response := models.NewPaginatedResponse(data, pagination, message)
	return SendJSON(c, http.StatusOK, response)
}

// SendNoContent sends a no content response
func SendNoContent(c *fiber.Ctx) error {
	return c.SendStatus(http.StatusNoContent)
}

// HandleValidationErrors converts validation errors to API response
func HandleValidationErrors(c *fiber.Ctx, errors []models.ValidationError) error {
	details := make(map[string]string, len(errors))
	for _, e := range errors {
		details[e.Field] = e.Message
	}
	return SendUnprocessableEntity(c, "Validation failed", details)
}

// GetIPAddress extracts the client IP, honoring proxy headers
func GetIPAddress(c *fiber.Ctx) string {
	if ip := c.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := c.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return c.IP()
}

// GetUserAgent extracts the user agent from the request
func GetUserAgent(c *fiber.Ctx) string {
	return c.Get("User-Agent")
}

// ExtractAdminClaims returns the authenticated admin from the request
// context, set by the auth middleware.
func ExtractAdminClaims(c *fiber.Ctx) (*models.AdminClaims, bool) {
	claims, ok := c.Locals("user").(*models.AdminClaims)
	return claims, ok
}
