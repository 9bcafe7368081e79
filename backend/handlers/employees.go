package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/shiftwise/shiftbot/backend/models"
	"github.com/shiftwise/shiftbot/backend/utils"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/employees"
)

// EmployeesList returns all employees, optionally fuzzy-filtered by the
// "q" query parameter.
func EmployeesList(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		result, err := app.Employees.Search(ctx, c.Query("q"))
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list employees")
		}
		return utils.SendSuccess(c, result, "")
	}
}

// EmployeesCreate registers an employee on their behalf, for onboarding
// people who never talked to the bot.
func EmployeesCreate(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.EmployeeCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		employee, err := app.Employees.Register(ctx, req.TelegramID, req.Name)
		switch {
		case errors.Is(err, employees.ErrAlreadyRegistered):
			return utils.SendConflict(c, "An employee with that telegram id already exists", nil)
		case errors.Is(err, employees.ErrNameTooShort):
			return utils.SendBadRequest(c, "Name is too short", nil)
		case err != nil:
			return utils.SendInternalServerError(c, "Failed to create employee")
		}
		return utils.SendCreated(c, employee, "Employee created")
	}
}

func EmployeesDetail(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid employee id", nil)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		employee, err := app.Employees.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				return utils.SendNotFound(c, "Employee not found")
			}
			return utils.SendInternalServerError(c, "Failed to fetch employee")
		}
		return utils.SendSuccess(c, employee, "")
	}
}

func EmployeesUpdate(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid employee id", nil)
		}

		var req models.EmployeeUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		employee, err := app.Employees.Rename(ctx, id, req.Name)
		switch {
		case errors.Is(err, repositories.ErrEmployeeNotFound):
			return utils.SendNotFound(c, "Employee not found")
		case errors.Is(err, employees.ErrNameTooShort):
			return utils.SendBadRequest(c, "Name is too short", nil)
		case err != nil:
			return utils.SendInternalServerError(c, "Failed to update employee")
		}
		return utils.SendSuccess(c, employee, "Employee updated")
	}
}

// EmployeesDeactivate soft-deletes; clock-ins, sales and quiz attempts are
// retained for reporting.
func EmployeesDeactivate(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid employee id", nil)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := app.Employees.Deactivate(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				return utils.SendNotFound(c, "Employee not found")
			}
			return utils.SendInternalServerError(c, "Failed to deactivate employee")
		}
		return utils.SendNoContent(c)
	}
}

func EmployeesGrantAdmin(app *WebApp) fiber.Handler {
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

		if err := app.Employees.GrantAdmin(ctx, id, ""); err != nil {
			return utils.SendInternalServerError(c, "Failed to grant admin")
		}
		return utils.SendSuccess(c, nil, "Admin granted")
	}
}

func parseIDParam(c *fiber.Ctx) (int64, error) {
	return strconv.ParseInt(c.Params("id"), 10, 64)
}
