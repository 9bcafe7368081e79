package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/shiftwise/shiftbot/backend/models"
	"github.com/shiftwise/shiftbot/backend/utils"
	dbmodels "github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
)

const salesPerPage = 50

// SalesList returns sales with optional employee, category and date range
// filters, newest first.
func SalesList(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, _ := strconv.Atoi(c.Query("page", "1"))
		if page < 1 {
			page = 1
		}

		filter := repositories.SaleFilter{
			Category:  dbmodels.SaleCategory(c.Query("category")),
			StartDate: c.Query("start_date"),
			EndDate:   c.Query("end_date"),
			Limit:     salesPerPage,
			Offset:    (page - 1) * salesPerPage,
		}
		if raw := c.Query("employee_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return utils.SendBadRequest(c, "Invalid employee_id filter", nil)
			}
			filter.EmployeeID = id
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		result, total, err := app.Repos.Sale.List(ctx, filter)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list sales")
		}

		return utils.SendPaginated(c, result,
			models.NewPaginationInfo(page, salesPerPage, total), "")
	}
}

func SalesCreate(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.SaleCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if _, err := app.Employees.Get(ctx, req.EmployeeID); err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				return utils.SendNotFound(c, "Employee not found")
			}
			return utils.SendInternalServerError(c, "Failed to fetch employee")
		}

		date := req.Date
		if date == "" {
			date = app.Resolver.LocalDate(app.Clock.Now(), app.Timezone())
		}

		sale := &dbmodels.Sale{
			EmployeeID:  req.EmployeeID,
			Category:    dbmodels.SaleCategory(req.Category),
			Amount:      req.Amount,
			Date:        date,
			Description: req.Description,
		}
		if err := app.Repos.Sale.Create(ctx, sale); err != nil {
			return utils.SendInternalServerError(c, "Failed to create sale")
		}
		return utils.SendCreated(c, sale, "Sale recorded")
	}
}

func SalesUpdate(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid sale id", nil)
		}

		var req models.SaleUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		sale, err := app.Repos.Sale.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrSaleNotFound) {
				return utils.SendNotFound(c, "Sale not found")
			}
			return utils.SendInternalServerError(c, "Failed to fetch sale")
		}

		sale.Category = dbmodels.SaleCategory(req.Category)
		sale.Amount = req.Amount
		sale.Date = req.Date
		sale.Description = req.Description

		if err := app.Repos.Sale.Update(ctx, sale); err != nil {
			return utils.SendInternalServerError(c, "Failed to update sale")
		}
		return utils.SendSuccess(c, sale, "Sale updated")
	}
}

func SalesDelete(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid sale id", nil)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := app.Repos.Sale.Delete(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrSaleNotFound) {
				return utils.SendNotFound(c, "Sale not found")
			}
			return utils.SendInternalServerError(c, "Failed to delete sale")
		}
		return utils.SendNoContent(c)
	}
}
