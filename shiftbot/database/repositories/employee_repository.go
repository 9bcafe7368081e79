package repositories

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrTelegramIDExists = errors.New("telegram id already registered")
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *models.Employee) error
	GetByID(ctx context.Context, id int64) (*models.Employee, error)
	GetByTelegramID(ctx context.Context, telegramID string) (*models.Employee, error)
	Update(ctx context.Context, employee *models.Employee) error
	Deactivate(ctx context.Context, id int64) error
	List(ctx context.Context) ([]*models.Employee, error)
	IsAdmin(ctx context.Context, employeeID int64) (bool, error)
	GrantAdmin(ctx context.Context, employeeID int64, permissions string) error
	AdminEmployeeIDs(ctx context.Context) (map[int64]bool, error)
}

type employeeRepository struct {
	db *bun.DB
}

func NewEmployeeRepository(db *bun.DB) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *models.Employee) error {
	existing, err := r.GetByTelegramID(ctx, employee.TelegramID)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if existing != nil {
		return ErrTelegramIDExists
	}

	if employee.Role == "" {
		employee.Role = "employee"
	}
	employee.Active = true
	employee.CreatedAt = time.Now()
	_, err = r.db.NewInsert().Model(employee).Exec(ctx)
	if err != nil && isUniqueViolation(err) {
		return ErrTelegramIDExists
	}
	return err
}

func (r *employeeRepository) GetByID(ctx context.Context, id int64) (*models.Employee, error) {
	employee := new(models.Employee)
	err := r.db.NewSelect().
		Model(employee).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

func (r *employeeRepository) GetByTelegramID(ctx context.Context, telegramID string) (*models.Employee, error) {
	slog.Debug("EmployeeRepository.GetByTelegramID called",
		slog.String("type", "db"),
		slog.String("operation", "GetByTelegramID"),
		slog.String("telegram_id", telegramID))

	employee := new(models.Employee)
	err := r.db.NewSelect().
		Model(employee).
		Where("telegram_id = ?", telegramID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	return employee, nil
}

func (r *employeeRepository) Update(ctx context.Context, employee *models.Employee) error {
	res, err := r.db.NewUpdate().
		Model(employee).
		WherePK().
		Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrTelegramIDExists
		}
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// Deactivate soft-deletes: the row and all its history stay queryable.
func (r *employeeRepository) Deactivate(ctx context.Context, id int64) error {
	res, err := r.db.NewUpdate().
		Model((*models.Employee)(nil)).
		Set("active = ?", false).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) List(ctx context.Context) ([]*models.Employee, error) {
	var employees []*models.Employee
	err := r.db.NewSelect().
		Model(&employees).
		Order("created_at ASC").
		Scan(ctx)
	return employees, err
}

func (r *employeeRepository) IsAdmin(ctx context.Context, employeeID int64) (bool, error) {
	count, err := r.db.NewSelect().
		Model((*models.Admin)(nil)).
		Where("employee_id = ?", employeeID).
		Count(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *employeeRepository) GrantAdmin(ctx context.Context, employeeID int64, permissions string) error {
	if permissions == "" {
		permissions = "read,write"
	}
	admin := &models.Admin{EmployeeID: employeeID, Permissions: permissions}
	_, err := r.db.NewInsert().Model(admin).Exec(ctx)
	return err
}

func (r *employeeRepository) AdminEmployeeIDs(ctx context.Context) (map[int64]bool, error) {
	var admins []*models.Admin
	if err := r.db.NewSelect().Model(&admins).Scan(ctx); err != nil {
		return nil, err
	}
	ids := make(map[int64]bool, len(admins))
	for _, a := range admins {
		ids[a.EmployeeID] = true
	}
	return ids, nil
}
