package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrSessionNotFound  = errors.New("clock-in session not found")
	ErrDuplicateSession = errors.New("clock-in session already exists for this date")
)

type ClockInRepository interface {
	Create(ctx context.Context, session *models.ClockIn) error
	GetByID(ctx context.Context, id int64) (*models.ClockIn, error)
	// GetByEmployeeAndDate returns the session for the given local date,
	// open or closed, or ErrSessionNotFound.
	GetByEmployeeAndDate(ctx context.Context, employeeID int64, date string) (*models.ClockIn, error)
	// GetOpenOnDate returns the open session for the given local date, or
	// ErrSessionNotFound.
	GetOpenOnDate(ctx context.Context, employeeID int64, date string) (*models.ClockIn, error)
	// GetOpenBeforeDate returns the most recent open session dated strictly
	// before the given local date, or ErrSessionNotFound.
	GetOpenBeforeDate(ctx context.Context, employeeID int64, date string) (*models.ClockIn, error)
	SetClockOut(ctx context.Context, id int64, session *models.ClockIn) error
	// UpdateTimes rewrites both clock times and the stored hours, used by
	// admin corrections.
	UpdateTimes(ctx context.Context, session *models.ClockIn) error
	ListInRange(ctx context.Context, employeeID int64, startDate, endDate string) ([]*models.ClockIn, error)
	CountEmployeesOnDate(ctx context.Context, date string) (int, error)
	SumHoursInRange(ctx context.Context, startDate, endDate string) (float64, error)
}

type clockInRepository struct {
	db *bun.DB
}

func NewClockInRepository(db *bun.DB) ClockInRepository {
	return &clockInRepository{db: db}
}

func (r *clockInRepository) Create(ctx context.Context, session *models.ClockIn) error {
	_, err := r.db.NewInsert().Model(session).Exec(ctx)
	if err != nil && isUniqueViolation(err) {
		// The (employee_id, date) unique index decides races the
		// application-level existence check cannot.
		return ErrDuplicateSession
	}
	return err
}

func (r *clockInRepository) GetByID(ctx context.Context, id int64) (*models.ClockIn, error) {
	session := new(models.ClockIn)
	err := r.db.NewSelect().
		Model(session).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *clockInRepository) GetByEmployeeAndDate(ctx context.Context, employeeID int64, date string) (*models.ClockIn, error) {
	session := new(models.ClockIn)
	err := r.db.NewSelect().
		Model(session).
		Where("employee_id = ?", employeeID).
		Where("date = ?", date).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *clockInRepository) GetOpenOnDate(ctx context.Context, employeeID int64, date string) (*models.ClockIn, error) {
	session := new(models.ClockIn)
	err := r.db.NewSelect().
		Model(session).
		Where("employee_id = ?", employeeID).
		Where("date = ?", date).
		Where("clock_out_time IS NULL").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *clockInRepository) GetOpenBeforeDate(ctx context.Context, employeeID int64, date string) (*models.ClockIn, error) {
	session := new(models.ClockIn)
	err := r.db.NewSelect().
		Model(session).
		Where("employee_id = ?", employeeID).
		Where("date < ?", date).
		Where("clock_out_time IS NULL").
		Order("date DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

func (r *clockInRepository) SetClockOut(ctx context.Context, id int64, session *models.ClockIn) error {
	res, err := r.db.NewUpdate().
		Model(session).
		Column("clock_out_time", "total_hours").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *clockInRepository) UpdateTimes(ctx context.Context, session *models.ClockIn) error {
	res, err := r.db.NewUpdate().
		Model(session).
		Column("clock_in_time", "clock_out_time", "total_hours").
		Where("id = ?", session.ID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *clockInRepository) ListInRange(ctx context.Context, employeeID int64, startDate, endDate string) ([]*models.ClockIn, error) {
	var sessions []*models.ClockIn
	err := r.db.NewSelect().
		Model(&sessions).
		Where("employee_id = ?", employeeID).
		Where("date >= ?", startDate).
		Where("date <= ?", endDate).
		Order("date ASC").
		Scan(ctx)
	return sessions, err
}

func (r *clockInRepository) CountEmployeesOnDate(ctx context.Context, date string) (int, error) {
	var count int
	err := r.db.NewSelect().
		Model((*models.ClockIn)(nil)).
		ColumnExpr("COUNT(DISTINCT employee_id)").
		Where("date = ?", date).
		Scan(ctx, &count)
	return count, err
}

func (r *clockInRepository) SumHoursInRange(ctx context.Context, startDate, endDate string) (float64, error) {
	var total float64
	err := r.db.NewSelect().
		Model((*models.ClockIn)(nil)).
		ColumnExpr("COALESCE(SUM(total_hours), 0)").
		Where("date >= ?", startDate).
		Where("date <= ?", endDate).
		Scan(ctx, &total)
	return total, err
}
