package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/uptrace/bun"
)

var ErrSaleNotFound = errors.New("sale not found")

// SaleFilter narrows List queries; zero values mean "no constraint".
type SaleFilter struct {
	EmployeeID int64
	Category   models.SaleCategory
	StartDate  string
	EndDate    string
	Limit      int
	Offset     int
}

type SaleRepository interface {
	Create(ctx context.Context, sale *models.Sale) error
	GetByID(ctx context.Context, id int64) (*models.Sale, error)
	Update(ctx context.Context, sale *models.Sale) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter SaleFilter) ([]*models.Sale, int, error)
	ListInRange(ctx context.Context, employeeID int64, startDate, endDate string) ([]*models.Sale, error)
	SumOnDate(ctx context.Context, date string) (float64, error)
	SumInRange(ctx context.Context, startDate, endDate string) (float64, error)
}

type saleRepository struct {
	db *bun.DB
}

func NewSaleRepository(db *bun.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *models.Sale) error {
	sale.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(sale).Exec(ctx)
	return err
}

func (r *saleRepository) GetByID(ctx context.Context, id int64) (*models.Sale, error) {
	sale := new(models.Sale)
	err := r.db.NewSelect().
		Model(sale).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

func (r *saleRepository) Update(ctx context.Context, sale *models.Sale) error {
	res, err := r.db.NewUpdate().
		Model(sale).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (r *saleRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*models.Sale)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (r *saleRepository) List(ctx context.Context, filter SaleFilter) ([]*models.Sale, int, error) {
	applyFilter := func(q *bun.SelectQuery) *bun.SelectQuery {
		if filter.EmployeeID > 0 {
			q = q.Where("employee_id = ?", filter.EmployeeID)
		}
		if filter.Category != "" {
			q = q.Where("category = ?", filter.Category)
		}
		if filter.StartDate != "" {
			q = q.Where("date >= ?", filter.StartDate)
		}
		if filter.EndDate != "" {
			q = q.Where("date <= ?", filter.EndDate)
		}
		return q
	}

	total, err := applyFilter(r.db.NewSelect().Model((*models.Sale)(nil))).Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	var sales []*models.Sale
	err = applyFilter(r.db.NewSelect().Model(&sales)).
		Order("created_at DESC").
		Limit(limit).
		Offset(filter.Offset).
		Scan(ctx)
	return sales, total, err
}

func (r *saleRepository) ListInRange(ctx context.Context, employeeID int64, startDate, endDate string) ([]*models.Sale, error) {
	var sales []*models.Sale
	err := r.db.NewSelect().
		Model(&sales).
		Where("employee_id = ?", employeeID).
		Where("date >= ?", startDate).
		Where("date <= ?", endDate).
		Order("date ASC").
		Scan(ctx)
	return sales, err
}

func (r *saleRepository) SumOnDate(ctx context.Context, date string) (float64, error) {
	var total float64
	err := r.db.NewSelect().
		Model((*models.Sale)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("date = ?", date).
		Scan(ctx, &total)
	return total, err
}

func (r *saleRepository) SumInRange(ctx context.Context, startDate, endDate string) (float64, error) {
	var total float64
	err := r.db.NewSelect().
		Model((*models.Sale)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("date >= ?", startDate).
		Where("date <= ?", endDate).
		Scan(ctx, &total)
	return total, err
}
