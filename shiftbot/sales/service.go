package sales

import (
	"context"
	"errors"
	"strings"

	"log/slog"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/timeutil"
)

var (
	ErrInvalidCategory = errors.New("sale category must be tip or ppv")
	ErrInvalidAmount   = errors.New("sale amount must be positive")
)

// Period is a reporting window ending today.
type Period string

const (
	PeriodToday  Period = "today"
	PeriodWeek   Period = "week"
	PeriodBiweek Period = "biweek"
	PeriodMonth  Period = "month"
)

// days returns the window length in days, today included.
func (p Period) days() int {
	switch p {
	case PeriodWeek:
		return 7
	case PeriodBiweek:
		return 14
	case PeriodMonth:
		return 30
	default:
		return 1
	}
}

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodToday, PeriodWeek, PeriodBiweek, PeriodMonth:
		return true
	}
	return false
}

// PeriodStats summarizes one employee's sales and hours over a window.
type PeriodStats struct {
	Period      Period  `json:"period"`
	StartDate   string  `json:"start_date"`
	EndDate     string  `json:"end_date"`
	TipTotal    float64 `json:"tip_total"`
	PPVTotal    float64 `json:"ppv_total"`
	Total       float64 `json:"total"`
	SaleCount   int     `json:"sale_count"`
	DaysWorked  int     `json:"days_worked"`
	HoursWorked float64 `json:"hours_worked"`
}

// Service records sales and builds per-employee period summaries.
type Service struct {
	repo     repositories.SaleRepository
	sessions repositories.ClockInRepository
	resolver *timeutil.Resolver
	clock    timeutil.Clock
	timezone string
}

func NewService(repo repositories.SaleRepository, sessions repositories.ClockInRepository, resolver *timeutil.Resolver, clock timeutil.Clock, timezone string) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		resolver: resolver,
		clock:    clock,
		timezone: timezone,
	}
}

// Record stores one sale dated today in the business timezone.
func (s *Service) Record(ctx context.Context, employeeID int64, category models.SaleCategory, amount float64, description string) (*models.Sale, error) {
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	sale := &models.Sale{
		EmployeeID:  employeeID,
		Category:    category,
		Amount:      amount,
		Date:        s.resolver.LocalDate(s.clock.Now(), s.timezone),
		Description: strings.TrimSpace(description),
	}
	if err := s.repo.Create(ctx, sale); err != nil {
		return nil, err
	}

	slog.Info("Sale recorded",
		slog.String("type", "sys"),
		slog.Int64("employee_id", employeeID),
		slog.String("category", string(category)),
		slog.Float64("amount", amount),
	)
	return sale, nil
}

// Stats summarizes an employee's sales and worked hours for the window
// ending today.
func (s *Service) Stats(ctx context.Context, employeeID int64, period Period) (*PeriodStats, error) {
	if !period.Valid() {
		period = PeriodToday
	}

	now := s.clock.Now()
	endDate := s.resolver.LocalDate(now, s.timezone)
	startDate := s.resolver.LocalDate(now.AddDate(0, 0, -(period.days()-1)), s.timezone)

	stats := &PeriodStats{
		Period:    period,
		StartDate: startDate,
		EndDate:   endDate,
	}

	salesInRange, err := s.repo.ListInRange(ctx, employeeID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	for _, sale := range salesInRange {
		stats.SaleCount++
		stats.Total += sale.Amount
		switch sale.Category {
		case models.SaleCategoryTip:
			stats.TipTotal += sale.Amount
		case models.SaleCategoryPPV:
			stats.PPVTotal += sale.Amount
		}
	}

	sessions, err := s.sessions.ListInRange(ctx, employeeID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	// One session per day at most, so session count is days worked.
	stats.DaysWorked = len(sessions)
	for _, session := range sessions {
		if session.TotalHours != nil {
			stats.HoursWorked += *session.TotalHours
		}
	}

	return stats, nil
}

// ListInRange returns an employee's sales between two local dates inclusive.
func (s *Service) ListInRange(ctx context.Context, employeeID int64, startDate, endDate string) ([]*models.Sale, error) {
	return s.repo.ListInRange(ctx, employeeID, startDate, endDate)
}
