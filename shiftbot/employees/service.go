package employees

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"log/slog"

	"github.com/sahilm/fuzzy"
	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
)

var (
	ErrNameTooShort      = errors.New("employee name must be at least 2 characters")
	ErrAlreadyRegistered = errors.New("telegram account already registered")
)

// Service manages employee registration and lookup.
type Service struct {
	repo repositories.EmployeeRepository
}

func NewService(repo repositories.EmployeeRepository) *Service {
	return &Service{repo: repo}
}

// Register creates an employee record for a Telegram account. Names are
// trimmed and must be at least 2 characters long.
func (s *Service) Register(ctx context.Context, telegramID, name string) (*models.Employee, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return nil, ErrNameTooShort
	}

	employee := &models.Employee{
		Name:       name,
		TelegramID: telegramID,
		Role:       "employee",
		Active:     true,
	}

	if err := s.repo.Create(ctx, employee); err != nil {
		if errors.Is(err, repositories.ErrTelegramIDExists) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("failed to register employee: %w", err)
	}

	slog.Info("Employee registered",
		slog.String("type", "sys"),
		slog.String("name", name),
		slog.String("telegram_id", telegramID),
	)
	return employee, nil
}

// Lookup returns the employee bound to a Telegram account, or
// repositories.ErrEmployeeNotFound when the account is unregistered.
func (s *Service) Lookup(ctx context.Context, telegramID string) (*models.Employee, error) {
	return s.repo.GetByTelegramID(ctx, telegramID)
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*models.Employee, error) {
	return s.repo.List(ctx)
}

func (s *Service) Rename(ctx context.Context, id int64, name string) (*models.Employee, error) {
	name = strings.TrimSpace(name)
	if len([]rune(name)) < 2 {
		return nil, ErrNameTooShort
	}

	employee, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	employee.Name = name
	if err := s.repo.Update(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to update employee: %w", err)
	}
	return employee, nil
}

// Deactivate soft-deletes an employee. Historical sessions, sales and quiz
// attempts are kept.
func (s *Service) Deactivate(ctx context.Context, id int64) error {
	return s.repo.Deactivate(ctx, id)
}

func (s *Service) IsAdmin(ctx context.Context, employeeID int64) (bool, error) {
	return s.repo.IsAdmin(ctx, employeeID)
}

func (s *Service) GrantAdmin(ctx context.Context, employeeID int64, permissions string) error {
	if permissions == "" {
		permissions = "read,write"
	}
	return s.repo.GrantAdmin(ctx, employeeID, permissions)
}

// employeeNames adapts a slice of employees to fuzzy.Source.
type employeeNames []*models.Employee

func (e employeeNames) String(i int) string { return e[i].Name }
func (e employeeNames) Len() int            { return len(e) }

// Search returns employees whose names fuzzy-match the query, best match
// first. An empty query returns everyone.
func (s *Service) Search(ctx context.Context, query string) ([]*models.Employee, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return all, nil
	}

	matches := fuzzy.FindFrom(query, employeeNames(all))
	results := make([]*models.Employee, 0, len(matches))
	for _, m := range matches {
		results = append(results, all[m.Index])
	}
	return results, nil
}
