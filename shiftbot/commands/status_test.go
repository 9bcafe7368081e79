package commands

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/shiftbot/shiftbot"
	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/employees"
	"github.com/shiftwise/shiftbot/shiftbot/sales"
	"github.com/shiftwise/shiftbot/shiftbot/session"
	"github.com/shiftwise/shiftbot/shiftbot/timeclock"
	"github.com/shiftwise/shiftbot/shiftbot/timeutil"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

// offlineClient keeps telegram API calls from ever leaving the test.
type offlineClient struct{}

func (offlineClient) Do(*http.Request) (*http.Response, error) {
	return nil, errors.New("offline")
}

type stubEmployeeRepo struct {
	employee *models.Employee
}

func (r *stubEmployeeRepo) Create(context.Context, *models.Employee) error { return nil }

func (r *stubEmployeeRepo) GetByID(_ context.Context, id int64) (*models.Employee, error) {
	if r.employee != nil && r.employee.ID == id {
		copied := *r.employee
		return &copied, nil
	}
	return nil, repositories.ErrEmployeeNotFound
}

func (r *stubEmployeeRepo) GetByTelegramID(_ context.Context, telegramID string) (*models.Employee, error) {
	if r.employee != nil && r.employee.TelegramID == telegramID {
		copied := *r.employee
		return &copied, nil
	}
	return nil, repositories.ErrEmployeeNotFound
}

func (r *stubEmployeeRepo) Update(context.Context, *models.Employee) error { return nil }
func (r *stubEmployeeRepo) Deactivate(context.Context, int64) error        { return nil }

func (r *stubEmployeeRepo) List(context.Context) ([]*models.Employee, error) { return nil, nil }

func (r *stubEmployeeRepo) IsAdmin(context.Context, int64) (bool, error) { return false, nil }

func (r *stubEmployeeRepo) GrantAdmin(context.Context, int64, string) error { return nil }

func (r *stubEmployeeRepo) AdminEmployeeIDs(context.Context) (map[int64]bool, error) {
	return nil, nil
}

type stubClockInRepo struct{}

func (stubClockInRepo) Create(context.Context, *models.ClockIn) error { return nil }

func (stubClockInRepo) GetByID(context.Context, int64) (*models.ClockIn, error) {
	return nil, repositories.ErrSessionNotFound
}

func (stubClockInRepo) GetByEmployeeAndDate(context.Context, int64, string) (*models.ClockIn, error) {
	return nil, repositories.ErrSessionNotFound
}

func (stubClockInRepo) GetOpenOnDate(context.Context, int64, string) (*models.ClockIn, error) {
	return nil, repositories.ErrSessionNotFound
}

func (stubClockInRepo) GetOpenBeforeDate(context.Context, int64, string) (*models.ClockIn, error) {
	return nil, repositories.ErrSessionNotFound
}

func (stubClockInRepo) SetClockOut(context.Context, int64, *models.ClockIn) error { return nil }

func (stubClockInRepo) UpdateTimes(context.Context, *models.ClockIn) error { return nil }

func (stubClockInRepo) ListInRange(context.Context, int64, string, string) ([]*models.ClockIn, error) {
	return nil, nil
}

func (stubClockInRepo) CountEmployeesOnDate(context.Context, string) (int, error) { return 0, nil }

func (stubClockInRepo) SumHoursInRange(context.Context, string, string) (float64, error) {
	return 0, nil
}

type stubSaleRepo struct{}

func (stubSaleRepo) Create(context.Context, *models.Sale) error { return nil }

func (stubSaleRepo) GetByID(context.Context, int64) (*models.Sale, error) {
	return nil, repositories.ErrSaleNotFound
}

func (stubSaleRepo) Update(context.Context, *models.Sale) error { return nil }
func (stubSaleRepo) Delete(context.Context, int64) error        { return nil }

func (stubSaleRepo) List(context.Context, repositories.SaleFilter) ([]*models.Sale, int, error) {
	return nil, 0, nil
}

func (stubSaleRepo) ListInRange(context.Context, int64, string, string) ([]*models.Sale, error) {
	return nil, nil
}

func (stubSaleRepo) SumOnDate(context.Context, string) (float64, error) { return 0, nil }

func (stubSaleRepo) SumInRange(context.Context, string, string) (float64, error) { return 0, nil }

func newStatusTestBot(t *testing.T) *shiftbot.Bot {
	t.Helper()

	resolver := timeutil.NewResolver(map[string]int{"Asia/Shanghai": 480})
	clock := &fixedClock{now: time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC)}
	store, err := session.NewStore(16)
	require.NoError(t, err)

	b := shiftbot.New(shiftbot.Config{
		Quiz: shiftbot.QuizConfig{DefaultTimezone: "Asia/Shanghai"},
	}, "test", "test")
	b.API = &tgbotapi.BotAPI{Client: offlineClient{}}
	b.Resolver = resolver
	b.Clock = clock
	b.Sessions = store
	b.Employees = employees.NewService(&stubEmployeeRepo{
		employee: &models.Employee{ID: 7, TelegramID: "42", Name: "Alice Jones", Active: true},
	})
	b.Timeclock = timeclock.NewService(stubClockInRepo{}, resolver, clock, "Asia/Shanghai", 14)
	b.Sales = sales.NewService(stubSaleRepo{}, stubClockInRepo{}, resolver, clock, "Asia/Shanghai")
	return b
}

func TestStatsCallbackWithoutMessage(t *testing.T) {
	b := newStatusTestBot(t)

	// Callbacks from old or inaccessible messages arrive with no message
	// attached; the handler must not dereference it.
	err := HandleStatsCallback(context.Background(), b, &tgbotapi.CallbackQuery{
		ID:   "cb1",
		From: &tgbotapi.User{ID: 42},
		Data: statsCallbackPrefix + string(sales.PeriodWeek),
	})
	assert.NoError(t, err)
}

func TestStatsCallbackIgnoresUnknownPeriod(t *testing.T) {
	b := newStatusTestBot(t)

	err := HandleStatsCallback(context.Background(), b, &tgbotapi.CallbackQuery{
		ID:   "cb2",
		From: &tgbotapi.User{ID: 42},
		Data: statsCallbackPrefix + "quarter",
	})
	assert.NoError(t, err)
}

func TestRenderStatusShowsPeriodLabel(t *testing.T) {
	b := newStatusTestBot(t)
	employee := &models.Employee{ID: 7, Name: "Alice Jones"}

	text, err := renderStatus(context.Background(), b, employee, sales.PeriodBiweek)
	require.NoError(t, err)
	assert.Contains(t, text, "Alice Jones")
	assert.Contains(t, text, "Last 2 weeks")
	assert.Contains(t, text, "haven't clocked in")
}
