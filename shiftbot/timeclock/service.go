package timeclock

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"log/slog"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/timeutil"
)

var (
	ErrAlreadyClockedIn  = errors.New("already clocked in today")
	ErrNotClockedIn      = errors.New("no open session today")
	ErrSessionClosed     = errors.New("session already clocked out")
	ErrInvalidCorrection = errors.New("clock-out must come after clock-in")
)

// StaleSessionError blocks a clock-in while an open session from a previous
// day has been running past the stale threshold. It carries enough context
// for the caller to explain which session needs fixing.
type StaleSessionError struct {
	SessionID    int64
	Date         string
	ClockInTime  time.Time
	ImpliedHours float64
}

func (e *StaleSessionError) Error() string {
	return fmt.Sprintf("open session from %s has run %.1f hours without clock-out", e.Date, e.ImpliedHours)
}

// Service manages clock-in and clock-out sessions.
type Service struct {
	repo           repositories.ClockInRepository
	resolver       *timeutil.Resolver
	clock          timeutil.Clock
	timezone       string
	staleThreshold time.Duration
}

func NewService(repo repositories.ClockInRepository, resolver *timeutil.Resolver, clock timeutil.Clock, timezone string, staleThresholdHours float64) *Service {
	return &Service{
		repo:           repo,
		resolver:       resolver,
		clock:          clock,
		timezone:       timezone,
		staleThreshold: time.Duration(staleThresholdHours * float64(time.Hour)),
	}
}

// ClockIn opens today's session for an employee. It refuses when a stale
// open session from a previous day exists, or when a session for today
// already exists in any state. The unique (employee, date) index makes the
// existence check safe under concurrent requests.
func (s *Service) ClockIn(ctx context.Context, employeeID int64) (*models.ClockIn, error) {
	now := s.clock.Now()
	today := s.resolver.LocalDate(now, s.timezone)

	prior, err := s.repo.GetOpenBeforeDate(ctx, employeeID, today)
	if err != nil && !errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, err
	}
	if prior != nil {
		implied := now.Sub(prior.ClockInTime)
		if implied > s.staleThreshold {
			return nil, &StaleSessionError{
				SessionID:    prior.ID,
				Date:         prior.Date,
				ClockInTime:  prior.ClockInTime,
				ImpliedHours: round2(implied.Hours()),
			}
		}
		// A previous-day session still under the threshold does not block
		// today's clock-in.
	}

	if _, err := s.repo.GetByEmployeeAndDate(ctx, employeeID, today); err == nil {
		return nil, ErrAlreadyClockedIn
	} else if !errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, err
	}

	session := &models.ClockIn{
		EmployeeID:  employeeID,
		ClockInTime: now,
		Date:        today,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		if errors.Is(err, repositories.ErrDuplicateSession) {
			return nil, ErrAlreadyClockedIn
		}
		return nil, err
	}

	slog.Info("Clock-in recorded",
		slog.String("type", "sys"),
		slog.Int64("employee_id", employeeID),
		slog.String("date", today),
	)
	return session, nil
}

// ClockOut closes today's open session and stores the worked hours, rounded
// to two decimals.
func (s *Service) ClockOut(ctx context.Context, employeeID int64) (*models.ClockIn, error) {
	now := s.clock.Now()
	today := s.resolver.LocalDate(now, s.timezone)

	session, err := s.repo.GetOpenOnDate(ctx, employeeID, today)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			// Distinguish "never clocked in" from "already clocked out".
			if closed, cerr := s.repo.GetByEmployeeAndDate(ctx, employeeID, today); cerr == nil && !closed.Open() {
				return nil, ErrSessionClosed
			}
			return nil, ErrNotClockedIn
		}
		return nil, err
	}

	total := round2(now.Sub(session.ClockInTime).Hours())
	session.ClockOutTime = &now
	session.TotalHours = &total
	if err := s.repo.SetClockOut(ctx, session.ID, session); err != nil {
		return nil, err
	}

	slog.Info("Clock-out recorded",
		slog.String("type", "sys"),
		slog.Int64("employee_id", employeeID),
		slog.String("date", today),
		slog.Float64("total_hours", total),
	)
	return session, nil
}

// Today returns today's session for an employee in any state, or
// repositories.ErrSessionNotFound.
func (s *Service) Today(ctx context.Context, employeeID int64) (*models.ClockIn, error) {
	today := s.resolver.LocalDate(s.clock.Now(), s.timezone)
	return s.repo.GetByEmployeeAndDate(ctx, employeeID, today)
}

// Correct rewrites a session's clock-in and clock-out times and recomputes
// the stored hours from the corrected pair. Passing a nil clockOut reopens
// the session.
func (s *Service) Correct(ctx context.Context, sessionID int64, clockIn time.Time, clockOut *time.Time) (*models.ClockIn, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	session.ClockInTime = clockIn
	if clockOut == nil {
		session.ClockOutTime = nil
		session.TotalHours = nil
	} else {
		if !clockOut.After(clockIn) {
			return nil, ErrInvalidCorrection
		}
		total := round2(clockOut.Sub(clockIn).Hours())
		session.ClockOutTime = clockOut
		session.TotalHours = &total
	}

	if err := s.repo.UpdateTimes(ctx, session); err != nil {
		return nil, err
	}

	slog.Info("Session corrected",
		slog.String("type", "sys"),
		slog.Int64("session_id", sessionID),
		slog.Any("total_hours", session.TotalHours),
	)
	return session, nil
}

// History returns an employee's sessions between two local dates inclusive.
func (s *Service) History(ctx context.Context, employeeID int64, startDate, endDate string) ([]*models.ClockIn, error) {
	return s.repo.ListInRange(ctx, employeeID, startDate, endDate)
}

func round2(hours float64) float64 {
	return math.Round(hours*100) / 100
}
