package timeclock

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/timeutil"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type memClockInRepo struct {
	nextID   int64
	sessions map[int64]*models.ClockIn
}

func newMemClockInRepo() *memClockInRepo {
	return &memClockInRepo{sessions: make(map[int64]*models.ClockIn)}
}

func (r *memClockInRepo) Create(_ context.Context, session *models.ClockIn) error {
	for _, s := range r.sessions {
		if s.EmployeeID == session.EmployeeID && s.Date == session.Date {
			return repositories.ErrDuplicateSession
		}
	}
	r.nextID++
	session.ID = r.nextID
	stored := *session
	r.sessions[session.ID] = &stored
	return nil
}

func (r *memClockInRepo) GetByID(_ context.Context, id int64) (*models.ClockIn, error) {
	s, ok := r.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memClockInRepo) GetByEmployeeAndDate(_ context.Context, employeeID int64, date string) (*models.ClockIn, error) {
	for _, s := range r.sessions {
		if s.EmployeeID == employeeID && s.Date == date {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repositories.ErrSessionNotFound
}

func (r *memClockInRepo) GetOpenOnDate(_ context.Context, employeeID int64, date string) (*models.ClockIn, error) {
	for _, s := range r.sessions {
		if s.EmployeeID == employeeID && s.Date == date && s.ClockOutTime == nil {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repositories.ErrSessionNotFound
}

func (r *memClockInRepo) GetOpenBeforeDate(_ context.Context, employeeID int64, date string) (*models.ClockIn, error) {
	var best *models.ClockIn
	for _, s := range r.sessions {
		if s.EmployeeID != employeeID || s.Date >= date || s.ClockOutTime != nil {
			continue
		}
		if best == nil || s.Date > best.Date {
			best = s
		}
	}
	if best == nil {
		return nil, repositories.ErrSessionNotFound
	}
	copied := *best
	return &copied, nil
}

func (r *memClockInRepo) SetClockOut(_ context.Context, id int64, session *models.ClockIn) error {
	stored, ok := r.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	stored.ClockOutTime = session.ClockOutTime
	stored.TotalHours = session.TotalHours
	return nil
}

func (r *memClockInRepo) UpdateTimes(_ context.Context, session *models.ClockIn) error {
	stored, ok := r.sessions[session.ID]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	stored.ClockInTime = session.ClockInTime
	stored.ClockOutTime = session.ClockOutTime
	stored.TotalHours = session.TotalHours
	return nil
}

func (r *memClockInRepo) ListInRange(_ context.Context, employeeID int64, startDate, endDate string) ([]*models.ClockIn, error) {
	var out []*models.ClockIn
	for _, s := range r.sessions {
		if s.EmployeeID == employeeID && s.Date >= startDate && s.Date <= endDate {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *memClockInRepo) CountEmployeesOnDate(_ context.Context, date string) (int, error) {
	seen := map[int64]bool{}
	for _, s := range r.sessions {
		if s.Date == date {
			seen[s.EmployeeID] = true
		}
	}
	return len(seen), nil
}

func (r *memClockInRepo) SumHoursInRange(_ context.Context, startDate, endDate string) (float64, error) {
	var total float64
	for _, s := range r.sessions {
		if s.Date >= startDate && s.Date <= endDate && s.TotalHours != nil {
			total += *s.TotalHours
		}
	}
	return total, nil
}

func newTestService(now time.Time) (*Service, *memClockInRepo, *fixedClock) {
	repo := newMemClockInRepo()
	clock := &fixedClock{now: now}
	resolver := timeutil.NewResolver(map[string]int{"Asia/Shanghai": 480})
	svc := NewService(repo, resolver, clock, "Asia/Shanghai", 14)
	return svc, repo, clock
}

func TestClockInOpensSession(t *testing.T) {
	// 2025-03-10 01:00 UTC is 09:00 in Shanghai.
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	session, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", session.Date)
	assert.True(t, session.Open())
	assert.Equal(t, now, session.ClockInTime)
}

func TestClockInTwiceSameDay(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, _, clock := newTestService(now)

	_, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)

	clock.now = now.Add(2 * time.Hour)
	_, err = svc.ClockIn(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
}

func TestClockInAfterClosedSameDaySession(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, _, clock := newTestService(now)

	_, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)

	clock.now = now.Add(4 * time.Hour)
	_, err = svc.ClockOut(context.Background(), 1)
	require.NoError(t, err)

	// Closed or open, one session per day.
	_, err = svc.ClockIn(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAlreadyClockedIn)
}

func TestClockInBlockedByStaleSession(t *testing.T) {
	start := time.Date(2025, 3, 9, 10, 0, 0, 0, time.UTC)
	svc, _, clock := newTestService(start)

	prior, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)

	// 15 hours later, next local day, the old session was never closed.
	clock.now = start.Add(15 * time.Hour)
	_, err = svc.ClockIn(context.Background(), 1)

	var stale *StaleSessionError
	require.ErrorAs(t, err, &stale)
	assert.Equal(t, prior.ID, stale.SessionID)
	assert.Equal(t, prior.Date, stale.Date)
	assert.InDelta(t, 15.0, stale.ImpliedHours, 0.001)
}

func TestClockInAllowedWithRecentOpenPreviousDay(t *testing.T) {
	// 22:00 Shanghai on the 9th.
	start := time.Date(2025, 3, 9, 14, 0, 0, 0, time.UTC)
	svc, _, clock := newTestService(start)

	_, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)

	// 10 hours in, under the threshold, already the 10th locally.
	clock.now = start.Add(10 * time.Hour)
	session, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", session.Date)
}

func TestClockOutComputesRoundedHours(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, _, clock := newTestService(now)

	_, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)

	clock.now = now.Add(8*time.Hour + 30*time.Minute)
	session, err := svc.ClockOut(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, session.TotalHours)
	assert.Equal(t, 8.5, *session.TotalHours)
	assert.False(t, session.Open())
}

func TestClockOutRoundsToTwoDecimals(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, _, clock := newTestService(now)

	_, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)

	// 7h47m = 7.78333... hours.
	clock.now = now.Add(7*time.Hour + 47*time.Minute)
	session, err := svc.ClockOut(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 7.78, *session.TotalHours)
}

func TestClockOutWithoutSession(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	_, err := svc.ClockOut(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotClockedIn)
}

func TestClockOutTwice(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, _, clock := newTestService(now)

	_, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)

	clock.now = now.Add(8 * time.Hour)
	_, err = svc.ClockOut(context.Background(), 1)
	require.NoError(t, err)

	_, err = svc.ClockOut(context.Background(), 1)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestCorrectRecomputesHours(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, repo, clock := newTestService(now)

	session, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)
	clock.now = now.Add(20 * time.Hour)

	newIn := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	newOut := newIn.Add(9 * time.Hour)
	corrected, err := svc.Correct(context.Background(), session.ID, newIn, &newOut)
	require.NoError(t, err)
	require.NotNil(t, corrected.TotalHours)
	assert.Equal(t, 9.0, *corrected.TotalHours)

	stored, err := repo.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, 9.0, *stored.TotalHours)
}

func TestCorrectReopensSession(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, repo, clock := newTestService(now)

	session, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)
	clock.now = now.Add(8 * time.Hour)
	_, err = svc.ClockOut(context.Background(), 1)
	require.NoError(t, err)

	reopened, err := svc.Correct(context.Background(), session.ID, now, nil)
	require.NoError(t, err)
	assert.True(t, reopened.Open())
	assert.Nil(t, reopened.TotalHours)

	stored, err := repo.GetByID(context.Background(), session.ID)
	require.NoError(t, err)
	assert.True(t, stored.Open())
}

func TestCorrectRejectsInvertedTimes(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	session, err := svc.ClockIn(context.Background(), 1)
	require.NoError(t, err)

	before := now.Add(-time.Hour)
	_, err = svc.Correct(context.Background(), session.ID, now, &before)
	assert.ErrorIs(t, err, ErrInvalidCorrection)
}

func TestCorrectUnknownSession(t *testing.T) {
	now := time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	out := now.Add(8 * time.Hour)
	_, err := svc.Correct(context.Background(), 42, now, &out)
	assert.ErrorIs(t, err, repositories.ErrSessionNotFound)
}
