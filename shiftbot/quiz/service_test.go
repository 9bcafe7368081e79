package quiz

import (
	"context"
	"fmt"
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

type memQuizRepo struct {
	nextID    int64
	questions map[int64]*models.QuizQuestion
	settings  *models.QuizSettings
}

func newMemQuizRepo() *memQuizRepo {
	return &memQuizRepo{questions: make(map[int64]*models.QuizQuestion)}
}

func (r *memQuizRepo) CreateQuestion(_ context.Context, q *models.QuizQuestion) error {
	r.nextID++
	q.ID = r.nextID
	stored := *q
	r.questions[q.ID] = &stored
	return nil
}

func (r *memQuizRepo) GetQuestion(_ context.Context, id int64) (*models.QuizQuestion, error) {
	q, ok := r.questions[id]
	if !ok {
		return nil, repositories.ErrQuestionNotFound
	}
	copied := *q
	return &copied, nil
}

func (r *memQuizRepo) UpdateQuestion(_ context.Context, q *models.QuizQuestion) error {
	if _, ok := r.questions[q.ID]; !ok {
		return repositories.ErrQuestionNotFound
	}
	stored := *q
	r.questions[q.ID] = &stored
	return nil
}

func (r *memQuizRepo) DeleteQuestion(_ context.Context, id int64) error {
	if _, ok := r.questions[id]; !ok {
		return repositories.ErrQuestionNotFound
	}
	delete(r.questions, id)
	return nil
}

func (r *memQuizRepo) SetQuestionActive(_ context.Context, id int64, active bool) error {
	q, ok := r.questions[id]
	if !ok {
		return repositories.ErrQuestionNotFound
	}
	q.Active = active
	return nil
}

func (r *memQuizRepo) ListQuestions(_ context.Context) ([]*models.QuizQuestion, error) {
	var out []*models.QuizQuestion
	for _, q := range r.questions {
		copied := *q
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memQuizRepo) ListActiveQuestions(_ context.Context) ([]*models.QuizQuestion, error) {
	var out []*models.QuizQuestion
	for _, q := range r.questions {
		if q.Active {
			copied := *q
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *memQuizRepo) GetSettings(_ context.Context) (*models.QuizSettings, error) {
	if r.settings == nil {
		return nil, repositories.ErrSettingsNotFound
	}
	copied := *r.settings
	return &copied, nil
}

func (r *memQuizRepo) UpsertSettings(_ context.Context, s *models.QuizSettings) error {
	stored := *s
	r.settings = &stored
	return nil
}

type memAttemptRepo struct {
	nextID   int64
	attempts []*models.QuizAttempt
}

func (r *memAttemptRepo) Create(_ context.Context, a *models.QuizAttempt) error {
	r.nextID++
	a.ID = r.nextID
	stored := *a
	r.attempts = append(r.attempts, &stored)
	return nil
}

func (r *memAttemptRepo) CountByEmployeeAndQuestion(_ context.Context, employeeID, questionID int64) (int, error) {
	count := 0
	for _, a := range r.attempts {
		if a.EmployeeID == employeeID && a.QuestionID == questionID {
			count++
		}
	}
	return count, nil
}

func (r *memAttemptRepo) ListByEmployeeAndQuestion(_ context.Context, employeeID, questionID int64) ([]*models.QuizAttempt, error) {
	var out []*models.QuizAttempt
	for _, a := range r.attempts {
		if a.EmployeeID == employeeID && a.QuestionID == questionID {
			copied := *a
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AttemptNumber < out[j].AttemptNumber })
	return out, nil
}

func (r *memAttemptRepo) QuestionHasAttempts(_ context.Context, questionID int64) (bool, error) {
	for _, a := range r.attempts {
		if a.QuestionID == questionID {
			return true, nil
		}
	}
	return false, nil
}

func seedQuestions(t *testing.T, repo *memQuizRepo, n int) []*models.QuizQuestion {
	t.Helper()
	out := make([]*models.QuizQuestion, 0, n)
	for i := 0; i < n; i++ {
		q := &models.QuizQuestion{
			Question:      fmt.Sprintf("question %d", i+1),
			OptionA:       "a",
			OptionB:       "b",
			OptionC:       "c",
			OptionD:       "d",
			CorrectAnswer: "B",
			Active:        true,
			Position:      i + 1,
		}
		require.NoError(t, repo.CreateQuestion(context.Background(), q))
		out = append(out, q)
	}
	return out
}

func newTestSetup(now time.Time) (*Service, *memQuizRepo, *memAttemptRepo, *fixedClock) {
	repo := newMemQuizRepo()
	attempts := &memAttemptRepo{}
	clock := &fixedClock{now: now}
	resolver := timeutil.NewResolver(map[string]int{"Asia/Shanghai": 480})
	selector := NewRotationSelector(repo, resolver, clock, "Asia/Shanghai")
	return NewService(repo, attempts, selector, resolver, clock, "Asia/Shanghai"), repo, attempts, clock
}

func TestRotationWalksAndWraps(t *testing.T) {
	// Midday UTC, no local date ambiguity.
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _, clock := newTestSetup(start)
	questions := seedQuestions(t, repo, 5)
	require.NoError(t, repo.UpsertSettings(context.Background(), &models.QuizSettings{
		StartDate: "2025-06-01",
		Timezone:  "Asia/Shanghai",
	}))

	// Ten consecutive days cycle through the five questions twice.
	for day := 0; day < 10; day++ {
		clock.now = start.AddDate(0, 0, day)
		q, err := svc.TodayQuestion(context.Background())
		require.NoError(t, err)
		assert.Equal(t, questions[day%5].ID, q.ID, "day %d", day)
	}
}

func TestRotationSkipsInactiveQuestions(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestSetup(start)
	questions := seedQuestions(t, repo, 3)
	require.NoError(t, repo.SetQuestionActive(context.Background(), questions[0].ID, false))
	require.NoError(t, repo.UpsertSettings(context.Background(), &models.QuizSettings{
		StartDate: "2025-06-01",
		Timezone:  "Asia/Shanghai",
	}))

	// Day 1 of a two-question active set.
	q, err := svc.TodayQuestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, questions[1].ID, q.ID)
}

func TestRotationFutureStartClampsToFirst(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestSetup(start)
	questions := seedQuestions(t, repo, 5)
	require.NoError(t, repo.UpsertSettings(context.Background(), &models.QuizSettings{
		StartDate: "2025-07-01",
		Timezone:  "Asia/Shanghai",
	}))

	q, err := svc.TodayQuestion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, questions[0].ID, q.ID)
}

func TestRotationWithoutSettingsFallsBackToRandom(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestSetup(start)
	questions := seedQuestions(t, repo, 3)

	ids := map[int64]bool{}
	for _, q := range questions {
		ids[q.ID] = true
	}

	q, err := svc.TodayQuestion(context.Background())
	require.NoError(t, err)
	assert.True(t, ids[q.ID])
}

func TestTodayQuestionWithNoActiveQuestions(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestSetup(start)
	questions := seedQuestions(t, repo, 2)
	for _, q := range questions {
		require.NoError(t, repo.SetQuestionActive(context.Background(), q.ID, false))
	}

	_, err := svc.TodayQuestion(context.Background())
	assert.ErrorIs(t, err, ErrNoActiveQuestions)
}

func TestRandomSelectorEmptySet(t *testing.T) {
	_, err := RandomSelector{}.Pick(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoActiveQuestions)
}

func TestRecordAttemptGradesServerSide(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestSetup(start)
	questions := seedQuestions(t, repo, 1)

	wrong, err := svc.RecordAttempt(context.Background(), 7, questions[0].ID, "A")
	require.NoError(t, err)
	assert.False(t, wrong.Correct)
	assert.Equal(t, 1, wrong.Attempt.AttemptNumber)

	right, err := svc.RecordAttempt(context.Background(), 7, questions[0].ID, "B")
	require.NoError(t, err)
	assert.True(t, right.Correct)
	assert.Equal(t, 2, right.Attempt.AttemptNumber)
}

func TestAttemptNumbersAreGaplessPerEmployee(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestSetup(start)
	questions := seedQuestions(t, repo, 1)
	qID := questions[0].ID

	for i := 0; i < 4; i++ {
		_, err := svc.RecordAttempt(context.Background(), 7, qID, "A")
		require.NoError(t, err)
	}
	// Another employee's counter is independent.
	res, err := svc.RecordAttempt(context.Background(), 8, qID, "A")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempt.AttemptNumber)

	history, err := svc.AttemptHistory(context.Background(), 7, qID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	for i, a := range history {
		assert.Equal(t, i+1, a.AttemptNumber)
	}
}

func TestRecordAttemptRejectsBadLabel(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestSetup(start)
	questions := seedQuestions(t, repo, 1)

	_, err := svc.RecordAttempt(context.Background(), 7, questions[0].ID, "E")
	assert.ErrorIs(t, err, ErrInvalidAnswer)

	_, err = svc.RecordAttempt(context.Background(), 7, questions[0].ID, "b")
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestRecordAttemptUnknownQuestion(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _, _ := newTestSetup(start)

	_, err := svc.RecordAttempt(context.Background(), 7, 99, "A")
	assert.ErrorIs(t, err, repositories.ErrQuestionNotFound)
}

func TestDeleteQuestionHardWhenNeverAttempted(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestSetup(start)
	questions := seedQuestions(t, repo, 1)

	deactivated, err := svc.DeleteQuestion(context.Background(), questions[0].ID)
	require.NoError(t, err)
	assert.False(t, deactivated)

	_, err = repo.GetQuestion(context.Background(), questions[0].ID)
	assert.ErrorIs(t, err, repositories.ErrQuestionNotFound)
}

func TestDeleteQuestionSoftWhenAttempted(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, repo, _, _ := newTestSetup(start)
	questions := seedQuestions(t, repo, 1)

	_, err := svc.RecordAttempt(context.Background(), 7, questions[0].ID, "B")
	require.NoError(t, err)

	deactivated, err := svc.DeleteQuestion(context.Background(), questions[0].ID)
	require.NoError(t, err)
	assert.True(t, deactivated)

	// The record survives so attempt history keeps its target.
	stored, err := repo.GetQuestion(context.Background(), questions[0].ID)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestUpdateSettingsValidatesStartDate(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _, _ := newTestSetup(start)

	_, err := svc.UpdateSettings(context.Background(), "June 1st", "Asia/Shanghai")
	assert.Error(t, err)

	settings, err := svc.UpdateSettings(context.Background(), "2025-06-01", "Asia/Shanghai")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", settings.StartDate)
}

func TestGetSettingsMaterializesDefault(t *testing.T) {
	// 20:00 UTC on the 9th is already the 10th in Shanghai.
	svc, repo, _, clock := newTestSetup(time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC))

	settings, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", settings.StartDate)
	assert.Equal(t, "Asia/Shanghai", settings.Timezone)

	stored, err := repo.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, settings, stored)

	// The default is persisted on first read, not recomputed per read.
	clock.now = clock.now.AddDate(0, 0, 3)
	again, err := svc.GetSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", again.StartDate)
}

func TestCreateQuestionValidatesAnswer(t *testing.T) {
	start := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _, _ := newTestSetup(start)

	err := svc.CreateQuestion(context.Background(), &models.QuizQuestion{
		Question:      "q",
		CorrectAnswer: "X",
	})
	assert.ErrorIs(t, err, ErrInvalidAnswer)
}
