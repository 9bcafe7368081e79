package quiz

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"log/slog"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/timeutil"
)

var (
	ErrNoActiveQuestions = errors.New("no active quiz questions")
	ErrInvalidAnswer     = errors.New("answer must be one of A, B, C, D")
)

// Selector picks the question of the day from the active set.
type Selector interface {
	Pick(ctx context.Context, active []*models.QuizQuestion) (*models.QuizQuestion, error)
}

// RotationSelector deterministically walks the active set in position order,
// one question per local calendar day, wrapping around at the end. Day 1 of
// the rotation is the configured start date in the configured timezone.
type RotationSelector struct {
	repo     repositories.QuizRepository
	resolver *timeutil.Resolver
	clock    timeutil.Clock
	fallback string
}

func NewRotationSelector(repo repositories.QuizRepository, resolver *timeutil.Resolver, clock timeutil.Clock, fallbackTimezone string) *RotationSelector {
	return &RotationSelector{repo: repo, resolver: resolver, clock: clock, fallback: fallbackTimezone}
}

func (s *RotationSelector) Pick(ctx context.Context, active []*models.QuizQuestion) (*models.QuizQuestion, error) {
	if len(active) == 0 {
		return nil, ErrNoActiveQuestions
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		if errors.Is(err, repositories.ErrSettingsNotFound) {
			// No rotation anchor configured yet; fall back to a random
			// active question rather than refusing to serve one.
			return active[rand.Intn(len(active))], nil
		}
		return nil, err
	}

	tz := settings.Timezone
	if tz == "" {
		tz = s.fallback
	}

	today := s.resolver.LocalDate(s.clock.Now(), tz)
	elapsed, err := s.resolver.DaysBetween(settings.StartDate, today)
	if err != nil {
		return nil, fmt.Errorf("bad rotation start date %q: %w", settings.StartDate, err)
	}
	if elapsed < 0 {
		// Start date in the future clamps to day 1.
		elapsed = 0
	}

	day := elapsed + 1
	question := active[(day-1)%len(active)]

	slog.Debug("Rotation question selected",
		slog.String("type", "sys"),
		slog.Int("rotation_day", day),
		slog.Int64("question_id", question.ID),
	)
	return question, nil
}

// RandomSelector ignores the rotation and picks uniformly from the active
// set. Useful for practice surfaces.
type RandomSelector struct{}

func (RandomSelector) Pick(_ context.Context, active []*models.QuizQuestion) (*models.QuizQuestion, error) {
	if len(active) == 0 {
		return nil, ErrNoActiveQuestions
	}
	return active[rand.Intn(len(active))], nil
}

// Service exposes the daily question, attempt recording, and question
// administration.
type Service struct {
	repo      repositories.QuizRepository
	attempts  repositories.QuizAttemptRepository
	selector  Selector
	resolver  *timeutil.Resolver
	clock     timeutil.Clock
	defaultTZ string
}

func NewService(repo repositories.QuizRepository, attempts repositories.QuizAttemptRepository, selector Selector, resolver *timeutil.Resolver, clock timeutil.Clock, defaultTimezone string) *Service {
	return &Service{
		repo:      repo,
		attempts:  attempts,
		selector:  selector,
		resolver:  resolver,
		clock:     clock,
		defaultTZ: defaultTimezone,
	}
}

// TodayQuestion returns the question of the day per the rotation schedule,
// or ErrNoActiveQuestions when the active set is empty.
func (s *Service) TodayQuestion(ctx context.Context) (*models.QuizQuestion, error) {
	active, err := s.repo.ListActiveQuestions(ctx)
	if err != nil {
		return nil, err
	}
	return s.selector.Pick(ctx, active)
}

// AttemptResult is what the caller shows after an answer is recorded.
type AttemptResult struct {
	Attempt     *models.QuizAttempt
	Question    *models.QuizQuestion
	Correct     bool
	Explanation string
}

// RecordAttempt grades and stores one answer. Attempt numbers are assigned
// here, from the stored count, never trusted from the caller. Every attempt
// is recorded, right or wrong, with no cap on retries.
func (s *Service) RecordAttempt(ctx context.Context, employeeID, questionID int64, selected string) (*AttemptResult, error) {
	if !models.ValidAnswer(selected) {
		return nil, ErrInvalidAnswer
	}

	question, err := s.repo.GetQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}

	prior, err := s.attempts.CountByEmployeeAndQuestion(ctx, employeeID, questionID)
	if err != nil {
		return nil, err
	}

	correct := selected == question.CorrectAnswer
	attempt := &models.QuizAttempt{
		EmployeeID:     employeeID,
		QuestionID:     questionID,
		SelectedAnswer: selected,
		Correct:        correct,
		AttemptNumber:  prior + 1,
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}

	slog.Info("Quiz attempt recorded",
		slog.String("type", "sys"),
		slog.Int64("employee_id", employeeID),
		slog.Int64("question_id", questionID),
		slog.Int("attempt_number", attempt.AttemptNumber),
		slog.Bool("correct", correct),
	)

	return &AttemptResult{
		Attempt:     attempt,
		Question:    question,
		Correct:     correct,
		Explanation: question.Explanation,
	}, nil
}

func (s *Service) CreateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	if !models.ValidAnswer(question.CorrectAnswer) {
		return ErrInvalidAnswer
	}
	return s.repo.CreateQuestion(ctx, question)
}

func (s *Service) GetQuestion(ctx context.Context, id int64) (*models.QuizQuestion, error) {
	return s.repo.GetQuestion(ctx, id)
}

func (s *Service) UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	if !models.ValidAnswer(question.CorrectAnswer) {
		return ErrInvalidAnswer
	}
	return s.repo.UpdateQuestion(ctx, question)
}

func (s *Service) ListQuestions(ctx context.Context) ([]*models.QuizQuestion, error) {
	return s.repo.ListQuestions(ctx)
}

func (s *Service) SetQuestionActive(ctx context.Context, id int64, active bool) error {
	return s.repo.SetQuestionActive(ctx, id, active)
}

// DeleteQuestion removes a question. Questions that were ever attempted are
// deactivated instead of deleted so attempt history keeps a valid target;
// the returned flag reports that case.
func (s *Service) DeleteQuestion(ctx context.Context, id int64) (deactivated bool, err error) {
	attempted, err := s.attempts.QuestionHasAttempts(ctx, id)
	if err != nil {
		return false, err
	}
	if attempted {
		if err := s.repo.SetQuestionActive(ctx, id, false); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, s.repo.DeleteQuestion(ctx, id)
}

// GetSettings returns the rotation anchor. When none has ever been stored,
// a default anchored on today in the default timezone is written and
// returned, so the rotation has a stable day 1 from first read onward.
func (s *Service) GetSettings(ctx context.Context) (*models.QuizSettings, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, repositories.ErrSettingsNotFound) {
		return nil, err
	}

	settings = &models.QuizSettings{
		StartDate: s.resolver.LocalDate(s.clock.Now(), s.defaultTZ),
		Timezone:  s.defaultTZ,
	}
	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return nil, err
	}

	slog.Info("Quiz rotation settings initialized",
		slog.String("type", "sys"),
		slog.String("start_date", settings.StartDate),
		slog.String("timezone", settings.Timezone),
	)
	return settings, nil
}

// UpdateSettings replaces the rotation anchor. StartDate must be a valid
// calendar date.
func (s *Service) UpdateSettings(ctx context.Context, startDate, timezone string) (*models.QuizSettings, error) {
	if _, err := time.Parse(timeutil.DateLayout, startDate); err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}

	settings := &models.QuizSettings{
		StartDate: startDate,
		Timezone:  timezone,
	}
	if err := s.repo.UpsertSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func (s *Service) AttemptHistory(ctx context.Context, employeeID, questionID int64) ([]*models.QuizAttempt, error) {
	return s.attempts.ListByEmployeeAndQuestion(ctx, employeeID, questionID)
}
