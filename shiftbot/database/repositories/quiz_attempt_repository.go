package repositories

import (
	"context"
	"time"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/uptrace/bun"
)

type QuizAttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	CountByEmployeeAndQuestion(ctx context.Context, employeeID, questionID int64) (int, error)
	ListByEmployeeAndQuestion(ctx context.Context, employeeID, questionID int64) ([]*models.QuizAttempt, error)
	QuestionHasAttempts(ctx context.Context, questionID int64) (bool, error)
}

type quizAttemptRepository struct {
	db *bun.DB
}

func NewQuizAttemptRepository(db *bun.DB) QuizAttemptRepository {
	return &quizAttemptRepository{db: db}
}

func (r *quizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	attempt.AttemptedAt = time.Now()
	_, err := r.db.NewInsert().Model(attempt).Exec(ctx)
	return err
}

func (r *quizAttemptRepository) CountByEmployeeAndQuestion(ctx context.Context, employeeID, questionID int64) (int, error) {
	return r.db.NewSelect().
		Model((*models.QuizAttempt)(nil)).
		Where("employee_id = ?", employeeID).
		Where("question_id = ?", questionID).
		Count(ctx)
}

func (r *quizAttemptRepository) ListByEmployeeAndQuestion(ctx context.Context, employeeID, questionID int64) ([]*models.QuizAttempt, error) {
	var attempts []*models.QuizAttempt
	err := r.db.NewSelect().
		Model(&attempts).
		Where("employee_id = ?", employeeID).
		Where("question_id = ?", questionID).
		Order("attempt_number ASC").
		Scan(ctx)
	return attempts, err
}

func (r *quizAttemptRepository) QuestionHasAttempts(ctx context.Context, questionID int64) (bool, error) {
	return r.db.NewSelect().
		Model((*models.QuizAttempt)(nil)).
		Where("question_id = ?", questionID).
		Exists(ctx)
}
