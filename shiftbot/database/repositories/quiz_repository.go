package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/uptrace/bun"
)

var (
	ErrQuestionNotFound = errors.New("quiz question not found")
	ErrSettingsNotFound = errors.New("quiz settings not found")
)

type QuizRepository interface {
	CreateQuestion(ctx context.Context, question *models.QuizQuestion) error
	GetQuestion(ctx context.Context, id int64) (*models.QuizQuestion, error)
	UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error
	// DeleteQuestion hard-deletes; callers must first verify the question
	// was never attempted.
	DeleteQuestion(ctx context.Context, id int64) error
	SetQuestionActive(ctx context.Context, id int64, active bool) error
	ListQuestions(ctx context.Context) ([]*models.QuizQuestion, error)
	// ListActiveQuestions returns active questions in rotation order.
	ListActiveQuestions(ctx context.Context) ([]*models.QuizQuestion, error)
	GetSettings(ctx context.Context) (*models.QuizSettings, error)
	UpsertSettings(ctx context.Context, settings *models.QuizSettings) error
}

type quizRepository struct {
	db *bun.DB
}

func NewQuizRepository(db *bun.DB) QuizRepository {
	return &quizRepository{db: db}
}

func (r *quizRepository) CreateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	question.CreatedAt = time.Now()
	_, err := r.db.NewInsert().Model(question).Exec(ctx)
	return err
}

func (r *quizRepository) GetQuestion(ctx context.Context, id int64) (*models.QuizQuestion, error) {
	question := new(models.QuizQuestion)
	err := r.db.NewSelect().
		Model(question).
		Where("id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return question, nil
}

func (r *quizRepository) UpdateQuestion(ctx context.Context, question *models.QuizQuestion) error {
	res, err := r.db.NewUpdate().
		Model(question).
		WherePK().
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (r *quizRepository) DeleteQuestion(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*models.QuizQuestion)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (r *quizRepository) SetQuestionActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.NewUpdate().
		Model((*models.QuizQuestion)(nil)).
		Set("active = ?", active).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrQuestionNotFound
	}
	return nil
}

func (r *quizRepository) ListQuestions(ctx context.Context) ([]*models.QuizQuestion, error) {
	var questions []*models.QuizQuestion
	err := r.db.NewSelect().
		Model(&questions).
		Order("created_at DESC").
		Scan(ctx)
	return questions, err
}

func (r *quizRepository) ListActiveQuestions(ctx context.Context) ([]*models.QuizQuestion, error) {
	var questions []*models.QuizQuestion
	err := r.db.NewSelect().
		Model(&questions).
		Where("active = ?", true).
		Order("position ASC", "id ASC").
		Scan(ctx)
	return questions, err
}

func (r *quizRepository) GetSettings(ctx context.Context) (*models.QuizSettings, error) {
	settings := new(models.QuizSettings)
	err := r.db.NewSelect().
		Model(settings).
		Order("updated_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSettingsNotFound
		}
		return nil, err
	}
	return settings, nil
}

// UpsertSettings keeps a single logical settings row, replacing on conflict.
func (r *quizRepository) UpsertSettings(ctx context.Context, settings *models.QuizSettings) error {
	settings.UpdatedAt = time.Now()

	existing, err := r.GetSettings(ctx)
	if err != nil && !errors.Is(err, ErrSettingsNotFound) {
		return err
	}
	if existing != nil {
		settings.ID = existing.ID
		_, err = r.db.NewUpdate().
			Model(settings).
			WherePK().
			Exec(ctx)
		return err
	}

	_, err = r.db.NewInsert().Model(settings).Exec(ctx)
	return err
}
