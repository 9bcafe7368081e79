package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/shiftwise/shiftbot/backend/models"
	"github.com/shiftwise/shiftbot/backend/utils"
	dbmodels "github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/quiz"
)

// publicQuestion is a question stripped of its answer key, safe to hand to
// employee clients.
type publicQuestion struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	OptionA  string `json:"option_a"`
	OptionB  string `json:"option_b"`
	OptionC  string `json:"option_c"`
	OptionD  string `json:"option_d"`
}

func toPublicQuestion(q *dbmodels.QuizQuestion) publicQuestion {
	return publicQuestion{
		ID:       q.ID,
		Question: q.Question,
		OptionA:  q.OptionA,
		OptionB:  q.OptionB,
		OptionC:  q.OptionC,
		OptionD:  q.OptionD,
	}
}

// QuizToday serves the question of the day without the correct answer.
func QuizToday(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		question, err := app.Quiz.TodayQuestion(ctx)
		if err != nil {
			if errors.Is(err, quiz.ErrNoActiveQuestions) {
				return utils.SendNotFound(c, "No quiz is configured")
			}
			return utils.SendInternalServerError(c, "Failed to pick today's question")
		}
		return utils.SendSuccess(c, toPublicQuestion(question), "")
	}
}

// QuizAttempt grades an answer server-side and records it.
func QuizAttempt(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.AttemptRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		employee, err := app.Employees.Lookup(ctx, req.TelegramID)
		if err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				return utils.SendNotFound(c, "Unknown telegram account")
			}
			return utils.SendInternalServerError(c, "Failed to look up employee")
		}

		result, err := app.Quiz.RecordAttempt(ctx, employee.ID, req.QuestionID, req.Answer)
		switch {
		case errors.Is(err, repositories.ErrQuestionNotFound):
			return utils.SendNotFound(c, "Question not found")
		case errors.Is(err, quiz.ErrInvalidAnswer):
			return utils.SendBadRequest(c, "Answer must be one of A, B, C, D", nil)
		case err != nil:
			return utils.SendInternalServerError(c, "Failed to record attempt")
		}

		payload := fiber.Map{
			"correct":        result.Correct,
			"attempt_number": result.Attempt.AttemptNumber,
		}
		if result.Correct && result.Explanation != "" {
			payload["explanation"] = result.Explanation
		}
		return utils.SendSuccess(c, payload, "")
	}
}

func QuestionsList(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		questions, err := app.Quiz.ListQuestions(ctx)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list questions")
		}
		return utils.SendSuccess(c, questions, "")
	}
}

func QuestionsDetail(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid question id", nil)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		question, err := app.Quiz.GetQuestion(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrQuestionNotFound) {
				return utils.SendNotFound(c, "Question not found")
			}
			return utils.SendInternalServerError(c, "Failed to fetch question")
		}
		return utils.SendSuccess(c, question, "")
	}
}

func QuestionsCreate(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.QuestionCreateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		question := &dbmodels.QuizQuestion{
			Question:      req.Question,
			OptionA:       req.OptionA,
			OptionB:       req.OptionB,
			OptionC:       req.OptionC,
			OptionD:       req.OptionD,
			CorrectAnswer: req.CorrectAnswer,
			Explanation:   req.Explanation,
			Active:        true,
			Position:      req.Position,
		}
		if err := app.Quiz.CreateQuestion(ctx, question); err != nil {
			return utils.SendInternalServerError(c, "Failed to create question")
		}
		return utils.SendCreated(c, question, "Question created")
	}
}

func QuestionsUpdate(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid question id", nil)
		}

		var req models.QuestionUpdateRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		question, err := app.Quiz.GetQuestion(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrQuestionNotFound) {
				return utils.SendNotFound(c, "Question not found")
			}
			return utils.SendInternalServerError(c, "Failed to fetch question")
		}

		question.Question = req.Question
		question.OptionA = req.OptionA
		question.OptionB = req.OptionB
		question.OptionC = req.OptionC
		question.OptionD = req.OptionD
		question.CorrectAnswer = req.CorrectAnswer
		question.Explanation = req.Explanation
		question.Active = req.Active
		question.Position = req.Position

		if err := app.Quiz.UpdateQuestion(ctx, question); err != nil {
			return utils.SendInternalServerError(c, "Failed to update question")
		}
		return utils.SendSuccess(c, question, "Question updated")
	}
}

// QuestionsDelete hard-deletes an unattempted question and deactivates one
// with history.
func QuestionsDelete(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := parseIDParam(c)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid question id", nil)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		deactivated, err := app.Quiz.DeleteQuestion(ctx, id)
		if err != nil {
			if errors.Is(err, repositories.ErrQuestionNotFound) {
				return utils.SendNotFound(c, "Question not found")
			}
			return utils.SendInternalServerError(c, "Failed to delete question")
		}

		if deactivated {
			return utils.SendSuccess(c, fiber.Map{"deactivated": true},
				"Question has attempt history and was deactivated instead of deleted")
		}
		return utils.SendNoContent(c)
	}
}

func QuizSettingsGet(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := requestContext(c)
		defer cancel()

		// Materializes a today-anchored default on first read.
		settings, err := app.Quiz.GetSettings(ctx)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to fetch settings")
		}
		return utils.SendSuccess(c, settings, "")
	}
}

func QuizSettingsUpdate(app *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req models.QuizSettingsRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateStruct(req); errs != nil {
			return utils.HandleValidationErrors(c, errs)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		settings, err := app.Quiz.UpdateSettings(ctx, req.StartDate, req.Timezone)
		if err != nil {
			return utils.SendBadRequest(c, "Invalid rotation settings", nil)
		}
		return utils.SendSuccess(c, settings, "Rotation settings updated")
	}
}
