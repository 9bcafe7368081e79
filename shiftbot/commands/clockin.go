package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shiftwise/shiftbot/shiftbot"
	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/handlers"
	"github.com/shiftwise/shiftbot/shiftbot/quiz"
	"github.com/shiftwise/shiftbot/shiftbot/session"
	"github.com/shiftwise/shiftbot/shiftbot/timeclock"
)

func ClockInHandler(b *shiftbot.Bot) handlers.CommandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		employee, err := b.Employees.Lookup(ctx, telegramID(msg))
		if err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				reply(b, msg.Chat.ID, "You're not registered yet. Send /start first.")
				return nil
			}
			return err
		}

		question, err := b.Quiz.TodayQuestion(ctx)
		if err != nil {
			if errors.Is(err, quiz.ErrNoActiveQuestions) {
				// No quiz configured; let the clock-in through.
				reply(b, msg.Chat.ID, clockIn(ctx, b, employee.ID))
				return nil
			}
			return err
		}

		b.Sessions.Set(userKey(msg.From.ID), session.Conversation{
			State:             session.StateIdle,
			PendingQuestionID: question.ID,
		})

		replyWithKeyboard(b, msg.Chat.ID, formatQuestion(question), questionKeyboard(question))
		return nil
	}
}

func formatQuestion(q *models.QuizQuestion) string {
	return fmt.Sprintf("Before you clock in, today's question:\n\n%s\n\nA) %s\nB) %s\nC) %s\nD) %s",
		q.Question, q.OptionA, q.OptionB, q.OptionC, q.OptionD)
}

func questionKeyboard(q *models.QuizQuestion) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(models.AnswerLabels))
	for _, label := range models.AnswerLabels {
		data := fmt.Sprintf("%s%d:%s", quizCallbackPrefix, q.ID, label)
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, data))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// HandleQuizCallback grades an answer button press. A correct answer clocks
// the employee in; a wrong one leaves the keyboard up for another try.
func HandleQuizCallback(ctx context.Context, b *shiftbot.Bot, cq *tgbotapi.CallbackQuery) error {
	parts := strings.Split(strings.TrimPrefix(cq.Data, quizCallbackPrefix), ":")
	if len(parts) != 2 {
		answerCallback(b, cq.ID, "")
		return nil
	}
	questionID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		answerCallback(b, cq.ID, "")
		return nil
	}
	label := parts[1]

	employee, err := b.Employees.Lookup(ctx, fmt.Sprintf("%d", cq.From.ID))
	if err != nil {
		answerCallback(b, cq.ID, "You're not registered yet. Send /start first.")
		return nil
	}

	result, err := b.Quiz.RecordAttempt(ctx, employee.ID, questionID, label)
	if err != nil {
		if errors.Is(err, repositories.ErrQuestionNotFound) {
			answerCallback(b, cq.ID, "That question is gone. Send /clockin again.")
			return nil
		}
		return err
	}

	if !result.Correct {
		answerCallback(b, cq.ID, "Not quite, try again!")
		return nil
	}

	answerCallback(b, cq.ID, "Correct!")
	b.Sessions.Reset(userKey(cq.From.ID))

	text := "✅ Correct!"
	if result.Explanation != "" {
		text += "\n\n" + result.Explanation
	}
	text += "\n\n" + clockIn(ctx, b, employee.ID)

	if cq.Message != nil {
		editMessage(b, cq.Message.Chat.ID, cq.Message.MessageID, text)
	}
	return nil
}

// clockIn performs the actual clock-in and renders the outcome.
func clockIn(ctx context.Context, b *shiftbot.Bot, employeeID int64) string {
	clockedIn, err := b.Timeclock.ClockIn(ctx, employeeID)
	if err == nil {
		return fmt.Sprintf("You're clocked in at %s. Have a good shift!", localClock(b, clockedIn.ClockInTime))
	}

	var stale *timeclock.StaleSessionError
	switch {
	case errors.As(err, &stale):
		return fmt.Sprintf(
			"⚠️ You still have an open session from %s (%.1f hours and counting). "+
				"An admin needs to correct it before you can clock in again.",
			stale.Date, stale.ImpliedHours)
	case errors.Is(err, timeclock.ErrAlreadyClockedIn):
		return "You already have a session for today."
	default:
		return "Couldn't clock you in. Please try again in a moment."
	}
}
