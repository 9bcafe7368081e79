package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shiftwise/shiftbot/shiftbot"
	"github.com/shiftwise/shiftbot/shiftbot/database/models"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/handlers"
	"github.com/shiftwise/shiftbot/shiftbot/sales"
)

var periodLabels = map[sales.Period]string{
	sales.PeriodToday:  "Today",
	sales.PeriodWeek:   "Last 7 days",
	sales.PeriodBiweek: "Last 2 weeks",
	sales.PeriodMonth:  "Last 30 days",
}

func StatusHandler(b *shiftbot.Bot) handlers.CommandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		employee, err := b.Employees.Lookup(ctx, telegramID(msg))
		if err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				reply(b, msg.Chat.ID, "You're not registered yet. Send /start first.")
				return nil
			}
			return err
		}

		text, err := renderStatus(ctx, b, employee, sales.PeriodToday)
		if err != nil {
			return err
		}

		replyWithKeyboard(b, msg.Chat.ID, text, periodKeyboard())
		return nil
	}
}

// HandleStatsCallback re-renders the status message for the tapped period.
func HandleStatsCallback(ctx context.Context, b *shiftbot.Bot, cq *tgbotapi.CallbackQuery) error {
	period := sales.Period(strings.TrimPrefix(cq.Data, statsCallbackPrefix))
	if !period.Valid() {
		answerCallback(b, cq.ID, "")
		return nil
	}

	employee, err := b.Employees.Lookup(ctx, fmt.Sprintf("%d", cq.From.ID))
	if err != nil {
		if errors.Is(err, repositories.ErrEmployeeNotFound) {
			answerCallback(b, cq.ID, "Send /start to register first.")
			return nil
		}
		return err
	}

	text, err := renderStatus(ctx, b, employee, period)
	if err != nil {
		return err
	}

	answerCallback(b, cq.ID, "")
	if cq.Message != nil {
		editMessageWithKeyboard(b, cq.Message.Chat.ID, cq.Message.MessageID, text, periodKeyboard())
	}
	return nil
}

func renderStatus(ctx context.Context, b *shiftbot.Bot, employee *models.Employee, period sales.Period) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📋 Status for %s\n\n", employee.Name)

	today, err := b.Timeclock.Today(ctx, employee.ID)
	switch {
	case errors.Is(err, repositories.ErrSessionNotFound):
		sb.WriteString("You haven't clocked in today.\n")
	case err != nil:
		return "", err
	case today.Open():
		fmt.Fprintf(&sb, "On shift since %s.\n", localClock(b, today.ClockInTime))
	default:
		fmt.Fprintf(&sb, "Shift done: %s to %s, %.2f hours.\n",
			localClock(b, today.ClockInTime), localClock(b, *today.ClockOutTime), *today.TotalHours)
	}

	stats, err := b.Sales.Stats(ctx, employee.ID, period)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(&sb, "\n%s: $%.2f tips + $%.2f PPV = $%.2f (%d sales)\n",
		periodLabels[period], stats.TipTotal, stats.PPVTotal, stats.Total, stats.SaleCount)
	fmt.Fprintf(&sb, "%d days worked, %.1f hours", stats.DaysWorked, stats.HoursWorked)

	return sb.String(), nil
}

func periodKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Today", statsCallbackPrefix+string(sales.PeriodToday)),
			tgbotapi.NewInlineKeyboardButtonData("Week", statsCallbackPrefix+string(sales.PeriodWeek)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("2 weeks", statsCallbackPrefix+string(sales.PeriodBiweek)),
			tgbotapi.NewInlineKeyboardButtonData("Month", statsCallbackPrefix+string(sales.PeriodMonth)),
		),
	)
}
