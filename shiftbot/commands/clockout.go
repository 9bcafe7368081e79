package commands

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shiftwise/shiftbot/shiftbot"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/handlers"
	"github.com/shiftwise/shiftbot/shiftbot/timeclock"
)

func ClockOutHandler(b *shiftbot.Bot) handlers.CommandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		employee, err := b.Employees.Lookup(ctx, telegramID(msg))
		if err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				reply(b, msg.Chat.ID, "You're not registered yet. Send /start first.")
				return nil
			}
			return err
		}

		closed, err := b.Timeclock.ClockOut(ctx, employee.ID)
		switch {
		case err == nil:
			reply(b, msg.Chat.ID, fmt.Sprintf(
				"Clocked out at %s. You worked %.2f hours today. Great job!",
				localClock(b, *closed.ClockOutTime), *closed.TotalHours))
		case errors.Is(err, timeclock.ErrNotClockedIn):
			reply(b, msg.Chat.ID, "You haven't clocked in today. Send /clockin to start your shift.")
		case errors.Is(err, timeclock.ErrSessionClosed):
			reply(b, msg.Chat.ID, "You already clocked out today.")
		default:
			return err
		}
		return nil
	}
}
