package commands

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shiftwise/shiftbot/shiftbot"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/handlers"
	"github.com/shiftwise/shiftbot/shiftbot/session"
)

const helpText = `Here's what I can do:

/clockin - start your shift (answer the daily quiz first)
/clockout - end your shift
/addsale - record a tip or PPV sale
/status - today's session and your sales
/admin - open the admin panel`

func StartHandler(b *shiftbot.Bot) handlers.CommandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		employee, err := b.Employees.Lookup(ctx, telegramID(msg))
		if err == nil {
			reply(b, msg.Chat.ID, fmt.Sprintf("Welcome back, %s!\n\n%s", employee.Name, helpText))
			return nil
		}
		if !errors.Is(err, repositories.ErrEmployeeNotFound) {
			return err
		}

		b.Sessions.Set(userKey(msg.From.ID), session.Conversation{State: session.StateAwaitingName})
		reply(b, msg.Chat.ID, "Hi! I don't know you yet. What's your name?")
		return nil
	}
}
