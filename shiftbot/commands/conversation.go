package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shiftwise/shiftbot/shiftbot"
	"github.com/shiftwise/shiftbot/shiftbot/employees"
	"github.com/shiftwise/shiftbot/shiftbot/sales"
	"github.com/shiftwise/shiftbot/shiftbot/session"
)

// HandleConversation advances a multi-step flow with a free-text message.
func HandleConversation(ctx context.Context, b *shiftbot.Bot, msg *tgbotapi.Message) error {
	conv := b.Sessions.Get(userKey(msg.From.ID))

	switch conv.State {
	case session.StateAwaitingName:
		return handleNameStep(ctx, b, msg)
	case session.StateAwaitingSaleAmount:
		return handleAmountStep(ctx, b, msg, conv)
	case session.StateAwaitingSaleCategory:
		reply(b, msg.Chat.ID, "Tap one of the buttons above to pick the sale type.")
		return nil
	default:
		reply(b, msg.Chat.ID, "Send /start to see what I can do.")
		return nil
	}
}

func handleNameStep(ctx context.Context, b *shiftbot.Bot, msg *tgbotapi.Message) error {
	employee, err := b.Employees.Register(ctx, telegramID(msg), msg.Text)
	switch {
	case err == nil:
		b.Sessions.Reset(userKey(msg.From.ID))
		reply(b, msg.Chat.ID, fmt.Sprintf("Nice to meet you, %s! You're all set.\n\n%s", employee.Name, helpText))
	case errors.Is(err, employees.ErrNameTooShort):
		reply(b, msg.Chat.ID, "That name is too short. Please send at least 2 characters.")
	case errors.Is(err, employees.ErrAlreadyRegistered):
		b.Sessions.Reset(userKey(msg.From.ID))
		reply(b, msg.Chat.ID, "Looks like you're already registered. Send /status to check in on your day.")
	default:
		return err
	}
	return nil
}

func handleAmountStep(ctx context.Context, b *shiftbot.Bot, msg *tgbotapi.Message, conv session.Conversation) error {
	raw := strings.TrimSpace(strings.TrimPrefix(msg.Text, "$"))
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		reply(b, msg.Chat.ID, "I need a number, like 25 or 19.99. How much was it?")
		return nil
	}

	employee, err := b.Employees.Lookup(ctx, telegramID(msg))
	if err != nil {
		b.Sessions.Reset(userKey(msg.From.ID))
		reply(b, msg.Chat.ID, "You're not registered yet. Send /start first.")
		return nil
	}

	sale, err := b.Sales.Record(ctx, employee.ID, conv.PendingCategory, amount, "")
	if err != nil {
		if errors.Is(err, sales.ErrInvalidAmount) {
			reply(b, msg.Chat.ID, "The amount has to be more than zero. How much was it?")
			return nil
		}
		return err
	}

	b.Sessions.Reset(userKey(msg.From.ID))

	stats, err := b.Sales.Stats(ctx, employee.ID, sales.PeriodToday)
	if err != nil {
		reply(b, msg.Chat.ID, fmt.Sprintf("Recorded a $%.2f %s. Nice!", sale.Amount, sale.Category))
		return nil
	}
	reply(b, msg.Chat.ID, fmt.Sprintf(
		"Recorded a $%.2f %s. Today so far: $%.2f in tips, $%.2f in PPV ($%.2f total).",
		sale.Amount, sale.Category, stats.TipTotal, stats.PPVTotal, stats.Total))
	return nil
}
