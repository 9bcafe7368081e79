package commands

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shiftwise/shiftbot/shiftbot"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/handlers"
)

func AdminHandler(b *shiftbot.Bot) handlers.CommandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		employee, err := b.Employees.Lookup(ctx, telegramID(msg))
		if err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				reply(b, msg.Chat.ID, "You're not registered yet. Send /start first.")
				return nil
			}
			return err
		}

		isAdmin, err := b.Employees.IsAdmin(ctx, employee.ID)
		if err != nil {
			return err
		}
		if !isAdmin {
			reply(b, msg.Chat.ID, "The admin panel is for admins only.")
			return nil
		}

		if b.Cfg.Bot.AdminPanelURL == "" {
			reply(b, msg.Chat.ID, "No admin panel is configured for this deployment.")
			return nil
		}
		reply(b, msg.Chat.ID, fmt.Sprintf("Admin panel: %s", b.Cfg.Bot.AdminPanelURL))
		return nil
	}
}
