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
	"github.com/shiftwise/shiftbot/shiftbot/session"
)

func AddSaleHandler(b *shiftbot.Bot) handlers.CommandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		_, err := b.Employees.Lookup(ctx, telegramID(msg))
		if err != nil {
			if errors.Is(err, repositories.ErrEmployeeNotFound) {
				reply(b, msg.Chat.ID, "You're not registered yet. Send /start first.")
				return nil
			}
			return err
		}

		b.Sessions.Set(userKey(msg.From.ID), session.Conversation{
			State: session.StateAwaitingSaleCategory,
		})

		keyboard := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("💵 Tip", saleCallbackPrefix+string(models.SaleCategoryTip)),
				tgbotapi.NewInlineKeyboardButtonData("🎬 PPV", saleCallbackPrefix+string(models.SaleCategoryPPV)),
			),
		)
		replyWithKeyboard(b, msg.Chat.ID, "What kind of sale?", keyboard)
		return nil
	}
}

// HandleSaleCallback stores the chosen category and asks for the amount.
func HandleSaleCallback(ctx context.Context, b *shiftbot.Bot, cq *tgbotapi.CallbackQuery) error {
	category := models.SaleCategory(strings.TrimPrefix(cq.Data, saleCallbackPrefix))
	if !category.Valid() {
		answerCallback(b, cq.ID, "")
		return nil
	}

	if _, err := b.Employees.Lookup(ctx, fmt.Sprintf("%d", cq.From.ID)); err != nil {
		answerCallback(b, cq.ID, "You're not registered yet. Send /start first.")
		return nil
	}

	b.Sessions.Set(userKey(cq.From.ID), session.Conversation{
		State:           session.StateAwaitingSaleAmount,
		PendingCategory: category,
	})

	answerCallback(b, cq.ID, "")
	if cq.Message != nil {
		editMessage(b, cq.Message.Chat.ID, cq.Message.MessageID,
			fmt.Sprintf("Recording a %s. How much? (e.g. 25 or 19.99)", category))
	}
	return nil
}
