package commands

import (
	"fmt"
	"time"

	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shiftwise/shiftbot/shiftbot"
)

const (
	quizCallbackPrefix  = "quiz:"
	saleCallbackPrefix  = "sale:"
	statsCallbackPrefix = "stats:"
)

func userKey(userID int64) string {
	return fmt.Sprintf("%d", userID)
}

func telegramID(msg *tgbotapi.Message) string {
	return fmt.Sprintf("%d", msg.From.ID)
}

func reply(b *shiftbot.Bot, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.API.Send(msg); err != nil {
		slog.Error("Failed to send message",
			slog.String("type", "cmd"),
			slog.Int64("chat_id", chatID),
			slog.Any("error", err))
	}
}

func replyWithKeyboard(b *shiftbot.Bot, chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	if _, err := b.API.Send(msg); err != nil {
		slog.Error("Failed to send message",
			slog.String("type", "cmd"),
			slog.Int64("chat_id", chatID),
			slog.Any("error", err))
	}
}

func answerCallback(b *shiftbot.Bot, callbackID, text string) {
	if _, err := b.API.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		slog.Error("Failed to answer callback",
			slog.String("type", "cmd"),
			slog.Any("error", err))
	}
}

func editMessageWithKeyboard(b *shiftbot.Bot, chatID int64, messageID int, text string, keyboard tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, keyboard)
	if _, err := b.API.Send(edit); err != nil {
		slog.Error("Failed to edit message",
			slog.String("type", "cmd"),
			slog.Int64("chat_id", chatID),
			slog.Any("error", err))
	}
}

func editMessage(b *shiftbot.Bot, chatID int64, messageID int, text string) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	if _, err := b.API.Send(edit); err != nil {
		slog.Error("Failed to edit message",
			slog.String("type", "cmd"),
			slog.Int64("chat_id", chatID),
			slog.Any("error", err))
	}
}

// localClock renders an instant as wall-clock time in the business timezone.
func localClock(b *shiftbot.Bot, t time.Time) string {
	return t.UTC().Add(b.Resolver.Offset(b.Timezone())).Format("15:04")
}
