package commands

import (
	"context"
	"strings"

	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shiftwise/shiftbot/shiftbot"
	"github.com/shiftwise/shiftbot/shiftbot/handlers"
)

// Router dispatches telegram updates to command handlers, callback handlers
// and the conversation state machine.
type Router struct {
	bot      *shiftbot.Bot
	commands map[string]handlers.CommandHandler
}

func NewRouter(b *shiftbot.Bot) *Router {
	r := &Router{
		bot:      b,
		commands: make(map[string]handlers.CommandHandler),
	}

	r.commands["start"] = handlers.WrapWithLogging("start", StartHandler(b))
	r.commands["clockin"] = handlers.WrapWithLogging("clockin", ClockInHandler(b))
	r.commands["clockout"] = handlers.WrapWithLogging("clockout", ClockOutHandler(b))
	r.commands["addsale"] = handlers.WrapWithLogging("addsale", AddSaleHandler(b))
	r.commands["status"] = handlers.WrapWithLogging("status", StatusHandler(b))
	r.commands["admin"] = handlers.WrapWithLogging("admin", AdminHandler(b))

	return r
}

// BotCommands is what gets registered with telegram's command menu.
func BotCommands() []tgbotapi.BotCommand {
	return []tgbotapi.BotCommand{
		{Command: "start", Description: "Register or see what I can do"},
		{Command: "clockin", Description: "Start your shift"},
		{Command: "clockout", Description: "End your shift"},
		{Command: "addsale", Description: "Record a tip or PPV sale"},
		{Command: "status", Description: "Today's session and sales"},
		{Command: "admin", Description: "Open the admin panel"},
	}
}

func (r *Router) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		r.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.IsCommand():
		r.handleCommand(ctx, update.Message)
	case update.Message != nil && update.Message.Text != "":
		if err := HandleConversation(ctx, r.bot, update.Message); err != nil {
			slog.Error("Conversation step failed",
				slog.String("type", "cmd"),
				slog.Int64("user_id", update.Message.From.ID),
				slog.Any("error", err))
		}
	}
}

func (r *Router) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	name := msg.Command()
	handler, ok := r.commands[name]
	if !ok {
		reply(r.bot, msg.Chat.ID, "I don't know that command. Try /start to see what I can do.")
		return
	}

	// A new command abandons whatever flow was in progress.
	if name != "start" {
		r.bot.Sessions.Reset(userKey(msg.From.ID))
	}

	if err := handler(ctx, msg); err != nil {
		reply(r.bot, msg.Chat.ID, "Something went wrong. Please try again in a moment.")
	}
}

func (r *Router) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	switch {
	case strings.HasPrefix(cq.Data, quizCallbackPrefix):
		if err := HandleQuizCallback(ctx, r.bot, cq); err != nil {
			slog.Error("Quiz callback failed",
				slog.String("type", "cmd"),
				slog.Int64("user_id", cq.From.ID),
				slog.Any("error", err))
		}
	case strings.HasPrefix(cq.Data, saleCallbackPrefix):
		if err := HandleSaleCallback(ctx, r.bot, cq); err != nil {
			slog.Error("Sale callback failed",
				slog.String("type", "cmd"),
				slog.Int64("user_id", cq.From.ID),
				slog.Any("error", err))
		}
	case strings.HasPrefix(cq.Data, statsCallbackPrefix):
		if err := HandleStatsCallback(ctx, r.bot, cq); err != nil {
			slog.Error("Stats callback failed",
				slog.String("type", "cmd"),
				slog.Int64("user_id", cq.From.ID),
				slog.Any("error", err))
		}
	default:
		answerCallback(r.bot, cq.ID, "")
	}
}
