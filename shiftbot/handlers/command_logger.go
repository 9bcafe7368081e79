package handlers

import (
	"context"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CommandHandler processes one bot command message.
type CommandHandler func(ctx context.Context, msg *tgbotapi.Message) error

// WrapWithLogging wraps a command handler with logging functionality
func WrapWithLogging(name string, h CommandHandler) CommandHandler {
	return func(ctx context.Context, msg *tgbotapi.Message) error {
		start := time.Now()

		slog.Info("Command started",
			slog.String("type", "cmd"),
			slog.String("name", name),
			slog.Int64("user_id", msg.From.ID),
			slog.String("user_name", msg.From.UserName),
			slog.Int64("chat_id", msg.Chat.ID),
		)

		done := make(chan error, 1)
		go func() {
			done <- h(ctx, msg)
		}()

		select {
		case err := <-done:
			duration := time.Since(start)

			attrs := []any{
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.Int64("user_id", msg.From.ID),
				slog.String("user_name", msg.From.UserName),
				slog.Duration("took", duration),
			}

			if err != nil {
				slog.Error("Command failed", append(attrs,
					slog.Any("error", err),
					slog.String("status", "failed"),
				)...)
				return err
			}

			if duration > 2*time.Second {
				slog.Warn("Command executed slowly", append(attrs,
					slog.String("status", "slow"),
				)...)
			} else {
				slog.Info("Command completed", append(attrs,
					slog.String("status", "success"),
				)...)
			}
			return nil

		case <-ctx.Done():
			slog.Error("Command cancelled",
				slog.String("type", "cmd"),
				slog.String("name", name),
				slog.Int64("user_id", msg.From.ID),
				slog.Duration("took", time.Since(start)),
			)
			return ctx.Err()
		}
	}
}
