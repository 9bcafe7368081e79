package shiftbot

import (
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/shiftwise/shiftbot/shiftbot/database"
	"github.com/shiftwise/shiftbot/shiftbot/database/repositories"
	"github.com/shiftwise/shiftbot/shiftbot/employees"
	"github.com/shiftwise/shiftbot/shiftbot/quiz"
	"github.com/shiftwise/shiftbot/shiftbot/sales"
	"github.com/shiftwise/shiftbot/shiftbot/session"
	"github.com/shiftwise/shiftbot/shiftbot/timeclock"
	"github.com/shiftwise/shiftbot/shiftbot/timeutil"
)

func New(cfg Config, version string, commit string) *Bot {
	return &Bot{
		Cfg:     cfg,
		Version: version,
		Commit:  commit,
	}
}

type Bot struct {
	Cfg     Config
	API     *tgbotapi.BotAPI
	Version string
	Commit  string
	DB      *database.DB

	EmployeeRepository    repositories.EmployeeRepository
	ClockInRepository     repositories.ClockInRepository
	SaleRepository        repositories.SaleRepository
	QuizRepository        repositories.QuizRepository
	QuizAttemptRepository repositories.QuizAttemptRepository

	Employees *employees.Service
	Timeclock *timeclock.Service
	Sales     *sales.Service
	Quiz      *quiz.Service
	Sessions  *session.Store
	Resolver  *timeutil.Resolver
	Clock     timeutil.Clock
}

// Timezone is the business timezone used when presenting instants to users.
func (b *Bot) Timezone() string {
	return b.Cfg.Quiz.DefaultTimezone
}

func (b *Bot) SetupBot() error {
	api, err := tgbotapi.NewBotAPI(b.Cfg.Bot.Token)
	if err != nil {
		return err
	}
	b.API = api

	slog.Info("Telegram bot authorized",
		slog.String("type", "sys"),
		slog.String("username", api.Self.UserName),
		slog.String("version", b.Version),
		slog.String("commit", b.Commit))
	return nil
}

// Updates opens the long-polling update channel.
func (b *Bot) Updates() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.Cfg.Bot.UpdateTimeout
	return b.API.GetUpdatesChan(u)
}

func (b *Bot) Close() {
	if b.API != nil {
		b.API.StopReceivingUpdates()
	}
	if b.DB != nil {
		b.DB.Close()
	}
}
