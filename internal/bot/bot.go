// Package bot is the Telegram side of daybook: it delivers the scheduled
// summaries and answers a handful of chat commands.
package bot

import (
	"context"
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hray3182/daybook/internal/format"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/planner"
)

type Planner interface {
	Day(ctx context.Context, userID int64, date string) (*planner.DayView, error)
	UpdateSettings(ctx context.Context, userID int64, patch planner.SettingsPatch) (*models.UserSettings, error)
}

// Chats resolves the user a Telegram chat was linked to.
type Chats interface {
	GetByTelegramChatID(ctx context.Context, chatID int64) (*models.UserSettings, error)
}

// TokenVerifier returns the user an API token was issued to.
type TokenVerifier func(token string) (int64, error)

type Bot struct {
	api     *tgbotapi.BotAPI
	planner Planner
	chats   Chats
	verify  TokenVerifier
	now     func() time.Time
}

func New(token string, p Planner, chats Chats, verify TokenVerifier) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return &Bot{
		api:     api,
		planner: p,
		chats:   chats,
		verify:  verify,
		now:     time.Now,
	}, nil
}

// Send delivers msg to chatID.
func (b *Bot) Send(ctx context.Context, chatID int64, msg format.Message) error {
	out := tgbotapi.NewMessage(chatID, msg.Text)
	out.Entities = msg.Entities
	if _, err := b.api.Send(out); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update := <-updates:
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message == nil || !update.Message.IsCommand() {
		return
	}

	msg := update.Message
	reply := b.handleCommand(ctx, msg.Chat.ID, msg.Command(), msg.CommandArguments())
	if err := b.Send(ctx, msg.Chat.ID, reply); err != nil {
		log.Printf("Failed to reply to /%s: %v", msg.Command(), err)
	}
}
