package bot

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/hray3182/daybook/internal/format"
	"github.com/hray3182/daybook/internal/models"
	"github.com/hray3182/daybook/internal/planner"
	"github.com/hray3182/daybook/internal/repository"
)

const helpText = `/link <토큰> - 이 채팅을 계정에 연결
/unlink - 연결 해제
/today - 오늘 요약 보기
/summary on|off - 아침 요약 켜기/끄기
/summary HH:MM - 아침 요약 시간 변경`

func text(s string) format.Message {
	var b format.Builder
	return b.Text(s).Message()
}

// handleCommand answers one command sent from chatID.
func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) format.Message {
	args = strings.TrimSpace(args)

	switch command {
	case "start", "help":
		var mb format.Builder
		return mb.Bold("daybook").Line("").Line("").Text(helpText).Message()
	case "link":
		return b.handleLink(ctx, chatID, args)
	case "unlink":
		return b.handleUnlink(ctx, chatID)
	case "today":
		return b.handleToday(ctx, chatID)
	case "summary":
		return b.handleSummary(ctx, chatID, args)
	default:
		return text("알 수 없는 명령어예요. /help 를 확인하세요")
	}
}

func (b *Bot) handleLink(ctx context.Context, chatID int64, token string) format.Message {
	if token == "" {
		return text("사용법: /link <토큰>")
	}
	userID, err := b.verify(token)
	if err != nil {
		return text("토큰이 올바르지 않거나 만료되었어요")
	}

	if _, err := b.planner.UpdateSettings(ctx, userID, planner.SettingsPatch{TelegramChatID: &chatID}); err != nil {
		log.Printf("Failed to link chat %d to user %d: %v", chatID, userID, err)
		return text("연결하지 못했어요. 잠시 후 다시 시도하세요")
	}
	return text("✅ 연결되었어요. 매일 아침 요약을 보내드릴게요")
}

func (b *Bot) handleUnlink(ctx context.Context, chatID int64) format.Message {
	settings, reply := b.linked(ctx, chatID)
	if settings == nil {
		return reply
	}

	var none int64
	if _, err := b.planner.UpdateSettings(ctx, settings.UserID, planner.SettingsPatch{TelegramChatID: &none}); err != nil {
		log.Printf("Failed to unlink chat %d: %v", chatID, err)
		return text("연결을 해제하지 못했어요")
	}
	return text("연결을 해제했어요")
}

func (b *Bot) handleToday(ctx context.Context, chatID int64) format.Message {
	settings, reply := b.linked(ctx, chatID)
	if settings == nil {
		return reply
	}

	now := b.now().In(settings.Location())
	view, err := b.planner.Day(ctx, settings.UserID, now.Format("2006-01-02"))
	if err != nil {
		log.Printf("Failed to resolve today for user %d: %v", settings.UserID, err)
		return text("오늘 일정을 불러오지 못했어요")
	}
	return format.DailySummary(view, now)
}

func (b *Bot) handleSummary(ctx context.Context, chatID int64, arg string) format.Message {
	settings, reply := b.linked(ctx, chatID)
	if settings == nil {
		return reply
	}

	var patch planner.SettingsPatch
	switch arg {
	case "on", "off":
		enabled := arg == "on"
		patch.DailySummaryEnabled = &enabled
	case "":
		return text("사용법: /summary on|off 또는 /summary HH:MM")
	default:
		patch.DailySummaryTime = &arg
	}

	updated, err := b.planner.UpdateSettings(ctx, settings.UserID, patch)
	if errors.Is(err, planner.ErrInvalidInput) {
		return text("시간은 HH:MM 형식으로 입력하세요")
	}
	if err != nil {
		log.Printf("Failed to update summary settings for %d: %v", settings.UserID, err)
		return text("설정을 저장하지 못했어요")
	}

	if !updated.DailySummaryEnabled {
		return text("아침 요약을 껐어요")
	}
	return text("아침 요약을 매일 " + updated.DailySummaryTime + "에 보내드릴게요")
}

// linked returns the settings of the user behind chatID, or nil and the
// reply to send when the chat is not linked.
func (b *Bot) linked(ctx context.Context, chatID int64) (*models.UserSettings, format.Message) {
	settings, err := b.chats.GetByTelegramChatID(ctx, chatID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, text("먼저 /link <토큰> 으로 계정을 연결하세요")
	}
	if err != nil {
		log.Printf("Failed to look up chat %d: %v", chatID, err)
		return nil, text("잠시 후 다시 시도하세요")
	}
	return settings, format.Message{}
}
