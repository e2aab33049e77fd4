package report

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	logging "me-linker/internal/infra/log"
)

// ErrNotConfigured means no bot token or chat id was set.
var ErrNotConfigured = errors.New("telegram is not configured")

// Sender is the part of *tgbotapi.BotAPI the notifier uses.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier posts batch summaries to one chat.
type Notifier struct {
	bot    Sender
	chatID int64
}

func parseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid telegram chat id %q: %w", s, err)
	}
	return id, nil
}

// NewNotifier connects to the Bot API. It returns ErrNotConfigured when token or chat id is empty.
func NewNotifier(token, chatID string) (*Notifier, error) {
	if strings.TrimSpace(token) == "" || strings.TrimSpace(chatID) == "" {
		return nil, ErrNotConfigured
	}
	id, err := parseChatID(chatID)
	if err != nil {
		return nil, err
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Notifier{bot: bot, chatID: id}, nil
}

// NewNotifierWithSender is used with a preconfigured or fake bot.
func NewNotifierWithSender(bot Sender, chatID int64) *Notifier {
	return &Notifier{bot: bot, chatID: chatID}
}

// Notify sends the chart with the summary as caption. Without a chart, or
// when the photo upload fails, the summary goes out as a plain message.
func (n *Notifier) Notify(s Summary, chartPath string) error {
	text := FormatSummary(s)

	if chartPath != "" {
		if _, err := os.Stat(chartPath); err == nil {
			photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FilePath(chartPath))
			photo.Caption = text
			photo.ParseMode = tgbotapi.ModeHTML
			_, err := n.bot.Send(photo)
			if err == nil {
				logging.LogInfo("Report sent", zap.Int64("chatID", n.chatID))
				return nil
			}
			logging.LogWarn("Failed to send report chart", zap.Error(err))
		} else {
			logging.LogWarn("Chart file does not exist", zap.String("chartPath", chartPath))
		}
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send report message: %w", err)
	}
	logging.LogInfo("Report sent without chart", zap.Int64("chatID", n.chatID))
	return nil
}
