package config

import (
	"os"
	"strconv"
	"time"
)

// NotifyConfig controls the notification sinks.  The toast is always on;
// the Telegram mirror is enabled when both a bot token and a chat id are
// configured.
type NotifyConfig struct {
	Duration       time.Duration // default auto-dismiss delay
	TelegramToken  string        // bot token (TELEGRAM_TOKEN)
	TelegramChatID int64         // owner chat receiving the notifications
}

func LoadNotifyConfig() NotifyConfig {
	chat, _ := strconv.ParseInt(os.Getenv("TELEGRAM_CHAT_ID"), 10, 64)
	return NotifyConfig{
		Duration:       envDur("NOTIFY_DURATION", 5*time.Second),
		TelegramToken:  os.Getenv("TELEGRAM_TOKEN"),
		TelegramChatID: chat,
	}
}

// TelegramEnabled reports whether the Telegram mirror can be built.
func (c NotifyConfig) TelegramEnabled() bool {
	return c.TelegramToken != "" && c.TelegramChatID != 0
}
