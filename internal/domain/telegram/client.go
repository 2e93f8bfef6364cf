// internal/domain/telegram/client.go
package telegram

import "gopkg.in/telebot.v3"

// Client sends messages to Telegram chats.
type Client interface {
	SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error
}
