// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

type InlineButton struct {
	Text string
	Data string
	URL  string
}

// TelegramBotAdapter is the narrow outbound transport surface: send text,
// send a button menu, forward a payment-proof photo to an operator, or send
// a rendered image such as a payment QR code.
type TelegramBotAdapter interface {
	SendMessage(ctx context.Context, telegramID int64, text string) error
	SendButtons(ctx context.Context, telegramID int64, text string, rows [][]InlineButton) error
	ForwardPhoto(ctx context.Context, toID, fromChatID int64, messageID int, caption string, rows [][]InlineButton) error
	SendImage(ctx context.Context, telegramID int64, image []byte, caption string) error
}
