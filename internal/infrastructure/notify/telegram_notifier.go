package notify

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"surface-inspector/internal/domain/entity"
)

// Sender часть tgbotapi.BotAPI, нужная для отправки сообщений.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramNotifier отправляет оповещение о браке в заданный чат.
type TelegramNotifier struct {
	sender Sender
	chatID int64
}

// NewTelegramNotifier создаёт получателя для чата chatID.
func NewTelegramNotifier(sender Sender, chatID int64) *TelegramNotifier {
	return &TelegramNotifier{sender: sender, chatID: chatID}
}

// NotifyFailure отправляет текст оповещения.
func (n *TelegramNotifier) NotifyFailure(ctx context.Context, record *entity.InspectionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, FormatAlert(record))
	if _, err := n.sender.Send(msg); err != nil {
		return entity.Wrap(entity.KindInternal, "notify.telegram", "failed to send alert", err)
	}
	return nil
}

// FormatAlert текст оповещения о забракованной поверхности.
func FormatAlert(record *entity.InspectionRecord) string {
	var b strings.Builder
	b.WriteString("⚠️ Inspection FAILED\n")
	fmt.Fprintf(&b, "ID: %s\n", record.ID)
	fmt.Fprintf(&b, "Inspector: %s\n", record.Subject.Inspector)
	fmt.Fprintf(&b, "Batch: %s\n", record.Subject.Batch)
	if score, ok := record.Result.Score(); ok {
		fmt.Fprintf(&b, "Health score: %.1f\n", score)
	}
	if defects, ok := record.Result.DefectTotal(); ok {
		fmt.Fprintf(&b, "Defects: %d\n", defects)
	}
	fmt.Fprintf(&b, "Reason: %s", record.Result.Reason)
	return b.String()
}
