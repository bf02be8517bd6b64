package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "surface-inspector/internal/application"
	"surface-inspector/internal/domain/entity"
	"surface-inspector/internal/logger"
)

const (
	msgStart = `👋 Привет! Я бот для проверки металлических поверхностей.

📸 Отправьте фото поверхности, и я оценю её состояние и найду возможные дефекты.

📋 Команды:
/check — начать проверку поверхности
/inspector <имя> — указать инспектора
/batch <номер> — указать партию
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото металлической поверхности
2️⃣ Бот проверит, что на фото металл, и проанализирует границы
3️⃣ Вы получите оценку состояния, число дефектов и фото с подсветкой

💡 Рекомендации:
• Снимайте при ровном освещении без бликов
• Поверхность должна занимать весь кадр
• Фото должно быть чётким

⚠️ Результат является справочным, окончательное решение принимает инспектор.

📋 Команды:
/check — начать проверку
/inspector <имя> — указать инспектора
/batch <номер> — указать партию
/cancel — отменить операцию`

	msgAwaitingPhoto   = "📸 Отправьте фото поверхности для проверки."
	msgCancelled       = "❌ Операция отменена. Отправьте /check для новой проверки."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото поверхности для проверки."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю изображение..."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
	msgDecodeError     = "⚠️ Файл не похож на изображение. Отправьте фото в формате JPEG или PNG."
	msgInspectorUsage  = "Укажите имя: /inspector Иванов"
	msgBatchUsage      = "Укажите партию: /batch BATCH-042"
)

// botAPI часть tgbotapi.BotAPI, которой пользуется бот.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Inspector запускает инспекцию фото.
type Inspector interface {
	Inspect(ctx context.Context, photo []byte, subject entity.Subject) (*app.InspectionOutput, error)
}

// Bot представляет Telegram-бота
type Bot struct {
	api         botAPI
	token       string
	users       *app.UserService
	inspections Inspector
	client      *http.Client
	maxBytes    int64
	timeout     time.Duration
}

// NewBot создаёт нового бота поверх авторизованного BotAPI
func NewBot(api *tgbotapi.BotAPI, users *app.UserService, inspections Inspector, maxBytes int64, timeout time.Duration) *Bot {
	logger.WithField("account", api.Self.UserName).Info("telegram bot authorized")
	return newBot(api, api.Token, users, inspections, maxBytes, timeout)
}

func newBot(api botAPI, token string, users *app.UserService, inspections Inspector, maxBytes int64, timeout time.Duration) *Bot {
	return &Bot{
		api:         api,
		token:       token,
		users:       users,
		inspections: inspections,
		client:      &http.Client{Timeout: timeout},
		maxBytes:    maxBytes,
		timeout:     timeout,
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}
	user, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID)
	if err != nil {
		logger.WithError(err).Error("failed to load bot user")
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, user)
		return
	}

	// Обработка фото и изображений, отправленных файлом
	if fileID, ok := imageFileID(msg); ok {
		b.handlePhoto(ctx, msg, user, fileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, user *entity.User) {
	chatID := msg.Chat.ID
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		b.setState(ctx, user, entity.StateAwaitingPhoto)
		b.sendMessage(chatID, msgAwaitingPhoto)

	case "cancel":
		b.setState(ctx, user, entity.StateMainMenu)
		b.sendMessage(chatID, msgCancelled)

	case "inspector":
		if args == "" {
			b.sendMessage(chatID, msgInspectorUsage)
			return
		}
		updated, err := b.users.SetInspector(ctx, user.ID, chatID, args)
		if err != nil {
			logger.WithError(err).Error("failed to set inspector")
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("👤 Инспектор: %s", updated.Inspector))

	case "batch":
		if args == "" {
			b.sendMessage(chatID, msgBatchUsage)
			return
		}
		updated, err := b.users.SetBatch(ctx, user.ID, chatID, args)
		if err != nil {
			logger.WithError(err).Error("failed to set batch")
			return
		}
		b.sendMessage(chatID, fmt.Sprintf("📦 Партия: %s", updated.Batch))

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handlePhoto скачивает фото, запускает инспекцию и отправляет результат
func (b *Bot) handlePhoto(ctx context.Context, msg *tgbotapi.Message, user *entity.User, fileID string) {
	chatID := msg.Chat.ID
	b.setState(ctx, user, entity.StateProcessing)
	defer b.setState(ctx, user, entity.StateMainMenu)

	b.sendMessage(chatID, msgProcessing)

	reqCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	imageData, err := b.downloadFile(reqCtx, fileID)
	if err != nil {
		logger.WithError(err).WithField("chat_id", chatID).Warn("failed to download photo")
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	out, err := b.inspections.Inspect(reqCtx, imageData, user.Subject())
	if err != nil {
		logger.WithError(err).WithField("chat_id", chatID).Warn("inspection failed")
		if entity.IsKind(err, entity.KindDecode) {
			b.sendMessage(chatID, msgDecodeError)
			return
		}
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.sendMessage(chatID, FormatResult(out))

	if len(out.Highlighted) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "defects.jpg", Bytes: out.Highlighted})
		photo.Caption = "🔍 Найденные дефекты"
		if _, err := b.api.Send(photo); err != nil {
			logger.WithError(err).Warn("failed to send highlighted photo")
		}
	}
}

// FormatResult текст ответа с результатом инспекции
func FormatResult(out *app.InspectionOutput) string {
	res := out.Record.Result

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s Результат: %s (%s)\n", statusIcon(res.Status), res.Status, res.Status.JapaneseLabel())
	if score, ok := res.Score(); ok {
		fmt.Fprintf(&sb, "Оценка состояния: %.1f\n", score)
	}
	if defects, ok := res.DefectTotal(); ok {
		fmt.Fprintf(&sb, "Дефектов: %d\n", defects)
	}
	fmt.Fprintf(&sb, "Причина: %s\n", res.Reason)
	sb.WriteString(entity.ExplanationFor(res.Status).English)
	fmt.Fprintf(&sb, "\n\nИнспектор: %s, партия: %s", out.Record.Subject.Inspector, out.Record.Subject.Batch)
	fmt.Fprintf(&sb, "\nID отчёта: %s", out.Record.ID)
	return sb.String()
}

func statusIcon(s entity.Status) string {
	switch s {
	case entity.StatusPass:
		return "✅"
	case entity.StatusFail:
		return "❌"
	case entity.StatusUncertain:
		return "❔"
	default:
		return "🚫"
	}
}

// imageFileID возвращает файл с максимальным разрешением или изображение-документ
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

func (b *Bot) setState(ctx context.Context, user *entity.User, state entity.UserState) {
	user.SetState(state)
	if _, err := b.users.SetState(ctx, user.ID, user.ChatID, state); err != nil {
		logger.WithError(err).Warn("failed to save bot user state")
	}
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if b.maxBytes > 0 && int64(file.FileSize) > b.maxBytes {
		return nil, fmt.Errorf("file is too large: %d bytes", file.FileSize)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	var body io.Reader = resp.Body
	if b.maxBytes > 0 {
		body = io.LimitReader(resp.Body, b.maxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	if b.maxBytes > 0 && int64(len(data)) > b.maxBytes {
		return nil, fmt.Errorf("file is too large")
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		logger.WithError(err).Warn("failed to send message")
	}
}
