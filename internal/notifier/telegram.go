package notifier

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"

	"liqwatch/internal/models"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// telegram.go - доставка алертов в Telegram канал оператора
//
// Используется Bot API sendMessage без SDK: один метод не стоит
// зависимости. Токен и chat id приходят из конфигурации, глобального
// состояния нет.

// messageLimit - лимит Telegram на длину одного сообщения
const messageLimit = 4096

// TelegramNotifier отправляет алерты через Bot API
type TelegramNotifier struct {
	botToken string
	chatID   string
	baseURL  string
	client   *http.Client
}

// NewTelegramNotifier создает нотификатор.
//
// Пустые botToken/chatID дают выключенный нотификатор: Send молча
// проглатывает сообщения (деплой без Telegram - легальная конфигурация).
func NewTelegramNotifier(botToken, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		botToken: botToken,
		chatID:   chatID,
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

// Name возвращает имя канала
func (t *TelegramNotifier) Name() string { return "telegram" }

// Enabled сообщает, настроен ли канал
func (t *TelegramNotifier) Enabled() bool {
	return t.botToken != "" && t.chatID != ""
}

// SendAlert форматирует и отправляет событие алерта
func (t *TelegramNotifier) SendAlert(ctx context.Context, event *models.AlertEvent) error {
	icon := "ℹ️"
	switch event.Severity {
	case models.SeverityWarn:
		icon = "⚠️"
	case models.SeverityError:
		icon = "🚨"
	}

	text := fmt.Sprintf("%s *[%s]* %s", icon, event.Severity, event.Message)
	return t.Send(ctx, text)
}

// Send отправляет произвольный Markdown текст в канал оператора.
//
// Тексты длиннее лимита Telegram обрезаются: алерт и отчет целиком
// укладываются с большим запасом, а падать из-за длины нельзя.
func (t *TelegramNotifier) Send(ctx context.Context, text string) error {
	if !t.Enabled() {
		return nil
	}
	if len(text) > messageLimit {
		text = text[:messageLimit-3] + "..."
	}

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":    t.chatID,
		"text":       text,
		"parse_mode": "Markdown",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram api returned status %d", resp.StatusCode)
	}
	return nil
}
