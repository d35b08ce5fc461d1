package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"liqwatch/internal/models"
	"liqwatch/internal/monitor"
	"liqwatch/pkg/ratelimit"
	"liqwatch/pkg/retry"
)

// alert_service.go - доставка алертов оператору
//
// Единственная точка выхода алертов из системы: Telegram канал,
// WebSocket push и журнал для API. Риск-логики здесь нет - что и когда
// отправлять, решил гейт.

// journalLimit - размер журнала алертов в памяти.
// Журнал служит API, долговременная история - не его забота.
const journalLimit = 100

// TelegramSender - канал доставки в мессенджер.
//
// Реализуется internal/notifier.TelegramNotifier; в тестах - мок.
type TelegramSender interface {
	SendAlert(ctx context.Context, event *models.AlertEvent) error
	Enabled() bool
}

// WebSocketBroadcaster - push алертов подключенным клиентам.
//
// Интерфейс здесь, а не в websocket пакете: разрывает циклическую
// зависимость и упрощает мок в тестах.
type WebSocketBroadcaster interface {
	BroadcastAlert(event *models.AlertEvent)
}

// AlertService реализует monitor.AlertSink
type AlertService struct {
	telegram TelegramSender
	wsHub    WebSocketBroadcaster
	limiter  *ratelimit.RateLimiter
	logger   *zap.Logger

	mu      sync.RWMutex
	journal []*models.AlertEvent // новые в конце
}

// NewAlertService создает сервис доставки алертов
func NewAlertService(telegram TelegramSender, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{
		telegram: telegram,
		// Лимит Telegram на один чат - ~1 сообщение в секунду;
		// burst покрывает одновременную эскалацию нескольких аккаунтов
		limiter: ratelimit.NewRateLimiter(1, 3),
		logger:  logger,
	}
}

// SetWebSocketHub устанавливает hub для push алертов.
// Вызывается после инициализации Hub в main.
func (s *AlertService) SetWebSocketHub(hub WebSocketBroadcaster) {
	s.wsHub = hub
}

// Deliver отправляет событие во все каналы.
//
// Ошибка возвращается только при недоставке в Telegram: гейт в этом
// случае не помечает алерт отправленным и повторит на следующем цикле.
// Журнал и WebSocket пополняются строго после успешной доставки, чтобы
// журнал не расходился с тем, что реально видел оператор.
func (s *AlertService) Deliver(ctx context.Context, event *models.AlertEvent) error {
	if s.telegram != nil && s.telegram.Enabled() {
		if err := s.limiter.Wait(ctx); err != nil {
			return err
		}

		err := retry.Do(ctx, func() error {
			return s.telegram.SendAlert(ctx, event)
		}, retry.NetworkConfig())
		if err != nil {
			monitor.AlertDeliveryFailures.Inc()
			s.logger.Error("telegram delivery failed",
				zap.String("address", event.Address),
				zap.Int("tier", int(event.Tier)),
				zap.Error(err))
			return err
		}
	}

	s.logger.Info("alert delivered",
		zap.String("severity", event.Severity),
		zap.String("address", event.Address),
		zap.Int("tier", int(event.Tier)),
		zap.Float64("health_pct", event.HealthPct))

	s.appendJournal(event)
	if s.wsHub != nil {
		s.wsHub.BroadcastAlert(event)
	}
	return nil
}

// appendJournal добавляет событие, удерживая журнал в пределах лимита
func (s *AlertService) appendJournal(event *models.AlertEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.journal = append(s.journal, event)
	if len(s.journal) > journalLimit {
		s.journal = s.journal[len(s.journal)-journalLimit:]
	}
}

// Recent возвращает последние события, новые сверху
func (s *AlertService) Recent(limit int) []*models.AlertEvent {
	if limit <= 0 || limit > journalLimit {
		limit = journalLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.journal)
	if limit > n {
		limit = n
	}

	events := make([]*models.AlertEvent, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		events = append(events, s.journal[i])
	}
	return events
}

// Count возвращает размер журнала
func (s *AlertService) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.journal)
}
