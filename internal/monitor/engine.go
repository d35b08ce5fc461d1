package monitor

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"liqwatch/internal/models"
)

// engine.go - цикл периодической оценки аккаунтов
//
// Поток данных одного цикла:
//
//	fetch -> normalize -> (skip если нет данных) -> health -> tier -> gate -> alert
//
// Аккаунты обрабатываются последовательно: список наблюдения маленький
// (единицы адресов), а rate limit info API общий. Ошибка по одному
// аккаунту пропускает только его и только на этот цикл.

// VenueClient - источник снимков аккаунтов с биржи
//
// Реализуется internal/hyperliquid.Client; в тестах подменяется моком.
type VenueClient interface {
	// FetchAccount возвращает нормализованный снимок аккаунта и его позиции
	FetchAccount(ctx context.Context, address string) (*models.AccountSnapshot, []models.PositionRecord, error)
}

// AlertSink - доставка алертов оператору (Telegram, WebSocket, журнал)
//
// Реализуется internal/service.AlertService.
type AlertSink interface {
	// Deliver отправляет событие. Ошибка означает "не доставлено":
	// гейт не пометит состояние и следующий цикл попробует снова.
	Deliver(ctx context.Context, event *models.AlertEvent) error
}

// HealthBroadcaster - push свежих оценок подключенным клиентам
type HealthBroadcaster interface {
	BroadcastHealthUpdate(report *AccountReport)
}

// Purger - опциональная фоновая чистка истекших записей стора
// (PostgresStore; Redis и memory чистятся сами)
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Engine - движок периодической оценки
type Engine struct {
	client    VenueClient
	gate      GatePolicy
	sink      AlertSink
	hub       HealthBroadcaster // может быть nil
	purger    Purger            // может быть nil
	logger    *zap.Logger
	interval  time.Duration
	addresses []string

	// Последние успешные оценки, по индексу аккаунта (для API)
	mu     sync.RWMutex
	latest map[int]*AccountReport
}

// EngineOptions - зависимости движка
type EngineOptions struct {
	Client    VenueClient
	Gate      GatePolicy
	Sink      AlertSink
	Hub       HealthBroadcaster
	Purger    Purger
	Logger    *zap.Logger
	Interval  time.Duration // <= 0 => 1 минута
	Addresses []string      // уже нормализованные адреса
}

// NewEngine создает движок оценки
func NewEngine(opts EngineOptions) *Engine {
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Engine{
		client:    opts.Client,
		gate:      opts.Gate,
		sink:      opts.Sink,
		hub:       opts.Hub,
		purger:    opts.Purger,
		logger:    opts.Logger,
		interval:  opts.Interval,
		addresses: opts.Addresses,
		latest:    make(map[int]*AccountReport),
	}
}

// Run запускает цикл оценки до отмены контекста.
//
// Первый цикл выполняется сразу, не дожидаясь первого тика.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("evaluation engine started",
		zap.Int("accounts", len(e.addresses)),
		zap.Duration("interval", e.interval),
		zap.String("gate_policy", e.gate.Name()))

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("evaluation engine stopped")
			return ctx.Err()
		case <-ticker.C:
			e.runCycle(ctx)
		}
	}
}

// runCycle оценивает все аккаунты списка наблюдения
func (e *Engine) runCycle(ctx context.Context) {
	for index, address := range e.addresses {
		if ctx.Err() != nil {
			return
		}
		e.evaluateAccount(ctx, index, address)
	}

	if e.purger != nil {
		if removed, err := e.purger.PurgeExpired(ctx); err != nil {
			e.logger.Warn("state store purge failed", zap.Error(err))
		} else if removed > 0 {
			e.logger.Debug("purged expired gate state", zap.Int64("removed", removed))
		}
	}
}

// evaluateAccount выполняет полный конвейер для одного аккаунта
func (e *Engine) evaluateAccount(ctx context.Context, index int, address string) {
	start := time.Now()

	snapshot, positions, err := e.client.FetchAccount(ctx, address)
	latencyMs := float64(time.Since(start).Milliseconds())

	if err != nil {
		RecordEvaluation("fetch_error", address, latencyMs)
		e.logger.Warn("account fetch failed, skipping this cycle",
			zap.Int("index", index),
			zap.String("address", address),
			zap.Error(err))
		return
	}

	snapshot.Index = index
	snapshot.Address = address

	// Нет пригодного equity - это "нет данных", а не tier 0:
	// такой аккаунт не доходит ни до классификатора, ни до гейта
	if !snapshot.HasUsableEquity() {
		RecordEvaluation("no_data", address, latencyMs)
		e.logger.Debug("account has no usable equity, skipping",
			zap.Int("index", index),
			zap.String("address", address),
			zap.Float64("account_value", snapshot.AccountValue))
		return
	}

	report := BuildReport(snapshot, positions, e.gate.Table())
	RecordEvaluation("ok", address, latencyMs)
	RecordHealth(address, report.HealthPct, report.Tier)

	e.mu.Lock()
	e.latest[index] = report
	e.mu.Unlock()

	if e.hub != nil {
		e.hub.BroadcastHealthUpdate(report)
	}

	decision := models.AlertDecision{
		Tier:         report.Tier,
		AccountIndex: index,
		Address:      address,
		HealthPct:    report.HealthPct,
	}
	if report.CrossLeverageKnown {
		decision.LeveragePct = report.CrossLeverage * 100
	}

	emitted, err := e.gate.Evaluate(ctx, address, report.Tier, func() error {
		event := e.buildAlertEvent(&decision)
		return e.sink.Deliver(ctx, event)
	})
	if err != nil {
		e.logger.Error("alert delivery failed, will retry next cycle",
			zap.Int("index", index),
			zap.String("address", address),
			zap.Int("tier", int(report.Tier)),
			zap.Error(err))
	}
	decision.Emit = emitted

	if report.Tier > models.TierNone {
		RecordAlert(report.Tier, emitted)
	}
}

// buildAlertEvent рендерит решение гейта в событие журнала
func (e *Engine) buildAlertEvent(d *models.AlertDecision) *models.AlertEvent {
	message := fmt.Sprintf("Риск ликвидации tier %d: аккаунт #%d %s, health %.2f%%",
		d.Tier, d.AccountIndex, shortAddress(d.Address), d.HealthPct)
	if d.LeveragePct > 0 {
		message += fmt.Sprintf(", плечо %.1fx", d.LeveragePct/100)
	}

	return &models.AlertEvent{
		Timestamp:    time.Now().UTC(),
		Severity:     d.Tier.Severity(e.gate.Table().MaxTier()),
		AccountIndex: d.AccountIndex,
		Address:      d.Address,
		Tier:         d.Tier,
		HealthPct:    d.HealthPct,
		Message:      message,
	}
}

// Report строит свежий отчет по аккаунту в обход гейта.
//
// Путь по запросу для API: оператор всегда получает актуальные цифры,
// независимо от того, что и когда алертилось.
func (e *Engine) Report(ctx context.Context, index int) (*AccountReport, error) {
	if index < 0 || index >= len(e.addresses) {
		return nil, fmt.Errorf("account index %d out of range [0, %d)", index, len(e.addresses))
	}
	address := e.addresses[index]

	snapshot, positions, err := e.client.FetchAccount(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch account %s: %w", address, err)
	}
	snapshot.Index = index
	snapshot.Address = address

	return BuildReport(snapshot, positions, e.gate.Table()), nil
}

// Latest возвращает последние успешные оценки всех аккаунтов,
// упорядоченные по индексу
func (e *Engine) Latest() []*AccountReport {
	e.mu.RLock()
	reports := make([]*AccountReport, 0, len(e.latest))
	for _, r := range e.latest {
		reports = append(reports, r)
	}
	e.mu.RUnlock()

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Index < reports[j].Index
	})
	return reports
}

// LatestFor возвращает последнюю оценку аккаунта, если она есть
func (e *Engine) LatestFor(index int) (*AccountReport, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	r, ok := e.latest[index]
	return r, ok
}

// Addresses возвращает список наблюдения
func (e *Engine) Addresses() []string {
	return e.addresses
}
