package monitor

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"liqwatch/internal/models"
	"liqwatch/internal/store"
	"liqwatch/pkg/utils"
)

// gate.go - алерт-гейт: state machine, решающая отправлять / подавить / эскалировать
//
// Две политики за одним интерфейсом (выбирается конфигурацией,
// деплоймент работает ровно с одной):
//
//   - PeriodGate: не больше одного алерта на (аккаунт, тир) за UTC-день.
//     Внутри дня повторно стреляет только эскалация в ещё не
//     алерченный тир; деэскалация и возврат в уже алерченный тир
//     молчат до следующего дня.
//
//   - CooldownGate: без границ периода. Эскалация относительно
//     последнего тира алертит немедленно (cooldown не задерживает её
//     никогда); тот же тир повторяется не чаще чем раз в cooldown;
//     улучшение обновляет lastTier вниз без алерта.
//
// Общие свойства:
//   - tier 0 не алертится ни при каких условиях
//   - холодный старт / пропажа состояния / недоступный стор =>
//     "ещё не алертили" (fail open: лучше дубликат, чем тишина)
//   - состояние помечается "отправлено" строго ПОСЛЕ успешной отправки,
//     поэтому стор никогда не заявляет алерт, которого не было
//   - гонка read-then-write двух конкурентных циклов может дать
//     дубликат - допустимо для best-effort нотификатора

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// cooldownStateTTL - TTL состояния cooldown-гейта.
// Достаточно пережить любые разумные cooldown'ы; протухшее состояние
// самовосстанавливается в "никогда не алертили".
const cooldownStateTTL = 48 * time.Hour

// GatePolicy - стратегия гейтинга алертов
type GatePolicy interface {
	// Name возвращает имя политики ("period" или "cooldown")
	Name() string

	// Table возвращает таблицу тиров, с которой работает политика
	Table() TierTable

	// Evaluate решает судьбу одного наблюдения (аккаунт, тир).
	//
	// emit вызывается только когда алерт должен уйти прямо сейчас;
	// если emit вернул ошибку, состояние НЕ помечается отправленным
	// (следующий цикл попробует снова).
	//
	// Возвращает:
	//   - (true, nil): алерт отправлен
	//   - (false, nil): подавлен (уже алертили, cooldown, tier 0)
	//   - (false, err): emit не удался
	Evaluate(ctx context.Context, address string, tier models.RiskTier, emit func() error) (bool, error)
}

// ============================================================
// Period-гейт: календарный день UTC
// ============================================================

// PeriodGate реализует period-политику
type PeriodGate struct {
	store  store.StateStore
	table  TierTable
	logger *zap.Logger

	// now подменяется в тестах
	now func() time.Time
}

// NewPeriodGate создает period-гейт с 4-тировой таблицей
func NewPeriodGate(st store.StateStore, logger *zap.Logger) *PeriodGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PeriodGate{
		store:  st,
		table:  FourTierTable,
		logger: logger,
		now:    time.Now,
	}
}

// Name возвращает имя политики
func (g *PeriodGate) Name() string { return "period" }

// Table возвращает таблицу тиров политики
func (g *PeriodGate) Table() TierTable { return g.table }

// stateKey строит ключ (аккаунт, UTC-день)
func (g *PeriodGate) stateKey(address string, now time.Time) string {
	return fmt.Sprintf("period:%s:%s", address, utils.DayKeyFrom(now))
}

// Evaluate применяет period-политику к наблюдению
func (g *PeriodGate) Evaluate(ctx context.Context, address string, tier models.RiskTier, emit func() error) (bool, error) {
	if tier <= models.TierNone {
		return false, nil
	}

	now := g.now()
	key := g.stateKey(address, now)
	state := g.loadState(ctx, key)

	if state.Alerted[tier] {
		// Уже алертили этот тир в этом периоде. Это покрывает и
		// возврат в тот же тир после улучшения внутри дня - осознанное
		// подавление: интрадей повторы по тому же тиру даёт только
		// cooldown-политика.
		return false, nil
	}

	if err := emit(); err != nil {
		return false, fmt.Errorf("alert emit failed for %s tier %d: %w", address, tier, err)
	}

	// Помечаем отправку. TTL с запасом больше периода (но никогда не
	// короче): запись обязана дожить до конца своего UTC-дня.
	state.Alerted[tier] = true
	g.saveState(ctx, key, state)

	return true, nil
}

// loadState читает состояние периода; любая проблема = чистое состояние
func (g *PeriodGate) loadState(ctx context.Context, key string) *models.PeriodState {
	raw, ok, err := g.store.Get(ctx, key)
	if err != nil {
		g.logger.Warn("gate state read failed, failing open",
			zap.String("key", key), zap.Error(err))
		return models.NewPeriodState()
	}
	if !ok {
		return models.NewPeriodState()
	}

	state := models.NewPeriodState()
	if err := json.Unmarshal(raw, state); err != nil {
		g.logger.Warn("gate state corrupted, failing open",
			zap.String("key", key), zap.Error(err))
		return models.NewPeriodState()
	}
	if state.Alerted == nil {
		state.Alerted = make(map[models.RiskTier]bool)
	}
	return state
}

// saveState пишет состояние; ошибка записи не отменяет уже отправленный
// алерт (худший исход - дубликат на следующем цикле)
func (g *PeriodGate) saveState(ctx context.Context, key string, state *models.PeriodState) {
	raw, err := json.Marshal(state)
	if err != nil {
		g.logger.Error("gate state marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := g.store.Put(ctx, key, raw, utils.PeriodTTL()); err != nil {
		g.logger.Warn("gate state write failed, duplicate alert possible",
			zap.String("key", key), zap.Error(err))
	}
}

// ============================================================
// Cooldown-гейт: непрерывный, без границ периода
// ============================================================

// CooldownGate реализует cooldown-политику
type CooldownGate struct {
	store    store.StateStore
	table    TierTable
	cooldown time.Duration
	logger   *zap.Logger

	// now подменяется в тестах
	now func() time.Time
}

// NewCooldownGate создает cooldown-гейт с 3-тировой таблицей
//
// Параметры:
//   - cooldown: минимальный интервал между алертами одного тира
//     (<= 0 => 30 минут)
func NewCooldownGate(st store.StateStore, cooldown time.Duration, logger *zap.Logger) *CooldownGate {
	if cooldown <= 0 {
		cooldown = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CooldownGate{
		store:    st,
		table:    ThreeTierTable,
		cooldown: cooldown,
		logger:   logger,
		now:      time.Now,
	}
}

// Name возвращает имя политики
func (g *CooldownGate) Name() string { return "cooldown" }

// Table возвращает таблицу тиров политики
func (g *CooldownGate) Table() TierTable { return g.table }

// stateKey строит ключ аккаунта (периода нет)
func (g *CooldownGate) stateKey(address string) string {
	return "cooldown:" + address
}

// Evaluate применяет cooldown-политику к наблюдению
func (g *CooldownGate) Evaluate(ctx context.Context, address string, tier models.RiskTier, emit func() error) (bool, error) {
	now := g.now()
	key := g.stateKey(address)
	state := g.loadState(ctx, key)

	switch {
	case tier > state.LastTier:
		// Эскалация всегда алертит немедленно - cooldown её не задерживает.
		// LastTier >= 0 после loadState, так что здесь tier >= 1.
		if err := emit(); err != nil {
			return false, fmt.Errorf("alert emit failed for %s tier %d: %w", address, tier, err)
		}
		state.LastTier = tier
		state.LastAlertAt[tier] = now
		g.saveState(ctx, key, state)
		return true, nil

	case tier == state.LastTier && tier > models.TierNone:
		// Тот же тир: повторяем не чаще чем раз в cooldown
		lastAt, seen := state.LastAlertAt[tier]
		if seen && now.Sub(lastAt) < g.cooldown {
			return false, nil
		}
		if err := emit(); err != nil {
			return false, fmt.Errorf("alert emit failed for %s tier %d: %w", address, tier, err)
		}
		state.LastAlertAt[tier] = now
		g.saveState(ctx, key, state)
		return true, nil

	case tier < state.LastTier:
		// Улучшение: lastTier опускается без алерта. Отскок
		// tier1 -> tier0 -> tier1 внутри cooldown-окна после этого
		// считается свежей эскалацией (0 -> 1) и алертит сразу:
		// восстановление с последующим новым падением - новая
		// информация для оператора.
		state.LastTier = tier
		g.saveState(ctx, key, state)
		return false, nil
	}

	// tier == LastTier == 0: делать нечего
	return false, nil
}

// loadState читает состояние аккаунта; любая проблема = чистое состояние
func (g *CooldownGate) loadState(ctx context.Context, key string) *models.CooldownState {
	raw, ok, err := g.store.Get(ctx, key)
	if err != nil {
		g.logger.Warn("gate state read failed, failing open",
			zap.String("key", key), zap.Error(err))
		return models.NewCooldownState()
	}
	if !ok {
		return models.NewCooldownState()
	}

	state := models.NewCooldownState()
	if err := json.Unmarshal(raw, state); err != nil {
		g.logger.Warn("gate state corrupted, failing open",
			zap.String("key", key), zap.Error(err))
		return models.NewCooldownState()
	}
	if state.LastAlertAt == nil {
		state.LastAlertAt = make(map[models.RiskTier]time.Time)
	}
	if state.LastTier < models.TierNone {
		state.LastTier = models.TierNone
	}
	return state
}

// saveState пишет состояние аккаунта
func (g *CooldownGate) saveState(ctx context.Context, key string, state *models.CooldownState) {
	raw, err := json.Marshal(state)
	if err != nil {
		g.logger.Error("gate state marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := g.store.Put(ctx, key, raw, cooldownStateTTL); err != nil {
		g.logger.Warn("gate state write failed, duplicate alert possible",
			zap.String("key", key), zap.Error(err))
	}
}
