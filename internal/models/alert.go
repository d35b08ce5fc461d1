package models

import "time"

// RiskTier - дискретный уровень риска, производный от health процента.
//
// Тиры полностью упорядочены: чем выше тир, тем ниже health и тем
// серьёзнее ситуация. Tier 0 = "нет алерта" (здоровый аккаунт или
// невозможно оценить).
type RiskTier int

const (
	TierNone RiskTier = 0 // нет алерта
)

// Severity уровни важности алертов
const (
	SeverityInfo  = "info"
	SeverityWarn  = "warn"
	SeverityError = "error"
)

// Severity возвращает уровень важности для тира.
//
// Самые глубокие тиры (health около нуля) - error, промежуточные - warn.
func (t RiskTier) Severity(maxTier RiskTier) string {
	switch {
	case t <= TierNone:
		return SeverityInfo
	case t >= maxTier:
		return SeverityError
	default:
		return SeverityWarn
	}
}

// AlertDecision - структурированное решение гейта по одному аккаунту
//
// Это единственный выход ядра оценки наружу: рендеринг текста и доставка
// находятся в alert service / notifier и не содержат риск-логики.
type AlertDecision struct {
	Emit         bool     `json:"emit"`          // отправлять ли алерт сейчас
	Tier         RiskTier `json:"tier"`          // вычисленный тир
	AccountIndex int      `json:"account_index"` // индекс аккаунта в списке наблюдения
	Address      string   `json:"address"`       // адрес аккаунта
	HealthPct    float64  `json:"health_pct"`    // health аккаунта, 0-100
	LeveragePct  float64  `json:"leverage_pct"`  // кросс-плечо в процентах (x3 = 300)
}

// AlertEvent - запись журнала алертов (отдаётся через API и WebSocket)
type AlertEvent struct {
	Timestamp    time.Time `json:"timestamp"`
	Severity     string    `json:"severity"` // info, warn, error
	AccountIndex int       `json:"account_index"`
	Address      string    `json:"address"`
	Tier         RiskTier  `json:"tier"`
	HealthPct    float64   `json:"health_pct"`
	Message      string    `json:"message"`
}

// ============================================================
// Персистентное состояние гейта (State Store, JSON + TTL)
// ============================================================

// PeriodState - состояние period-гейта для ключа (аккаунт, UTC-день)
//
// Инвариант: Alerted отражает только тиры, по которым сообщение
// ДЕЙСТВИТЕЛЬНО было отправлено. Запись в стор происходит строго после
// отправки, поэтому стор никогда не "врёт" в сторону подавления.
type PeriodState struct {
	Alerted map[RiskTier]bool `json:"alerted"`
}

// NewPeriodState создает пустое состояние (холодный старт)
func NewPeriodState() *PeriodState {
	return &PeriodState{Alerted: make(map[RiskTier]bool)}
}

// CooldownState - состояние cooldown-гейта для аккаунта
type CooldownState struct {
	LastTier    RiskTier               `json:"last_tier"`
	LastAlertAt map[RiskTier]time.Time `json:"last_alert_at"`
}

// NewCooldownState создает пустое состояние (холодный старт, tier 0)
func NewCooldownState() *CooldownState {
	return &CooldownState{
		LastTier:    TierNone,
		LastAlertAt: make(map[RiskTier]time.Time),
	}
}
