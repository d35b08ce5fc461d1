package models

import "math"

// Стороны позиции
const (
	SideLong  = "long"
	SideShort = "short"
)

// MinPositionSize - минимальный значимый размер позиции.
// Позиции с |size| меньше этого порога считаются закрытыми и отбрасываются
// при нормализации (остатки после округления на бирже).
const MinPositionSize = 1e-10

// Режимы маржи
const (
	MarginModeCross    = "cross"
	MarginModeIsolated = "isolated"
)

// AccountSnapshot - снимок состояния аккаунта на бирже
//
// Пересчитывается заново на каждом цикле оценки из сырого ответа биржи,
// никогда не кэшируется между циклами. Все значения в USD.
type AccountSnapshot struct {
	Index   int    `json:"index"`   // порядковый номер в списке наблюдения
	Address string `json:"address"` // адрес аккаунта (0x...)

	AccountValue               float64 `json:"account_value"`                 // общий equity аккаунта
	MaintenanceMarginUsed      float64 `json:"maintenance_margin_used"`       // суммарная maintenance margin
	CrossMaintenanceMarginUsed float64 `json:"cross_maintenance_margin_used"` // maintenance margin кросс-позиций
	UnrealizedPnl              float64 `json:"unrealized_pnl"`                // нереализованный PNL (со знаком)
	TotalNotional              float64 `json:"total_notional"`                // суммарный notional всех позиций
	TotalMarginUsed            float64 `json:"total_margin_used"`             // суммарная используемая маржа
}

// CrossLeverage возвращает плечо кросс-портфеля: totalNotional / accountValue.
//
// Возвращает:
//   - (плечо, true) если accountValue > 0 и значения конечны
//   - (0, false) если плечо не определено (equity <= 0 или мусор в данных)
func (s *AccountSnapshot) CrossLeverage() (float64, bool) {
	if s.AccountValue <= 0 ||
		math.IsNaN(s.AccountValue) || math.IsInf(s.AccountValue, 0) ||
		math.IsNaN(s.TotalNotional) || math.IsInf(s.TotalNotional, 0) {
		return 0, false
	}
	return s.TotalNotional / s.AccountValue, true
}

// HasUsableEquity проверяет что по аккаунту вообще есть данные для оценки.
//
// Аккаунты с неположительным или неконечным equity пропускаются ДО
// расчёта тиров: это "нет данных", а не tier 0.
func (s *AccountSnapshot) HasUsableEquity() bool {
	return s.AccountValue > 0 && !math.IsNaN(s.AccountValue) && !math.IsInf(s.AccountValue, 0)
}

// PositionRecord - нормализованная запись о позиции
//
// Получается из сырого ответа биржи через слой нормализации
// (internal/hyperliquid/normalize.go). Классифицируется в cross или
// isolated на каждом цикле заново, классификация не персистится.
type PositionRecord struct {
	Coin          string   `json:"coin"`                 // символ монеты (обязателен)
	Side          string   `json:"side"`                 // "long" или "short"
	SignedSize    float64  `json:"signed_size"`          // размер со знаком (+long / -short)
	EntryPrice    float64  `json:"entry_price"`          // средняя цена входа
	LiqPrice      *float64 `json:"liq_price,omitempty"`  // цена ликвидации (может отсутствовать)
	MarkPrice     *float64 `json:"mark_price,omitempty"` // текущая mark цена (может отсутствовать)
	UnrealizedPnl float64  `json:"unrealized_pnl"`       // нереализованный PNL позиции
	Leverage      float64  `json:"leverage,omitempty"`   // заявленное биржей плечо

	// Сигналы классификации cross/isolated (заполняются нормализацией,
	// каскад приоритетов применяет классификатор)
	CrossFlag  *bool  `json:"cross_flag,omitempty"`  // явный булев флаг, если биржа его отдала
	MarginMode string `json:"margin_mode,omitempty"` // "cross"/"isolated", если биржа отдала строкой
}

// Size возвращает абсолютный размер позиции
func (p *PositionRecord) Size() float64 {
	return math.Abs(p.SignedSize)
}

// Notional возвращает номинал позиции по mark цене (или entry, если mark нет)
func (p *PositionRecord) Notional() float64 {
	price := p.EntryPrice
	if p.MarkPrice != nil {
		price = *p.MarkPrice
	}
	return p.Size() * price
}
