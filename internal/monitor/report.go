package monitor

import (
	"fmt"
	"strings"
	"time"

	"liqwatch/internal/models"
)

// report.go - построение операторского отчета по аккаунту
//
// Отчет собирает снимок аккаунта, health, тир и обе группы позиций в
// одну структуру. Собственной риск-логики здесь нет: все числа приходят
// готовыми из калькулятора и классификатора, гейт не участвует -
// отчет по запросу всегда отдается как есть.

// PositionReport - одна позиция в отчете
type PositionReport struct {
	Coin          string   `json:"coin"`
	Side          string   `json:"side"`
	Size          float64  `json:"size"`
	EntryPrice    float64  `json:"entry_price"`
	MarkPrice     *float64 `json:"mark_price,omitempty"`
	LiqPrice      *float64 `json:"liq_price,omitempty"`
	NotionalUSD   float64  `json:"notional_usd"`
	UnrealizedPnl float64  `json:"unrealized_pnl"`

	// HealthPct заполняется только для isolated позиций с полным
	// набором цен; для cross позиций health считается на уровне аккаунта
	HealthPct *float64 `json:"health_pct,omitempty"`
}

// AccountReport - полный отчет по аккаунту на момент генерации
type AccountReport struct {
	Index       int       `json:"index"`
	Address     string    `json:"address"`
	GeneratedAt time.Time `json:"generated_at"`

	AccountValue          float64 `json:"account_value"`
	MaintenanceMarginUsed float64 `json:"maintenance_margin_used"`
	UnrealizedPnl         float64 `json:"unrealized_pnl"`

	HealthPct   float64         `json:"health_pct"`
	HealthKnown bool            `json:"health_known"`
	Tier        models.RiskTier `json:"tier"`

	CrossLeverage      float64 `json:"cross_leverage"`
	CrossLeverageKnown bool    `json:"cross_leverage_known"`

	Cross    []PositionReport `json:"cross_positions"`
	Isolated []PositionReport `json:"isolated_positions"`
}

// BuildReport собирает отчет из снимка аккаунта и его позиций.
//
// Параметры:
//   - snapshot: снимок аккаунта
//   - positions: нормализованные позиции (классифицируются внутри)
//   - table: таблица тиров активной политики
func BuildReport(snapshot *models.AccountSnapshot, positions []models.PositionRecord, table TierTable) *AccountReport {
	health, healthOK := HealthAccountPct(
		snapshot.AccountValue,
		snapshot.MaintenanceMarginUsed,
		snapshot.UnrealizedPnl,
	)
	leverage, leverageOK := snapshot.CrossLeverage()
	cross, isolated := ClassifyPositions(snapshot, positions)

	report := &AccountReport{
		Index:                 snapshot.Index,
		Address:               snapshot.Address,
		GeneratedAt:           time.Now().UTC(),
		AccountValue:          snapshot.AccountValue,
		MaintenanceMarginUsed: snapshot.MaintenanceMarginUsed,
		UnrealizedPnl:         snapshot.UnrealizedPnl,
		HealthPct:             health,
		HealthKnown:           healthOK,
		Tier:                  table.TierFor(health, healthOK),
		CrossLeverage:         leverage,
		CrossLeverageKnown:    leverageOK,
		Cross:                 make([]PositionReport, 0, len(cross)),
		Isolated:              make([]PositionReport, 0, len(isolated)),
	}

	for _, pos := range cross {
		report.Cross = append(report.Cross, buildPositionReport(&pos, false))
	}
	for _, pos := range isolated {
		report.Isolated = append(report.Isolated, buildPositionReport(&pos, true))
	}

	return report
}

// buildPositionReport строит отчет по одной позиции
func buildPositionReport(pos *models.PositionRecord, withHealth bool) PositionReport {
	pr := PositionReport{
		Coin:          pos.Coin,
		Side:          pos.Side,
		Size:          pos.Size(),
		EntryPrice:    pos.EntryPrice,
		MarkPrice:     pos.MarkPrice,
		LiqPrice:      pos.LiqPrice,
		NotionalUSD:   pos.Notional(),
		UnrealizedPnl: pos.UnrealizedPnl,
	}

	if withHealth && pos.MarkPrice != nil && pos.LiqPrice != nil {
		if health, ok := HealthPositionPct(*pos.MarkPrice, *pos.LiqPrice, pos.EntryPrice, pos.Side); ok {
			pr.HealthPct = &health
		}
	}

	return pr
}

// RenderText форматирует отчет в текст для оператора (Telegram / консоль)
func (r *AccountReport) RenderText() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Аккаунт #%d %s\n", r.Index, shortAddress(r.Address))
	fmt.Fprintf(&b, "Equity: $%.2f | Maintenance: $%.2f | PNL: %+.2f\n",
		r.AccountValue, r.MaintenanceMarginUsed, r.UnrealizedPnl)

	if r.HealthKnown {
		fmt.Fprintf(&b, "Health: %.2f%% (tier %d)\n", r.HealthPct, r.Tier)
	} else {
		b.WriteString("Health: н/д\n")
	}
	if r.CrossLeverageKnown {
		fmt.Fprintf(&b, "Cross плечо: %.2fx\n", r.CrossLeverage)
	}

	if len(r.Cross) > 0 {
		fmt.Fprintf(&b, "\nCross позиции (%d):\n", len(r.Cross))
		for _, pos := range r.Cross {
			b.WriteString(renderPositionLine(&pos))
		}
	}
	if len(r.Isolated) > 0 {
		fmt.Fprintf(&b, "\nIsolated позиции (%d):\n", len(r.Isolated))
		for _, pos := range r.Isolated {
			b.WriteString(renderPositionLine(&pos))
		}
	}
	if len(r.Cross) == 0 && len(r.Isolated) == 0 {
		b.WriteString("\nОткрытых позиций нет\n")
	}

	return b.String()
}

// renderPositionLine форматирует одну строку позиции
func renderPositionLine(pos *PositionReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "  %s %s %.4g @ %.6g", pos.Coin, pos.Side, pos.Size, pos.EntryPrice)
	if pos.MarkPrice != nil {
		fmt.Fprintf(&b, " | mark %.6g", *pos.MarkPrice)
	}
	if pos.LiqPrice != nil {
		fmt.Fprintf(&b, " | liq %.6g", *pos.LiqPrice)
	}
	if pos.HealthPct != nil {
		fmt.Fprintf(&b, " | health %.1f%%", *pos.HealthPct)
	}
	fmt.Fprintf(&b, " | pnl %+.2f\n", pos.UnrealizedPnl)

	return b.String()
}

// shortAddress сокращает адрес для читаемости: 0x1234...abcd
func shortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}
