package hyperliquid

import (
	"fmt"

	"liqwatch/internal/models"
)

// normalize.go - приведение сырого ответа биржи к типизированным моделям
//
// Единственное место, где живет защита от разнобоя полей API: "возьми
// поле A, иначе B, иначе C". Дальше по конвейеру (health, классификатор,
// гейт) данные уже чистые и однозначные.

// normalizeClearinghouse превращает сырой ответ в снимок аккаунта и
// список позиций.
//
// Правила:
//   - accountValue из marginSummary, иначе из crossMarginSummary
//   - maintenanceMarginUsed из прямого поля, иначе crossMaintenanceMarginUsed
//   - нереализованный PNL аккаунта - сумма PNL позиций (API не отдает
//     его одним полем)
//   - записи без символа или с |szi| < MinPositionSize отбрасываются
//     (закрытые позиции и остатки округления)
//   - сторона выводится из знака szi
func normalizeClearinghouse(raw *rawClearinghouse) (*models.AccountSnapshot, []models.PositionRecord, error) {
	if raw == nil {
		return nil, nil, fmt.Errorf("empty clearinghouse response")
	}

	snapshot := &models.AccountSnapshot{
		AccountValue:               float64(raw.MarginSummary.AccountValue),
		CrossMaintenanceMarginUsed: float64(raw.CrossMaintenanceMarginUsed),
		TotalNotional:              float64(raw.MarginSummary.TotalNtlPos),
		TotalMarginUsed:            float64(raw.MarginSummary.TotalMarginUsed),
	}
	if snapshot.AccountValue == 0 {
		snapshot.AccountValue = float64(raw.CrossMarginSummary.AccountValue)
	}
	if raw.MaintenanceMarginUsed != nil {
		snapshot.MaintenanceMarginUsed = float64(*raw.MaintenanceMarginUsed)
	} else {
		snapshot.MaintenanceMarginUsed = float64(raw.CrossMaintenanceMarginUsed)
	}

	positions := make([]models.PositionRecord, 0, len(raw.AssetPositions))
	for i := range raw.AssetPositions {
		pos, ok := normalizePosition(&raw.AssetPositions[i].Position)
		if !ok {
			continue
		}
		snapshot.UnrealizedPnl += pos.UnrealizedPnl
		positions = append(positions, pos)
	}

	return snapshot, positions, nil
}

// normalizePosition приводит одну запись позиции; ok=false - запись
// отбрасывается
func normalizePosition(raw *rawPosition) (models.PositionRecord, bool) {
	if raw.Coin == "" {
		return models.PositionRecord{}, false
	}

	size := float64(raw.Szi)
	if size < models.MinPositionSize && size > -models.MinPositionSize {
		return models.PositionRecord{}, false
	}

	pos := models.PositionRecord{
		Coin:          raw.Coin,
		SignedSize:    size,
		UnrealizedPnl: float64(raw.UnrealizedPnl),
	}

	if size > 0 {
		pos.Side = models.SideLong
	} else {
		pos.Side = models.SideShort
	}

	if raw.EntryPx != nil {
		pos.EntryPrice = float64(*raw.EntryPx)
	}
	if raw.LiquidationPx != nil && *raw.LiquidationPx > 0 {
		liq := float64(*raw.LiquidationPx)
		pos.LiqPrice = &liq
	}
	if raw.MarkPx != nil && *raw.MarkPx > 0 {
		mark := float64(*raw.MarkPx)
		pos.MarkPrice = &mark
	}
	if raw.Leverage != nil {
		pos.Leverage = float64(raw.Leverage.Value)
	}

	pos.CrossFlag, pos.MarginMode = classificationSignals(raw)

	return pos, true
}

// classificationSignals извлекает сигналы cross/isolated в фиксированном
// порядке приоритета: прямой флаг, альтернативное имя, вложенный
// risk-объект; строковый режим - из marginMode, иначе из leverage.type
func classificationSignals(raw *rawPosition) (*bool, string) {
	var flag *bool
	switch {
	case raw.Cross != nil:
		flag = raw.Cross
	case raw.Crossed != nil:
		flag = raw.Crossed
	case raw.Risk != nil && raw.Risk.Cross != nil:
		flag = raw.Risk.Cross
	}

	mode := raw.MarginMode
	if mode == "" && raw.Leverage != nil {
		mode = raw.Leverage.Type
	}

	return flag, mode
}
