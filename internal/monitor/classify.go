package monitor

import (
	"strings"

	"liqwatch/internal/models"
)

// classify.go - разделение позиций на cross и isolated
//
// Биржа не гарантирует единого канонического поля режима маржи: разные
// формы позиций несут разные сигналы. Слой нормализации
// (internal/hyperliquid/normalize.go) сводит альтернативные имена полей
// к двум сигналам на записи (CrossFlag, MarginMode), а каскад
// приоритетов применяется здесь.

// ClassifyPositions разделяет позиции аккаунта на cross и isolated.
//
// Каскад (первое совпадение выигрывает):
//  1. Явный булев флаг CrossFlag (нормализация уже выбрала его из
//     прямого поля, альтернативного имени или вложенного risk-объекта
//     в фиксированном порядке приоритета)
//  2. Строковый MarginMode == "cross"/"isolated" (без учёта регистра)
//  3. Сигнал уровня аккаунта: ненулевая cross maintenance margin =>
//     позиция cross, иначе isolated
//
// Порядок входа сохраняется внутри каждой группы. Записи без символа
// или с ничтожным размером сюда не доходят - их отбрасывает нормализация.
//
// Параметры:
//   - snapshot: снимок аккаунта (для сигнала уровня аккаунта)
//   - positions: нормализованные записи позиций
//
// Возвращает: (cross, isolated) - две упорядоченные группы
func ClassifyPositions(snapshot *models.AccountSnapshot, positions []models.PositionRecord) (cross, isolated []models.PositionRecord) {
	accountHasCross := snapshot != nil && snapshot.CrossMaintenanceMarginUsed > 0

	for _, pos := range positions {
		if isCrossPosition(&pos, accountHasCross) {
			cross = append(cross, pos)
		} else {
			isolated = append(isolated, pos)
		}
	}

	return cross, isolated
}

// isCrossPosition применяет каскад сигналов к одной позиции
func isCrossPosition(pos *models.PositionRecord, accountHasCross bool) bool {
	// 1. Явный булев флаг от биржи
	if pos.CrossFlag != nil {
		return *pos.CrossFlag
	}

	// 2. Строковый режим маржи
	switch strings.ToLower(strings.TrimSpace(pos.MarginMode)) {
	case models.MarginModeCross:
		return true
	case models.MarginModeIsolated:
		return false
	}

	// 3. Fallback на сигнал уровня аккаунта
	return accountHasCross
}
