package monitor

import (
	"liqwatch/internal/models"
	"liqwatch/pkg/utils"
)

// health.go - расчёт liquidation health
//
// Назначение:
// Чистые функции, превращающие числовые поля аккаунта/позиции в
// нормализованный health процент 0-100, где 0 = на грани ликвидации,
// 100 = максимальный запас прочности.
//
// Обе функции тотальны: любой вход даёт либо значение, либо ok=false
// ("health неизвестен"), паники исключены. Неизвестный health дальше
// по конвейеру превращается в tier 0 (молчание) - система консервативна
// и предпочитает не алертить по мусорным данным.

// HealthAccountPct возвращает health кросс-портфеля аккаунта.
//
// Формула:
//
//	denom  = balance - pnl                       (PNL-скорректированная база equity)
//	health = clamp((balance - maintenance) / denom * 100, 0, 100)
//
// Нормировка на PNL-скорректированную базу делает score сравнимым между
// аккаунтами разного размера и плеча.
//
// Параметры:
//   - balance: equity аккаунта (accountValue), USD
//   - maintenance: используемая maintenance margin, USD
//   - pnl: нереализованный PNL со знаком, USD
//
// Возвращает:
//   - (health, true): процент 0-100
//   - (0, true): если denom <= 0 - аккаунт уже неположителен за вычетом
//     PNL, считаем полностью в зоне риска вместо деления на неположительное
//   - (0, false): любой неконечный вход (NaN/Inf) - оценить невозможно
//
// Пример:
//
//	HealthAccountPct(1000, 100, -200)
//	// denom = 1200, health = (900/1200)*100 = 75.00
func HealthAccountPct(balance, maintenance, pnl float64) (float64, bool) {
	if !utils.AllFinite(balance, maintenance, pnl) {
		return 0, false
	}

	denom := balance - pnl
	if denom <= 0 {
		// Уже на грани или за ней: health ровно 0, а не ошибка
		return 0, true
	}

	health := (balance - maintenance) / denom * 100
	return utils.Clamp(health, 0, 100), true
}

// HealthPositionPct возвращает health отдельной isolated позиции.
//
// Сырое расстояние цены до ликвидации масштабируется эффективным плечом
// позиции: сильно заплечёванная позиция с маленькой ценовой подушкой
// должна давать низкий health.
//
// Формулы:
//
//	long:  num = mark - liq,  lden = entry - liq
//	short: num = liq - mark,  lden = liq - entry
//	leverage = entry / lden
//	health   = clamp(100 * (num / entry) * leverage, 0, 100)
//
// Параметры:
//   - mark: текущая mark цена
//   - liq: цена ликвидации
//   - entry: цена входа
//   - side: models.SideLong или models.SideShort
//
// Возвращает:
//   - (health, true): процент 0-100
//   - (0, false): неконечный или неположительный вход, неизвестная
//     сторона, либо lden <= 0 - цена ликвидации на "неправильной"
//     стороне от входа означает несогласованную или уже пробитую
//     позицию, и вводящий в заблуждение score тут недопустим
func HealthPositionPct(mark, liq, entry float64, side string) (float64, bool) {
	if !utils.AllFinite(mark, liq, entry) || mark <= 0 || liq <= 0 || entry <= 0 {
		return 0, false
	}

	var num, lden float64
	switch side {
	case models.SideLong:
		num = mark - liq
		lden = entry - liq
	case models.SideShort:
		num = liq - mark
		lden = liq - entry
	default:
		return 0, false
	}

	if lden <= 0 {
		return 0, false
	}

	leverage := entry / lden
	health := 100 * (num / entry) * leverage
	return utils.Clamp(health, 0, 100), true
}
