package utils

import (
	"math"
)

// math.go - математические утилиты для расчёта рисков
//
// Назначение:
// Вспомогательные математические функции для оценки health аккаунтов.
// Все функции являются чистыми (pure functions) без побочных эффектов.
//
// Функции:
// - Clamp: ограничение значения в диапазон [min, max]
// - IsFinite: проверка что число конечно (не NaN и не ±Inf)
// - AllFinite: проверка группы чисел
// - SafeDiv: деление с защитой от нулевого знаменателя

// Clamp ограничивает значение диапазоном [min, max].
//
// Используется для приведения health к процентам 0-100 независимо от
// численных экстремумов в сырых данных биржи.
//
// Параметры:
//   - value: исходное значение
//   - min: нижняя граница
//   - max: верхняя граница
//
// Примеры:
//   - Clamp(120, 0, 100) = 100
//   - Clamp(-5, 0, 100) = 0
//   - Clamp(42, 0, 100) = 42
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// IsFinite проверяет что значение конечно.
//
// Возвращает false для NaN, +Inf и -Inf. Биржевые payload'ы приходят
// со строковыми числами, и после парсинга мусора легко получить NaN -
// такие значения должны давать "health неизвестен", а не панику.
func IsFinite(value float64) bool {
	return !math.IsNaN(value) && !math.IsInf(value, 0)
}

// AllFinite проверяет что все переданные значения конечны
func AllFinite(values ...float64) bool {
	for _, v := range values {
		if !IsFinite(v) {
			return false
		}
	}
	return true
}

// SafeDiv выполняет деление с защитой от нулевого/отрицательного знаменателя.
//
// Параметры:
//   - numerator: числитель
//   - denominator: знаменатель
//
// Возвращает:
//   - (результат, true) если denominator > 0 и оба значения конечны
//   - (0, false) иначе
func SafeDiv(numerator, denominator float64) (float64, bool) {
	if denominator <= 0 || !AllFinite(numerator, denominator) {
		return 0, false
	}
	return numerator / denominator, true
}
