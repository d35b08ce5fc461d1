package utils

import (
	"time"
)

// time.go - утилиты для работы с периодами гейтинга
//
// Назначение:
// Вспомогательные функции для period-гейта алертов: ключ периода
// (календарный день в UTC) и TTL записей состояния.
//
// Функции:
// - DayKey: ключ текущего UTC-дня для state store
// - DayKeyFrom: ключ UTC-дня для указанного времени
// - GetDayStartFrom: начало дня (00:00:00 UTC)
// - PeriodTTL: TTL записи состояния с запасом на clock skew

// PeriodSlack - запас TTL сверх длины периода.
//
// Запись состояния period-гейта должна пережить свой календарный день
// даже при расхождении часов между инстансами и стором. TTL никогда
// не короче самого периода.
const PeriodSlack = 2 * time.Hour

// DayKey возвращает ключ текущего UTC-дня в формате YYYY-MM-DD
//
// Пример:
//
//	// Сейчас: 2026-08-27 14:30:45 UTC
//	key := DayKey()
//	// key: "2026-08-27"
func DayKey() string {
	return DayKeyFrom(time.Now().UTC())
}

// DayKeyFrom возвращает ключ UTC-дня для указанного времени
//
// Параметры:
//   - t: исходное время (конвертируется в UTC)
//
// Возвращает: строку YYYY-MM-DD
func DayKeyFrom(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// GetDayStartFrom возвращает начало дня для указанного времени в UTC
func GetDayStartFrom(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PeriodTTL возвращает TTL записи состояния period-гейта.
//
// Инвариант: TTL >= длины периода (24h). Слишком короткий TTL привёл бы
// к повторным алертам внутри дня; слишком длинный лишь задержит
// самовосстановление после пропущенного периода.
func PeriodTTL() time.Duration {
	return 24*time.Hour + PeriodSlack
}

// FormatDuration форматирует продолжительность в человекочитаемый формат
//
// Примеры:
//   - "45s"
//   - "5m30s"
//   - "2h15m"
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}

	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if hours > 0 {
		if minutes > 0 {
			return (time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute).String()
		}
		return (time.Duration(hours) * time.Hour).String()
	}

	if minutes > 0 {
		if seconds > 0 {
			return (time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second).String()
		}
		return (time.Duration(minutes) * time.Minute).String()
	}

	return (time.Duration(seconds) * time.Second).String()
}
