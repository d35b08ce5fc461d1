package monitor

import (
	"liqwatch/internal/models"
	"liqwatch/pkg/utils"
)

// tier.go - классификация health в дискретные тиры риска
//
// Классификатор параметризован упорядоченной таблицей порогов, а не
// захардкожен: period- и cooldown-политики используют разные таблицы,
// но один и тот же код.

// TierThreshold - одна ступень таблицы: строгая верхняя граница health
// и тир, который она даёт
type TierThreshold struct {
	UpperBound float64         // health < UpperBound => Tier (строгое сравнение)
	Tier       models.RiskTier // тир ступени
}

// TierTable - упорядоченная таблица порогов, от мягкого к жёсткому.
//
// Инварианты таблицы (проверяются тестами, не рантаймом):
//   - UpperBound строго убывают
//   - Tier строго возрастают
type TierTable []TierThreshold

// FourTierTable - таблица для period-политики: {<50, <20, <5, =0}
var FourTierTable = TierTable{
	{UpperBound: 50, Tier: 1},
	{UpperBound: 20, Tier: 2},
	{UpperBound: 5, Tier: 3},
	{UpperBound: 0, Tier: 4}, // достигается только через health <= 0
}

// ThreeTierTable - таблица для cooldown-политики: {<10, <5, =0}
var ThreeTierTable = TierTable{
	{UpperBound: 10, Tier: 1},
	{UpperBound: 5, Tier: 2},
	{UpperBound: 0, Tier: 3},
}

// MaxTier возвращает самый глубокий тир таблицы
func (tbl TierTable) MaxTier() models.RiskTier {
	if len(tbl) == 0 {
		return models.TierNone
	}
	return tbl[len(tbl)-1].Tier
}

// TierFor отображает health в тир риска.
//
// Правила:
//   - health неизвестен (ok=false) или неконечен => tier 0 (оценить нельзя)
//   - health <= 0 => самый глубокий тир таблицы
//   - иначе первая ступень с health < UpperBound
//   - health >= самой мягкой границы => tier 0 (нет алерта)
//
// Свойство: TierFor монотонно невозрастающий по health -
// h1 <= h2 влечёт tier(h1) >= tier(h2).
func (tbl TierTable) TierFor(health float64, ok bool) models.RiskTier {
	if !ok || !utils.IsFinite(health) {
		return models.TierNone
	}

	if health <= 0 {
		return tbl.MaxTier()
	}

	// Таблица упорядочена от мягкой границы к жёсткой: идём с конца,
	// чтобы найти самую жёсткую ступень, под которую попадает health
	for i := len(tbl) - 1; i >= 0; i-- {
		if health < tbl[i].UpperBound {
			return tbl[i].Tier
		}
	}

	return models.TierNone
}
