package hyperliquid

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// types.go - сырые формы ответов info API
//
// API отдает числа строками ("1234.5"), а старые снапшоты и числами.
// FlexFloat принимает обе формы, вся остальная защита от разнобоя
// полей живет в normalize.go.

// FlexFloat - float64, декодируемый и из числа, и из строки
type FlexFloat float64

// UnmarshalJSON принимает 123.4, "123.4", null и пустую строку
func (f *FlexFloat) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*f = 0
		return nil
	}
	s = strings.Trim(s, `"`)

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q: %w", s, err)
	}
	*f = FlexFloat(value)
	return nil
}

// rawClearinghouse - ответ {"type":"clearinghouseState"}
type rawClearinghouse struct {
	MarginSummary              rawMarginSummary   `json:"marginSummary"`
	CrossMarginSummary         rawMarginSummary   `json:"crossMarginSummary"`
	MaintenanceMarginUsed      *FlexFloat         `json:"maintenanceMarginUsed"`
	CrossMaintenanceMarginUsed FlexFloat          `json:"crossMaintenanceMarginUsed"`
	Withdrawable               FlexFloat          `json:"withdrawable"`
	AssetPositions             []rawAssetPosition `json:"assetPositions"`
	Time                       int64              `json:"time"`
}

// rawMarginSummary - сводка маржи (кросс или общая)
type rawMarginSummary struct {
	AccountValue    FlexFloat `json:"accountValue"`
	TotalNtlPos     FlexFloat `json:"totalNtlPos"`
	TotalRawUsd     FlexFloat `json:"totalRawUsd"`
	TotalMarginUsed FlexFloat `json:"totalMarginUsed"`
}

// rawAssetPosition - обертка позиции в assetPositions
type rawAssetPosition struct {
	Type     string      `json:"type"`
	Position rawPosition `json:"position"`
}

// rawPosition - позиция как её отдает API.
//
// Сигнал cross/isolated встречается в четырех местах в зависимости от
// формы записи: прямой флаг, альтернативное имя, вложенный risk-объект,
// строковый тип leverage. Каскад приоритетов применяет normalize.go.
type rawPosition struct {
	Coin          string       `json:"coin"`
	Szi           FlexFloat    `json:"szi"` // размер со знаком
	EntryPx       *FlexFloat   `json:"entryPx"`
	LiquidationPx *FlexFloat   `json:"liquidationPx"`
	MarkPx        *FlexFloat   `json:"markPx"`
	PositionValue FlexFloat    `json:"positionValue"`
	UnrealizedPnl FlexFloat    `json:"unrealizedPnl"`
	MarginUsed    FlexFloat    `json:"marginUsed"`
	Cross         *bool        `json:"cross"`   // прямой булев флаг
	Crossed       *bool        `json:"crossed"` // альтернативное имя флага
	MarginMode    string       `json:"marginMode"`
	Leverage      *rawLeverage `json:"leverage"`
	Risk          *rawRisk     `json:"risk"`
}

// rawLeverage - вложенный объект плеча
type rawLeverage struct {
	Type  string    `json:"type"` // "cross" / "isolated"
	Value FlexFloat `json:"value"`
}

// rawRisk - вложенный risk-объект некоторых форм позиций
type rawRisk struct {
	Cross *bool `json:"cross"`
}
