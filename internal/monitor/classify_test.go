package monitor

import (
	"testing"

	"liqwatch/internal/models"
)

// ============================================================
// Position Classifier Tests
// ============================================================

func boolPtr(v bool) *bool { return &v }

func TestClassifyPositionsCascade(t *testing.T) {
	crossAccount := &models.AccountSnapshot{
		Address:                    "0xabc",
		CrossMaintenanceMarginUsed: 120,
	}
	isolatedAccount := &models.AccountSnapshot{
		Address:                    "0xabc",
		CrossMaintenanceMarginUsed: 0,
	}

	tests := []struct {
		name         string
		snapshot     *models.AccountSnapshot
		position     models.PositionRecord
		expectedSide string // "cross" или "isolated"
	}{
		{
			name:         "explicit cross flag wins",
			snapshot:     isolatedAccount,
			position:     models.PositionRecord{Coin: "BTC", CrossFlag: boolPtr(true)},
			expectedSide: "cross",
		},
		{
			name:     "explicit isolated flag overrides account cross signal",
			snapshot: crossAccount,
			position: models.PositionRecord{
				Coin:       "BTC",
				CrossFlag:  boolPtr(false),
				MarginMode: models.MarginModeCross, // флаг приоритетнее строки
			},
			expectedSide: "isolated",
		},
		{
			name:         "margin mode string cross",
			snapshot:     isolatedAccount,
			position:     models.PositionRecord{Coin: "ETH", MarginMode: "cross"},
			expectedSide: "cross",
		},
		{
			name:         "margin mode string isolated overrides account cross signal",
			snapshot:     crossAccount,
			position:     models.PositionRecord{Coin: "ETH", MarginMode: "isolated"},
			expectedSide: "isolated",
		},
		{
			name:         "margin mode is case insensitive",
			snapshot:     isolatedAccount,
			position:     models.PositionRecord{Coin: "ETH", MarginMode: "  CROSS "},
			expectedSide: "cross",
		},
		{
			name:         "unrecognized margin mode falls through to account signal",
			snapshot:     crossAccount,
			position:     models.PositionRecord{Coin: "SOL", MarginMode: "portfolio"},
			expectedSide: "cross",
		},
		{
			name:         "no signals and account has cross margin",
			snapshot:     crossAccount,
			position:     models.PositionRecord{Coin: "SOL"},
			expectedSide: "cross",
		},
		{
			name:         "no signals and account has no cross margin",
			snapshot:     isolatedAccount,
			position:     models.PositionRecord{Coin: "SOL"},
			expectedSide: "isolated",
		},
		{
			name:         "nil snapshot defaults to isolated",
			snapshot:     nil,
			position:     models.PositionRecord{Coin: "SOL"},
			expectedSide: "isolated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cross, isolated := ClassifyPositions(tt.snapshot, []models.PositionRecord{tt.position})

			switch tt.expectedSide {
			case "cross":
				if len(cross) != 1 || len(isolated) != 0 {
					t.Errorf("got %d cross / %d isolated, want 1/0", len(cross), len(isolated))
				}
			case "isolated":
				if len(cross) != 0 || len(isolated) != 1 {
					t.Errorf("got %d cross / %d isolated, want 0/1", len(cross), len(isolated))
				}
			}
		})
	}
}

// Порядок входа сохраняется внутри каждой группы
func TestClassifyPositionsPreservesOrder(t *testing.T) {
	snapshot := &models.AccountSnapshot{CrossMaintenanceMarginUsed: 100}

	positions := []models.PositionRecord{
		{Coin: "BTC", CrossFlag: boolPtr(true)},
		{Coin: "ETH", CrossFlag: boolPtr(false)},
		{Coin: "SOL", CrossFlag: boolPtr(true)},
		{Coin: "DOGE", MarginMode: "isolated"},
		{Coin: "AVAX"}, // fallback: account cross signal
	}

	cross, isolated := ClassifyPositions(snapshot, positions)

	wantCross := []string{"BTC", "SOL", "AVAX"}
	wantIsolated := []string{"ETH", "DOGE"}

	if len(cross) != len(wantCross) {
		t.Fatalf("got %d cross positions, want %d", len(cross), len(wantCross))
	}
	for i, coin := range wantCross {
		if cross[i].Coin != coin {
			t.Errorf("cross[%d] = %s, want %s", i, cross[i].Coin, coin)
		}
	}

	if len(isolated) != len(wantIsolated) {
		t.Fatalf("got %d isolated positions, want %d", len(isolated), len(wantIsolated))
	}
	for i, coin := range wantIsolated {
		if isolated[i].Coin != coin {
			t.Errorf("isolated[%d] = %s, want %s", i, isolated[i].Coin, coin)
		}
	}
}

func TestClassifyPositionsEmpty(t *testing.T) {
	cross, isolated := ClassifyPositions(&models.AccountSnapshot{}, nil)
	if len(cross) != 0 || len(isolated) != 0 {
		t.Errorf("empty input gave %d cross / %d isolated", len(cross), len(isolated))
	}
}
