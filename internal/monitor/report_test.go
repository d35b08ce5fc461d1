package monitor

import (
	"strings"
	"testing"

	"liqwatch/internal/models"
)

// ============================================================
// Report Tests
// ============================================================

func floatPtr(v float64) *float64 { return &v }

func TestBuildReport(t *testing.T) {
	snapshot := &models.AccountSnapshot{
		Index:                 1,
		Address:               "0x1234567890abcdef1234567890abcdef12345678",
		AccountValue:          1000,
		MaintenanceMarginUsed: 100,
		UnrealizedPnl:         -200,
		TotalNotional:         3000,
	}
	positions := []models.PositionRecord{
		{
			Coin:       "BTC",
			Side:       models.SideLong,
			SignedSize: 0.5,
			EntryPrice: 100,
			MarkPrice:  floatPtr(85),
			LiqPrice:   floatPtr(80),
			MarginMode: "isolated",
		},
		{
			Coin:       "ETH",
			Side:       models.SideShort,
			SignedSize: -2,
			EntryPrice: 50,
			MarginMode: "cross",
		},
	}

	report := BuildReport(snapshot, positions, FourTierTable)

	// health = (900/1200)*100 = 75 => tier 0
	if !report.HealthKnown || report.HealthPct != 75 {
		t.Errorf("health = (%v, %v), want (75, true)", report.HealthPct, report.HealthKnown)
	}
	if report.Tier != models.TierNone {
		t.Errorf("tier = %d, want 0", report.Tier)
	}
	if !report.CrossLeverageKnown || report.CrossLeverage != 3 {
		t.Errorf("leverage = (%v, %v), want (3, true)", report.CrossLeverage, report.CrossLeverageKnown)
	}

	if len(report.Cross) != 1 || len(report.Isolated) != 1 {
		t.Fatalf("got %d cross / %d isolated, want 1/1", len(report.Cross), len(report.Isolated))
	}

	// Health считается только для isolated позиций с полным набором цен
	iso := report.Isolated[0]
	if iso.HealthPct == nil {
		t.Fatal("isolated position has no health")
	}
	if *iso.HealthPct != 25 {
		t.Errorf("isolated health = %v, want 25", *iso.HealthPct)
	}
	if report.Cross[0].HealthPct != nil {
		t.Error("cross position has per-position health")
	}
}

func TestRenderText(t *testing.T) {
	snapshot := &models.AccountSnapshot{
		Index:                 0,
		Address:               "0x1234567890abcdef1234567890abcdef12345678",
		AccountValue:          1000,
		MaintenanceMarginUsed: 950,
	}
	report := BuildReport(snapshot, nil, FourTierTable)

	text := report.RenderText()
	if !strings.Contains(text, "0x1234...5678") {
		t.Errorf("text missing shortened address:\n%s", text)
	}
	if !strings.Contains(text, "tier 2") {
		// health = 5 => tier 2
		t.Errorf("text missing tier:\n%s", text)
	}
	if !strings.Contains(text, "Открытых позиций нет") {
		t.Errorf("text missing empty positions marker:\n%s", text)
	}
}

func TestShortAddress(t *testing.T) {
	if got := shortAddress("0xdead"); got != "0xdead" {
		t.Errorf("short input changed: %q", got)
	}
	if got := shortAddress("0x1234567890abcdef1234567890abcdef12345678"); got != "0x1234...5678" {
		t.Errorf("shortAddress = %q", got)
	}
}
