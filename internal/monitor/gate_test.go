package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"liqwatch/internal/models"
	"liqwatch/internal/store"
)

// ============================================================
// Alert Gate Tests
// ============================================================

// failingStore - стор, у которого отказали обе операции
type failingStore struct{}

func (failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, store.ErrUnavailable
}

func (failingStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return store.ErrUnavailable
}

func emitCounter(calls *int) func() error {
	return func() error {
		*calls++
		return nil
	}
}

// ============ Period-гейт ============

func TestPeriodGateOnePerTierPerDay(t *testing.T) {
	g := NewPeriodGate(store.NewMemoryStore(), nil)
	current := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return current }
	ctx := context.Background()

	var emitted int
	emit := emitCounter(&emitted)

	// Последовательность tier2, tier2, tier3 в одном периоде => 2 алерта
	sequence := []struct {
		tier models.RiskTier
		want bool
	}{
		{2, true},  // первый tier2 - алерт
		{2, false}, // повтор tier2 - подавлен
		{3, true},  // эскалация в новый тир - алерт
		{3, false}, // повтор tier3 - подавлен
		{2, false}, // возврат в уже алерченный tier2 - подавлен
	}

	for i, step := range sequence {
		got, err := g.Evaluate(ctx, "0xabc", step.tier, emit)
		if err != nil {
			t.Fatalf("step %d: Evaluate returned error: %v", i, err)
		}
		if got != step.want {
			t.Errorf("step %d (tier %d): emitted = %v, want %v", i, step.tier, got, step.want)
		}
	}

	if emitted != 2 {
		t.Errorf("emit called %d times, want 2", emitted)
	}
}

func TestPeriodGateResetsAtDayBoundary(t *testing.T) {
	g := NewPeriodGate(store.NewMemoryStore(), nil)
	current := time.Date(2026, 8, 27, 23, 50, 0, 0, time.UTC)
	g.now = func() time.Time { return current }
	ctx := context.Background()

	var emitted int
	emit := emitCounter(&emitted)

	if got, _ := g.Evaluate(ctx, "0xabc", 2, emit); !got {
		t.Fatal("first alert of the day suppressed")
	}
	if got, _ := g.Evaluate(ctx, "0xabc", 2, emit); got {
		t.Fatal("repeat within the same day not suppressed")
	}

	// Переход через полночь UTC: тот же тир снова алертится
	current = current.Add(20 * time.Minute)
	if got, _ := g.Evaluate(ctx, "0xabc", 2, emit); !got {
		t.Fatal("same tier suppressed after day boundary")
	}

	if emitted != 2 {
		t.Errorf("emit called %d times, want 2", emitted)
	}
}

func TestPeriodGateTierZeroNeverAlerts(t *testing.T) {
	g := NewPeriodGate(store.NewMemoryStore(), nil)

	got, err := g.Evaluate(context.Background(), "0xabc", models.TierNone, func() error {
		t.Fatal("emit called for tier 0")
		return nil
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if got {
		t.Error("tier 0 reported as emitted")
	}
}

func TestPeriodGateAccountsAreIndependent(t *testing.T) {
	g := NewPeriodGate(store.NewMemoryStore(), nil)
	ctx := context.Background()

	var emitted int
	emit := emitCounter(&emitted)

	g.Evaluate(ctx, "0xaaa", 1, emit)
	if got, _ := g.Evaluate(ctx, "0xbbb", 1, emit); !got {
		t.Error("alert for a different account suppressed")
	}
	if emitted != 2 {
		t.Errorf("emit called %d times, want 2", emitted)
	}
}

func TestPeriodGateEmitFailureKeepsStateClean(t *testing.T) {
	g := NewPeriodGate(store.NewMemoryStore(), nil)
	ctx := context.Background()

	// Первая отправка падает: состояние не должно пометиться
	_, err := g.Evaluate(ctx, "0xabc", 2, func() error {
		return errors.New("telegram down")
	})
	if err == nil {
		t.Fatal("Evaluate swallowed emit error")
	}

	// Следующий цикл обязан попробовать снова
	var emitted int
	got, err := g.Evaluate(ctx, "0xabc", 2, emitCounter(&emitted))
	if err != nil {
		t.Fatalf("retry Evaluate returned error: %v", err)
	}
	if !got || emitted != 1 {
		t.Errorf("retry after failed emit suppressed (emitted=%v, calls=%d)", got, emitted)
	}
}

func TestPeriodGateFailsOpenOnStoreErrors(t *testing.T) {
	g := NewPeriodGate(failingStore{}, nil)
	ctx := context.Background()

	// Стор недоступен: лучше дубликат, чем пропущенный алерт
	var emitted int
	emit := emitCounter(&emitted)

	for i := 0; i < 3; i++ {
		got, err := g.Evaluate(ctx, "0xabc", 3, emit)
		if err != nil {
			t.Fatalf("cycle %d: Evaluate returned error: %v", i, err)
		}
		if !got {
			t.Fatalf("cycle %d: alert suppressed while store is down", i)
		}
	}
	if emitted != 3 {
		t.Errorf("emit called %d times, want 3", emitted)
	}
}

func TestPeriodGateFailsOpenOnCorruptState(t *testing.T) {
	mem := store.NewMemoryStore()
	g := NewPeriodGate(mem, nil)
	current := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return current }
	ctx := context.Background()

	// Мусор под ключом состояния
	key := g.stateKey("0xabc", current)
	mem.Put(ctx, key, []byte("{not json"), time.Hour)

	var emitted int
	got, err := g.Evaluate(ctx, "0xabc", 1, emitCounter(&emitted))
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if !got || emitted != 1 {
		t.Error("corrupt state did not fail open")
	}
}

// ============ Cooldown-гейт ============

func TestCooldownGateSameTierThrottled(t *testing.T) {
	g := NewCooldownGate(store.NewMemoryStore(), 30*time.Minute, nil)
	current := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return current }
	ctx := context.Background()

	var emitted int
	emit := emitCounter(&emitted)

	// t0: первый tier1 - алерт
	if got, _ := g.Evaluate(ctx, "0xabc", 1, emit); !got {
		t.Fatal("first alert suppressed")
	}

	// +5 минут: тот же тир внутри cooldown - подавлен
	current = current.Add(5 * time.Minute)
	if got, _ := g.Evaluate(ctx, "0xabc", 1, emit); got {
		t.Fatal("same tier inside cooldown not suppressed")
	}

	// +31 минута от t0: cooldown истек - алерт
	current = current.Add(26 * time.Minute)
	if got, _ := g.Evaluate(ctx, "0xabc", 1, emit); !got {
		t.Fatal("same tier after cooldown suppressed")
	}

	if emitted != 2 {
		t.Errorf("emit called %d times, want 2", emitted)
	}
}

func TestCooldownGateEscalationNeverDelayed(t *testing.T) {
	g := NewCooldownGate(store.NewMemoryStore(), 30*time.Minute, nil)
	current := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return current }
	ctx := context.Background()

	var emitted int
	emit := emitCounter(&emitted)

	if got, _ := g.Evaluate(ctx, "0xabc", 1, emit); !got {
		t.Fatal("first tier1 alert suppressed")
	}

	// Спустя минуту здоровье резко упало: эскалация алертит сразу,
	// cooldown её не задерживает
	current = current.Add(time.Minute)
	if got, _ := g.Evaluate(ctx, "0xabc", 2, emit); !got {
		t.Fatal("escalation delayed by cooldown")
	}

	current = current.Add(time.Minute)
	if got, _ := g.Evaluate(ctx, "0xabc", 3, emit); !got {
		t.Fatal("second escalation delayed by cooldown")
	}

	if emitted != 3 {
		t.Errorf("emit called %d times, want 3", emitted)
	}
}

func TestCooldownGateImprovementSilent(t *testing.T) {
	g := NewCooldownGate(store.NewMemoryStore(), 30*time.Minute, nil)
	current := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return current }
	ctx := context.Background()

	var emitted int
	emit := emitCounter(&emitted)

	g.Evaluate(ctx, "0xabc", 2, emit)

	// Улучшение до tier1: lastTier опускается без алерта
	current = current.Add(time.Minute)
	if got, _ := g.Evaluate(ctx, "0xabc", 1, emit); got {
		t.Fatal("improvement emitted an alert")
	}

	// Повторное падение до tier2 - свежая эскалация относительно tier1
	current = current.Add(time.Minute)
	if got, _ := g.Evaluate(ctx, "0xabc", 2, emit); !got {
		t.Fatal("re-escalation after improvement suppressed")
	}

	if emitted != 2 {
		t.Errorf("emit called %d times, want 2", emitted)
	}
}

func TestCooldownGateBounceThroughZeroRealerts(t *testing.T) {
	g := NewCooldownGate(store.NewMemoryStore(), 30*time.Minute, nil)
	current := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return current }
	ctx := context.Background()

	var emitted int
	emit := emitCounter(&emitted)

	g.Evaluate(ctx, "0xabc", 1, emit)

	// Восстановление до tier0 внутри cooldown-окна
	current = current.Add(5 * time.Minute)
	if got, _ := g.Evaluate(ctx, "0xabc", 0, emit); got {
		t.Fatal("recovery to tier 0 emitted an alert")
	}

	// Новое падение до tier1 - это эскалация 0 -> 1, алертит сразу
	current = current.Add(5 * time.Minute)
	if got, _ := g.Evaluate(ctx, "0xabc", 1, emit); !got {
		t.Fatal("fresh drop after recovery suppressed")
	}

	if emitted != 2 {
		t.Errorf("emit called %d times, want 2", emitted)
	}
}

func TestCooldownGateTierZeroColdStartSilent(t *testing.T) {
	g := NewCooldownGate(store.NewMemoryStore(), 0, nil)

	got, err := g.Evaluate(context.Background(), "0xabc", models.TierNone, func() error {
		t.Fatal("emit called for tier 0")
		return nil
	})
	if err != nil {
		t.Fatalf("Evaluate returned error: %v", err)
	}
	if got {
		t.Error("tier 0 on cold start reported as emitted")
	}
}

func TestCooldownGateEmitFailureKeepsStateClean(t *testing.T) {
	g := NewCooldownGate(store.NewMemoryStore(), 30*time.Minute, nil)
	ctx := context.Background()

	_, err := g.Evaluate(ctx, "0xabc", 2, func() error {
		return errors.New("telegram down")
	})
	if err == nil {
		t.Fatal("Evaluate swallowed emit error")
	}

	// Эскалация 0 -> 2 должна повториться на следующем цикле
	var emitted int
	got, err := g.Evaluate(ctx, "0xabc", 2, emitCounter(&emitted))
	if err != nil {
		t.Fatalf("retry Evaluate returned error: %v", err)
	}
	if !got || emitted != 1 {
		t.Errorf("retry after failed emit suppressed (emitted=%v, calls=%d)", got, emitted)
	}
}

func TestCooldownGateFailsOpenOnStoreErrors(t *testing.T) {
	g := NewCooldownGate(failingStore{}, 30*time.Minute, nil)
	ctx := context.Background()

	// Без состояния каждое наблюдение tier>0 выглядит как эскалация 0 -> N
	var emitted int
	emit := emitCounter(&emitted)

	for i := 0; i < 3; i++ {
		got, err := g.Evaluate(ctx, "0xabc", 1, emit)
		if err != nil {
			t.Fatalf("cycle %d: Evaluate returned error: %v", i, err)
		}
		if !got {
			t.Fatalf("cycle %d: alert suppressed while store is down", i)
		}
	}
	if emitted != 3 {
		t.Errorf("emit called %d times, want 3", emitted)
	}
}

func TestCooldownGateDefaultCooldown(t *testing.T) {
	g := NewCooldownGate(store.NewMemoryStore(), 0, nil)
	if g.cooldown != 30*time.Minute {
		t.Errorf("default cooldown = %v, want 30m", g.cooldown)
	}
}

func TestGatePolicyNamesAndTables(t *testing.T) {
	p := NewPeriodGate(store.NewMemoryStore(), nil)
	c := NewCooldownGate(store.NewMemoryStore(), 0, nil)

	if p.Name() != "period" {
		t.Errorf("period gate Name() = %q", p.Name())
	}
	if c.Name() != "cooldown" {
		t.Errorf("cooldown gate Name() = %q", c.Name())
	}
	if p.Table().MaxTier() != 4 {
		t.Errorf("period gate table max tier = %d, want 4", p.Table().MaxTier())
	}
	if c.Table().MaxTier() != 3 {
		t.Errorf("cooldown gate table max tier = %d, want 3", c.Table().MaxTier())
	}
}
