package utils

import (
	"math"
	"testing"
)

// floatEquals сравнивает float64 с допуском
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// ============================================================
// Тесты Clamp
// ============================================================

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		min      float64
		max      float64
		expected float64
	}{
		// Базовые кейсы
		{"within range", 42, 0, 100, 42},
		{"at min", 0, 0, 100, 0},
		{"at max", 100, 0, 100, 100},

		// Выход за границы
		{"below min", -5, 0, 100, 0},
		{"above max", 120, 0, 100, 100},
		{"far above max", 1e12, 0, 100, 100},
		{"far below min", -1e12, 0, 100, 0},

		// Экстремумы
		{"positive infinity", math.Inf(1), 0, 100, 100},
		{"negative infinity", math.Inf(-1), 0, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Clamp(tt.value, tt.min, tt.max)
			if !floatEquals(result, tt.expected) {
				t.Errorf("Clamp(%v, %v, %v) = %v, want %v",
					tt.value, tt.min, tt.max, result, tt.expected)
			}
		})
	}
}

// ============================================================
// Тесты IsFinite / AllFinite
// ============================================================

func TestIsFinite(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected bool
	}{
		{"zero", 0, true},
		{"positive", 123.45, true},
		{"negative", -123.45, true},
		{"NaN", math.NaN(), false},
		{"positive infinity", math.Inf(1), false},
		{"negative infinity", math.Inf(-1), false},
		{"max float", math.MaxFloat64, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsFinite(tt.value); result != tt.expected {
				t.Errorf("IsFinite(%v) = %v, want %v", tt.value, result, tt.expected)
			}
		})
	}
}

func TestAllFinite(t *testing.T) {
	if !AllFinite(1, 2, 3) {
		t.Error("AllFinite(1, 2, 3) = false, want true")
	}
	if AllFinite(1, math.NaN(), 3) {
		t.Error("AllFinite with NaN = true, want false")
	}
	if AllFinite(math.Inf(1)) {
		t.Error("AllFinite(+Inf) = true, want false")
	}
	if !AllFinite() {
		t.Error("AllFinite() = false, want true (vacuous)")
	}
}

// ============================================================
// Тесты SafeDiv
// ============================================================

func TestSafeDiv(t *testing.T) {
	tests := []struct {
		name       string
		num        float64
		den        float64
		expected   float64
		expectedOK bool
	}{
		// Базовые кейсы
		{"simple division", 10, 2, 5, true},
		{"fractional", 1, 3, 1.0 / 3.0, true},

		// Защита знаменателя
		{"zero denominator", 10, 0, 0, false},
		{"negative denominator", 10, -2, 0, false},

		// Неконечные значения
		{"NaN numerator", math.NaN(), 2, 0, false},
		{"Inf denominator", 10, math.Inf(1), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := SafeDiv(tt.num, tt.den)
			if ok != tt.expectedOK {
				t.Fatalf("SafeDiv(%v, %v) ok = %v, want %v", tt.num, tt.den, ok, tt.expectedOK)
			}
			if ok && !floatEquals(result, tt.expected) {
				t.Errorf("SafeDiv(%v, %v) = %v, want %v", tt.num, tt.den, result, tt.expected)
			}
		})
	}
}
