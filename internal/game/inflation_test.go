package game

import "testing"

func TestNextPriceLevelStaysBounded(t *testing.T) {
	rules := DefaultRules()
	rng := NewStreams(21).Market(0)

	level := rules.StartInflation
	for i := 0; i < 500; i++ {
		next, delta := nextPriceLevel(rules, level, rng)
		if next < rules.InflationFloor || next > rules.InflationCap {
			t.Fatalf("step %d: level %v escaped [%v, %v]", i, next, rules.InflationFloor, rules.InflationCap)
		}
		if got := next - level; got != delta {
			t.Fatalf("step %d: delta %v does not match realized move %v", i, delta, got)
		}
		level = next
	}
}

func TestNextPriceLevelZeroStep(t *testing.T) {
	rules := DefaultRules()
	rules.InflationStepMin = 0
	rules.InflationStepMax = 0
	rng := NewStreams(22).Market(0)

	next, delta := nextPriceLevel(rules, 0.10, rng)
	if next != 0.10 || delta != 0 {
		t.Fatalf("zero step moved the level: next=%v delta=%v", next, delta)
	}
}

func TestEscalateFixedCost(t *testing.T) {
	tests := []struct {
		name  string
		cost  int64
		delta float64
		want  int64
	}{
		{"rise", LiraToMicros(45_000), 0.01, LiraToMicros(45_450)},
		{"fall", LiraToMicros(45_000), -0.01, LiraToMicros(44_550)},
		{"flat", LiraToMicros(45_000), 0, LiraToMicros(45_000)},
		{"zero cost", 0, 0.05, 0},
	}
	for _, tc := range tests {
		if got := escalateFixedCost(tc.cost, tc.delta); got != tc.want {
			t.Fatalf("%s: escalateFixedCost(%d, %v) = %d, want %d", tc.name, tc.cost, tc.delta, got, tc.want)
		}
	}
}
