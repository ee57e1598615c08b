package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var t0 = time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

func TestCalculate_OceanToBook(t *testing.T) {
	b := Calculate(Input{
		StartTime:        t0,
		EndTime:          t0.Add(25 * time.Second),
		ChainLength:      4,
		MinSteps:         4,
		CreativityScores: []float64{0.8, 0.75, 0.9},
	})

	assert.Equal(t, 1000, b.BaseScore)
	assert.Equal(t, 1.5, b.SpeedBonus)
	assert.Equal(t, 1.5, b.EfficiencyMultiplier)
	assert.Equal(t, 0.0, b.ChainPenalty)
	// avg 0.81667 × 400 × 1.2 = 392 + 50 (one ≥ 0.9) + 75 (run of 3) = 517
	assert.Equal(t, 517, b.CreativityScore)
	// (1500 + 517) × 1.5 = 3025.5 → 3026
	assert.Equal(t, 3026, b.FinalScore)
	assert.Equal(t, 25.0, b.Breakdown.TimeElapsed)
	assert.Equal(t, 4, b.Breakdown.OptimalSteps)
	assert.Equal(t, 4, b.Breakdown.ActualSteps)
	assert.InDelta(t, 0.81667, b.Breakdown.AverageCreativity, 1e-4)
}

func TestSpeedBonus(t *testing.T) {
	tests := []struct {
		t    float64
		want float64
	}{
		{0, 1.5},
		{30, 1.5},
		{45, 1.25},
		{60, 1.0},
		{360, math.Exp(-0.15)},
		{1e6, 0.1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, SpeedBonus(tt.t), 1e-9, "t=%v", tt.t)
	}
}

func TestCreativityScore(t *testing.T) {
	got, avg := CreativityScore(nil)
	assert.Zero(t, got)
	assert.Zero(t, avg)

	// No bonus tier reached: 0.5 × 400 = 200.
	got, _ = CreativityScore([]float64{0.5, 0.5})
	assert.Equal(t, 200, got)

	// 2 of 4 high (50% < 70%): avg 0.6 × 400 = 240, run of 1 → +25, one exceptional → +50.
	got, _ = CreativityScore([]float64{0.9, 0.3, 0.7, 0.5})
	assert.Equal(t, 315, got)

	// Longest run counts consecutive highs only: runs of 2 and 1.
	got, _ = CreativityScore([]float64{0.7, 0.7, 0.2, 0.7})
	// avg 0.575 × 400 = 230 × 1.2 (3/4 ≥ 70%) = 276 + 50 = 326
	assert.Equal(t, 326, got)
}

func TestEfficiency(t *testing.T) {
	m, p := Efficiency(4, 4)
	assert.Equal(t, 1.5, m)
	assert.Equal(t, 0.0, p)

	m, p = Efficiency(3, 4)
	assert.Equal(t, 1.5, m)
	assert.Equal(t, 0.0, p)

	m, p = Efficiency(6, 4)
	assert.InDelta(t, 0.64, m, 1e-9)
	assert.InDelta(t, 2*math.Sqrt(2)*10, p, 1e-9)

	m, _ = Efficiency(40, 4)
	assert.Equal(t, 0.2, m)
}

func TestCalculate_NeverNegative(t *testing.T) {
	b := Calculate(Input{
		StartTime:   t0,
		EndTime:     t0.Add(10 * time.Hour),
		ChainLength: 60,
		MinSteps:    4,
	})
	assert.Equal(t, 0, b.FinalScore)
}

func TestCalculate_ClockSkew(t *testing.T) {
	b := Calculate(Input{StartTime: t0, EndTime: t0.Add(-time.Second), ChainLength: 2, MinSteps: 2})
	assert.Equal(t, 0.0, b.Breakdown.TimeElapsed)
	assert.Equal(t, 1.5, b.SpeedBonus)
}
