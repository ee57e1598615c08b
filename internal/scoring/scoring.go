// internal/scoring/scoring.go
//
// Score for a completed chain. Pure function; no I/O.
//
//   speed       t ≤ 30s → 1.5; 30 < t ≤ 60 → 1 + 0.5·(60−t)/30;
//               t > 60 → max(0.1, exp(−0.15·(t−60)/300))
//   creativity  avg × 1000 × 0.4, ×1.2 when ≥ 70% of links are high (≥ 0.7),
//               +50 per exceptional link (≥ 0.9), +25 × longest high run
//   efficiency  extra = length − minSteps; extra ≤ 0 → ×1.5, no penalty;
//               else ×max(0.2, 0.8^extra), penalty extra^1.5 × 10
//   final       max(0, round((1000·speed + creativity)·multiplier − penalty))

package scoring

import (
	"math"
	"time"
)

// BaseScore is the points awarded before speed scaling.
const BaseScore = 1000

const (
	highThreshold        = 0.7
	exceptionalThreshold = 0.9
	highShare            = 0.7
	creativityWeight     = 0.4
	highShareBonus       = 1.2
	exceptionalBonus     = 50
	streakBonus          = 25
)

// Input is the statistics of a finished chain. CreativityScores holds one
// normalized score in [0,1] per accepted link.
type Input struct {
	StartTime        time.Time
	EndTime          time.Time
	ChainLength      int
	MinSteps         int
	CreativityScores []float64
}

// Details are the raw measurements behind a Breakdown.
type Details struct {
	TimeElapsed       float64 `json:"timeElapsed"`
	OptimalSteps      int     `json:"optimalSteps"`
	ActualSteps       int     `json:"actualSteps"`
	AverageCreativity float64 `json:"averageCreativity"`
}

// Breakdown is the score of one completed chain.
type Breakdown struct {
	BaseScore            int     `json:"baseScore"`
	SpeedBonus           float64 `json:"speedBonus"`
	CreativityScore      int     `json:"creativityScore"`
	EfficiencyMultiplier float64 `json:"efficiencyMultiplier"`
	ChainPenalty         float64 `json:"chainPenalty"`
	FinalScore           int     `json:"finalScore"`
	Breakdown            Details `json:"breakdown"`
}

// Calculate scores in.
func Calculate(in Input) Breakdown {
	elapsed := in.EndTime.Sub(in.StartTime).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}
	speed := SpeedBonus(elapsed)
	creativity, avg := CreativityScore(in.CreativityScores)
	mult, penalty := Efficiency(in.ChainLength, in.MinSteps)

	final := math.Round((BaseScore*speed+float64(creativity))*mult - penalty)
	if final < 0 {
		final = 0
	}
	return Breakdown{
		BaseScore:            BaseScore,
		SpeedBonus:           speed,
		CreativityScore:      creativity,
		EfficiencyMultiplier: mult,
		ChainPenalty:         penalty,
		FinalScore:           int(final),
		Breakdown: Details{
			TimeElapsed:       elapsed,
			OptimalSteps:      in.MinSteps,
			ActualSteps:       in.ChainLength,
			AverageCreativity: avg,
		},
	}
}

// SpeedBonus maps elapsed seconds to a multiplier in [0.1, 1.5].
func SpeedBonus(t float64) float64 {
	switch {
	case t <= 30:
		return 1.5
	case t <= 60:
		return 1 + 0.5*(60-t)/30
	default:
		return math.Max(0.1, math.Exp(-0.15*(t-60)/300))
	}
}

// CreativityScore returns the rounded creativity points and the average score.
func CreativityScore(scores []float64) (int, float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	var sum float64
	high, exceptional, run, longest := 0, 0, 0, 0
	for _, s := range scores {
		sum += s
		if s >= exceptionalThreshold {
			exceptional++
		}
		if s >= highThreshold {
			high++
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	avg := sum / float64(len(scores))

	points := avg * BaseScore * creativityWeight
	if float64(high)/float64(len(scores)) >= highShare {
		points *= highShareBonus
	}
	points += float64(exceptional*exceptionalBonus + longest*streakBonus)
	return int(math.Round(points)), avg
}

// Efficiency returns the multiplier and penalty for a chain of length words
// against a minSteps-word optimum.
func Efficiency(length, minSteps int) (float64, float64) {
	extra := length - minSteps
	if extra <= 0 {
		return 1.5, 0
	}
	e := float64(extra)
	return math.Max(0.2, math.Pow(0.8, e)), math.Pow(e, 1.5) * 10
}
