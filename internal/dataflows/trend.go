package dataflows

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/dyike/MoneyScope/internal/models"
)

var (
	trendDirections  = []string{"upward", "downward", "sideways"}
	sentimentOptions = []string{"bullish", "bearish", "neutral"}
)

// RandomTrendSampler fabricates a plausible trend snapshot. It stands in for a
// real trend model and carries no market information.
type RandomTrendSampler struct {
	rng *rand.Rand
}

func NewRandomTrendSampler() *RandomTrendSampler {
	return &RandomTrendSampler{}
}

// NewSeededTrendSampler returns a sampler with a reproducible sequence. Unlike
// the unseeded sampler it is not safe for concurrent use.
func NewSeededTrendSampler(seed uint64) *RandomTrendSampler {
	return &RandomTrendSampler{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (s *RandomTrendSampler) intN(n int) int {
	if s.rng != nil {
		return s.rng.IntN(n)
	}
	return rand.IntN(n)
}

func (s *RandomTrendSampler) float() float64 {
	if s.rng != nil {
		return s.rng.Float64()
	}
	return rand.Float64()
}

func (s *RandomTrendSampler) AnalyzeTrend(_ context.Context, pair models.CurrencyPair) models.TrendSnapshot {
	volatility := 0.1 + s.float()*(5.0-0.1)
	return models.TrendSnapshot{
		BaseCurrency:    pair.Base,
		TargetCurrency:  pair.Target,
		CurrentTrend:    trendDirections[s.intN(len(trendDirections))],
		TrendStrength:   3 + s.intN(6),
		PublicSentiment: sentimentOptions[s.intN(len(sentimentOptions))],
		Volatility:      math.Round(volatility*100) / 100,
		TradingVolume:   fmt.Sprintf("%dM", 50+s.intN(451)),
	}
}
