package regime

import (
	"fmt"
	"math"

	"adaptiveMABot/internal/domain"
	"adaptiveMABot/internal/ports"
)

// Defaults for the classifier configuration.
const (
	DefaultWindow         = 20
	DefaultVolThreshold   = 0.01 // 1% daily-return stdev
	DefaultTrendThreshold = 0.05 // 5% move over the window
)

// Config holds the window and decision thresholds for regime
// classification.
type Config struct {
	Window         int
	VolThreshold   float64
	TrendThreshold float64
}

// Classifier maps recent volatility and trend strength to a moving-average
// family. It is deterministic and carries no state between calls.
type Classifier struct {
	cfg Config
}

// Assessment is the outcome of classifying one series.
type Assessment struct {
	Volatility    float64 // stdev of day-over-day returns over the window
	TrendStrength float64 // unsigned fractional move over the window
	MAType        domain.MAType
}

// NewClassifier validates the configuration, applying defaults for zero
// values.
func NewClassifier(cfg Config) (*Classifier, error) {
	if cfg.Window == 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.VolThreshold == 0 {
		cfg.VolThreshold = DefaultVolThreshold
	}
	if cfg.TrendThreshold == 0 {
		cfg.TrendThreshold = DefaultTrendThreshold
	}
	if cfg.Window < 2 {
		return nil, fmt.Errorf("%w: regime window must be at least 2, got %d", ports.ErrConfiguration, cfg.Window)
	}
	if cfg.VolThreshold < 0 || cfg.TrendThreshold < 0 {
		return nil, fmt.Errorf("%w: regime thresholds cannot be negative", ports.ErrConfiguration)
	}
	return &Classifier{cfg: cfg}, nil
}

// Classify computes the regime statistics over the last window bars and
// selects the family: Exponential for a volatile AND trending regime
// (react faster), Simple otherwise (stay smooth in calm or choppy markets).
func (c *Classifier) Classify(bars []*domain.Bar) Assessment {
	a := Assessment{
		Volatility:    Volatility(bars, c.cfg.Window),
		TrendStrength: TrendStrength(bars, c.cfg.Window),
		MAType:        domain.SimpleMA,
	}
	if a.Volatility > c.cfg.VolThreshold && a.TrendStrength > c.cfg.TrendThreshold {
		a.MAType = domain.ExponentialMA
	}
	return a
}

// Volatility returns the sample standard deviation of day-over-day close
// returns over the last window bars. A series with fewer than window+1
// bars yields 0, degrading the classification to the calm regime; this is
// the documented boundary policy, mirroring TrendStrength.
func Volatility(bars []*domain.Bar, window int) float64 {
	if window < 2 || len(bars) < window+1 {
		return 0
	}
	returns := make([]float64, 0, window)
	for i := len(bars) - window; i < len(bars); i++ {
		prev := bars[i-1].Close
		if prev == 0 {
			return 0
		}
		returns = append(returns, bars[i].Close/prev-1)
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	var variance float64
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)
	return math.Sqrt(variance)
}

// TrendStrength returns the unsigned fractional price move over the last
// window bars: |close[last]-close[first]| / close[first]. A series shorter
// than the window yields 0 (calm classification), an explicit boundary
// policy rather than an error.
func TrendStrength(bars []*domain.Bar, window int) float64 {
	if window < 1 || len(bars) < window {
		return 0
	}
	start := bars[len(bars)-window].Close
	end := bars[len(bars)-1].Close
	if start == 0 {
		return 0
	}
	return math.Abs(end-start) / start
}
