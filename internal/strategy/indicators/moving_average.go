package indicators

import (
	"fmt"
	"math"

	"adaptiveMABot/internal/domain"
	"adaptiveMABot/internal/ports"
)

// maFunc computes a full moving-average series over closes, leaving NaN
// where the average is undefined.
type maFunc func(closes []float64, window int) []float64

// Annotator builds annotated series for one moving-average family and one
// fast/slow window pair. The family's computation strategy is selected once
// at construction and never re-dispatched per bar.
type Annotator struct {
	maType  domain.MAType
	fast    int
	slow    int
	compute maFunc
}

// NewAnnotator creates an annotator for the given family and windows.
// Fast is conventionally smaller than slow; that is not enforced.
func NewAnnotator(maType domain.MAType, fast, slow int) (*Annotator, error) {
	if fast <= 0 || slow <= 0 {
		return nil, fmt.Errorf("%w: MA windows must be positive, got %d/%d", ports.ErrConfiguration, fast, slow)
	}

	var compute maFunc
	switch maType {
	case domain.SimpleMA:
		compute = SMA
	case domain.ExponentialMA:
		compute = EMA
	case domain.WeightedMA:
		compute = WMA
	default:
		return nil, fmt.Errorf("%w: unsupported moving average type %q", ports.ErrConfiguration, maType)
	}

	return &Annotator{maType: maType, fast: fast, slow: slow, compute: compute}, nil
}

// Name returns the family tag of the annotator.
func (a *Annotator) Name() string {
	return string(a.maType)
}

// Annotate computes the fast/slow averages over the closes and derives the
// signal and crossover columns. Signal is +1 when the fast average is above
// the slow one, -1 below, and 0 on a tie or while either average is still
// NaN; crossover is the day-over-day delta of signal, 0 on the first bar.
func (a *Annotator) Annotate(bars []*domain.Bar) ([]*domain.AnnotatedBar, error) {
	if len(bars) < a.slow {
		return nil, fmt.Errorf("%w: %d bars for %s slow window %d", ports.ErrInsufficientData, len(bars), a.maType, a.slow)
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	fast := a.compute(closes, a.fast)
	slow := a.compute(closes, a.slow)

	series := make([]*domain.AnnotatedBar, len(bars))
	prevSignal := 0
	for i, b := range bars {
		signal := 0
		if !math.IsNaN(fast[i]) && !math.IsNaN(slow[i]) {
			if fast[i] > slow[i] {
				signal = 1
			} else if fast[i] < slow[i] {
				signal = -1
			}
		}
		crossover := 0
		if i > 0 {
			crossover = signal - prevSignal
		}
		series[i] = &domain.AnnotatedBar{
			Bar:       *b,
			MAFast:    fast[i],
			MASlow:    slow[i],
			Signal:    signal,
			Crossover: crossover,
		}
		prevSignal = signal
	}
	return series, nil
}

// Annotate is a one-shot convenience wrapper around NewAnnotator.
func Annotate(bars []*domain.Bar, maType domain.MAType, fast, slow int) ([]*domain.AnnotatedBar, error) {
	a, err := NewAnnotator(maType, fast, slow)
	if err != nil {
		return nil, err
	}
	return a.Annotate(bars)
}

// SMA computes the simple moving average: the arithmetic mean of the
// trailing window closes. The first window-1 entries are NaN.
func SMA(closes []float64, window int) []float64 {
	out := nanSeries(len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}
	var sum float64
	for i, c := range closes {
		sum += c
		if i >= window {
			sum -= closes[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		}
	}
	return out
}

// EMA computes the exponential moving average with smoothing factor
// alpha = 2/(span+1), seeded with the first close. There is no warm-up
// gap: the average is defined from the first bar.
func EMA(closes []float64, span int) []float64 {
	out := nanSeries(len(closes))
	if span <= 0 || len(closes) == 0 {
		return out
	}
	alpha := 2.0 / float64(span+1)
	ema := closes[0]
	out[0] = ema
	for i := 1; i < len(closes); i++ {
		ema = alpha*closes[i] + (1-alpha)*ema
		out[i] = ema
	}
	return out
}

// WMA computes the weighted moving average: the trailing window closes
// dot-producted with ascending integer weights 1..window, normalized by the
// weight sum. The first window-1 entries are NaN.
func WMA(closes []float64, window int) []float64 {
	out := nanSeries(len(closes))
	if window <= 0 || len(closes) < window {
		return out
	}
	weightSum := float64(window) * float64(window+1) / 2
	for i := window - 1; i < len(closes); i++ {
		var dot float64
		for j := 0; j < window; j++ {
			dot += closes[i-window+1+j] * float64(j+1)
		}
		out[i] = dot / weightSum
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
