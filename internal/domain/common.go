package domain

import "fmt"

// MAType selects the moving-average family used to annotate a series.
// The family is fixed when an annotator is constructed and is never
// re-dispatched per bar.
type MAType string

const (
	SimpleMA      MAType = "SMA"
	ExponentialMA MAType = "EMA"
	WeightedMA    MAType = "WMA"
)

// ExitMode selects which signal-driven exit rule the simulator applies.
// Stop-loss and take-profit are independent of the exit mode.
type ExitMode string

const (
	ExitOnOpposite ExitMode = "opposite"
	ExitOnTime     ExitMode = "time"
)

// CloseReason indicates why a simulated position was closed.
type CloseReason string

// CloseReasonOpposite marks an exit on the opposite (bearish) crossover.
const CloseReasonOpposite CloseReason = "Opposite crossover"

// TimeExitReason builds the close reason for a calendar-day holding exit.
func TimeExitReason(holdDays int) CloseReason {
	return CloseReason(fmt.Sprintf("%d-day exit", holdDays))
}

// StopLossReason builds the close reason for a stop-loss exit.
func StopLossReason(fraction float64) CloseReason {
	return CloseReason(fmt.Sprintf("Stop loss (%.1f%%)", fraction*100))
}

// TakeProfitReason builds the close reason for a take-profit exit.
func TakeProfitReason(fraction float64) CloseReason {
	return CloseReason(fmt.Sprintf("Take profit (%.1f%%)", fraction*100))
}
