package domain

import "time"

// Trade represents a completed round trip produced by the simulator.
// Immutable once created.
type Trade struct {
	Symbol      string      // Instrument symbol (e.g. "ETHUSDT")
	EntryDate   time.Time   // Day the entry fill executed
	ExitDate    time.Time   // Day the exit fill executed
	EntryPrice  float64     // Fill price on entry (bar open)
	ExitPrice   float64     // Fill price on exit (bar open)
	NetReturn   float64     // Gross return minus the round-trip cost
	CloseReason CloseReason // Why the position was closed
}
