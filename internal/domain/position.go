package domain

import "time"

// Position is the transient state of one open long position inside a
// simulation run. At most one exists at a time (no pyramiding) and it
// never outlives the run: on close it is converted into a Trade and
// discarded.
type Position struct {
	EntryPrice float64
	EntryDate  time.Time
}
