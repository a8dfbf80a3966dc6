// internal/core/ports/clock.go
package ports

import "time"

// Clock abstracts wall-clock time so ledger timestamps are injectable in
// tests and ordering can be verified without real-time waits.
type Clock interface {
	Now() time.Time
}
