// internal/core/services/clock.go
package services

import (
	"time"

	"github.com/stocktrail/stocktrail-be/internal/core/ports"
)

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the wall-clock implementation of ports.Clock.
func SystemClock() ports.Clock { return systemClock{} }
