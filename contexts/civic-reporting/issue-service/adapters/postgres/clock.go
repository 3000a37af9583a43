package postgresadapter

import (
	"time"

	"civicpulse/contexts/civic-reporting/issue-service/ports"
)

// SystemClock satisfies the clock port with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

var _ ports.Clock = SystemClock{}
