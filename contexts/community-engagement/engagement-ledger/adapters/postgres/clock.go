package postgresadapter

import (
	"time"

	"civicpulse/contexts/community-engagement/engagement-ledger/ports"
)

// SystemClock satisfies the clock port with wall time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

var _ ports.Clock = SystemClock{}
