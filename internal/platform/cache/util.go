package cache

import (
	"time"

	"index_backend/internal/shared/tradingcal"
)

// TimeUntilNextNYSEClose returns the duration until the next 16:00 New York
// time. Daily levels only change after the NYSE close, so this serves as a
// natural upper bound for the level cache TTL.
func TimeUntilNextNYSEClose() time.Duration {
	now := time.Now().In(tradingcal.NY)

	next := time.Date(now.Year(), now.Month(), now.Day(), 16, 0, 0, 0, tradingcal.NY)
	if now.After(next) {
		next = next.Add(24 * time.Hour)
	}

	return next.Sub(now)
}
