// Package inventory derives stock status and fill levels.
package inventory

import (
	"math"
	"time"

	"github.com/brewline/coffee-pos/internal/database"
)

// Fill levels reported alongside stock items.
const (
	LevelEmpty  = "empty"
	LevelLow    = "low"
	LevelMedium = "medium"
	LevelHigh   = "high"
)

// Status derives the stored status of an item. Expiry wins over counts.
func Status(current, min int32, expiry *time.Time, now time.Time) database.StockStatus {
	switch {
	case expiry != nil && !expiry.After(now):
		return database.StockStatusExpired
	case current <= 0:
		return database.StockStatusOutOfStock
	case current <= min:
		return database.StockStatusLowStock
	}
	return database.StockStatusAvailable
}

// NeedsAttention reports whether status belongs in the low-stock alerts.
func NeedsAttention(status database.StockStatus) bool {
	return status == database.StockStatusLowStock || status == database.StockStatusOutOfStock
}

// Percentage is current as a rounded percentage of max, or 0 when max is
// not positive.
func Percentage(current, max int32) int {
	if max <= 0 {
		return 0
	}
	return int(math.Round(float64(current) / float64(max) * 100))
}

// Level buckets an item's fill level.
func Level(current, min, max int32) string {
	switch {
	case current <= 0:
		return LevelEmpty
	case current <= min:
		return LevelLow
	case Percentage(current, max) < 50:
		return LevelMedium
	}
	return LevelHigh
}
