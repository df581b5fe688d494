package commands

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// generateOrderNumber builds the human-readable order number handed to the
// customer and the vendor, e.g. ORD-20260831-412-7301.
func generateOrderNumber(now time.Time) string {
	utc := now.UTC()
	datePart := utc.Format("20060102")
	millis := utc.Nanosecond() / int(time.Millisecond)

	// 4-digit cryptographic random
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		// fallback: time-based entropy
		n = big.NewInt(utc.UnixNano() % 10000)
	}

	return fmt.Sprintf("ORD-%s-%03d-%04d", datePart, millis, n.Int64())
}
