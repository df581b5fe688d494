package kernel

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Money represents a monetary amount in minor currency units (e.g. cents).
// Integer representation keeps pricing arithmetic exact; amounts are never
// negative in this domain.
type Money int64

// NewMoney creates a Money value, rejecting negative amounts.
func NewMoney(amount int64) (Money, error) {
	if amount < 0 {
		return 0, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d is negative", amount))
	}
	return Money(amount), nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return m + other
}

// MulQty multiplies the amount by a quantity.
func (m Money) MulQty(qty int) Money {
	return m * Money(qty)
}

// Int64 returns the raw amount in minor units.
func (m Money) Int64() int64 {
	return int64(m)
}

// String formats the amount in minor units, e.g. "Money(3350)".
func (m Money) String() string {
	return fmt.Sprintf("Money(%d)", int64(m))
}
