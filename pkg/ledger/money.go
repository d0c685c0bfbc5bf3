package ledger

import (
	"fmt"
	"math"
)

// Cents is a monetary value in the ledger's single currency, held as an
// integer number of cents. All split and allocation arithmetic happens on
// this type so that per-item shares sum exactly to the item amount, which a
// binary float representation cannot guarantee.
type Cents int64

// CentsFromFloat converts a dollar value to cents, rounding half away from
// zero to the nearest cent.
func CentsFromFloat(dollars float64) Cents {
	return Cents(math.Round(dollars * 100))
}

// Float returns the value in dollars for JSON and display boundaries.
func (c Cents) Float() float64 {
	return float64(c) / 100
}

// Percent applies a percentage (e.g. 15 for 15%) and rounds half away from
// zero to the nearest cent.
func (c Cents) Percent(pct float64) Cents {
	return Cents(math.Round(float64(c) * pct / 100))
}

func (c Cents) String() string {
	sign := ""
	v := c
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// proportionOf allocates total in proportion part/whole, rounded half away
// from zero to the nearest cent. whole must not be zero.
func proportionOf(total, part, whole Cents) Cents {
	return Cents(math.Round(float64(total) * float64(part) / float64(whole)))
}
