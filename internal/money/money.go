// Package money provides minor-unit (cent) arithmetic for landed-cost
// calculations. All internal computation stays in int64 cents; conversion to
// display units happens only at the boundary, with round-half-up applied at
// that final step and at percentage applications.
package money

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Cents is a USD amount in minor units.
type Cents int64

// FromDollars converts whole dollars to cents.
func FromDollars(d int64) Cents {
	return Cents(d * 100)
}

// Dollars returns the whole-dollar part after round-half-up on cents.
func (c Cents) Dollars() int64 {
	if c >= 0 {
		return int64((c + 50) / 100)
	}
	return -int64((-c + 50) / 100)
}

// ApplyBps applies a basis-point rate to the amount with round-half-up.
// 10000 bps == 100%.
func (c Cents) ApplyBps(bps int64) Cents {
	prod := int64(c) * bps
	if prod >= 0 {
		return Cents((prod + 5000) / 10000)
	}
	return Cents(-((-prod + 5000) / 10000))
}

var usd = message.NewPrinter(language.English)

// Format renders the amount as a human-readable USD string, e.g. "$13,500.00".
func (c Cents) Format() string {
	neg := c < 0
	v := int64(c)
	if neg {
		v = -v
	}
	s := usd.Sprintf("$%d.%02d", v/100, v%100)
	if neg {
		return "-" + s
	}
	return s
}
