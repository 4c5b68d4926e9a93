package domain

import (
	"encoding/json"
	"fmt"
)

// UnitScale is the number of raw price units per display currency unit.
type UnitScale int64

const (
	// ScaleMajor prices are already in dollars.
	ScaleMajor UnitScale = 1
	// ScaleMinor prices are in cents.
	ScaleMinor UnitScale = 100
)

// Money is a USD amount held in cents.
type Money struct {
	Cents int64
	// fixed renders two decimals even for whole amounts.
	fixed bool
}

// ToDisplayAmount normalizes a raw resource price into display currency.
func ToDisplayAmount(raw int64, scale UnitScale) Money {
	if scale == ScaleMinor {
		return Money{Cents: raw, fixed: true}
	}
	return Money{Cents: raw * 100}
}

// Times multiplies the amount by a quantity. Quantities below one give zero.
func (m Money) Times(quantity int) Money {
	if quantity <= 0 {
		return Money{fixed: m.fixed}
	}
	return Money{Cents: m.Cents * int64(quantity), fixed: m.fixed}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) String() string {
	cents, sign := m.Cents, ""
	if cents < 0 {
		cents, sign = -cents, "-"
	}
	if !m.fixed && cents%100 == 0 {
		return fmt.Sprintf("%s$%d", sign, cents/100)
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// Major renders the amount in dollars with two decimals, the form the
// booking backend accepts in request bodies.
func (m Money) Major() json.Number {
	cents, sign := m.Cents, ""
	if cents < 0 {
		cents, sign = -cents, "-"
	}
	return json.Number(fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100))
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cents   int64  `json:"cents"`
		Display string `json:"display"`
	}{m.Cents, m.String()})
}
