package production

import (
	"math"

	"github.com/tidwall/gjson"

	"cityanalysis/internal/city"
)

// chanceKeys are the spellings seen for a drop chance, in priority order.
// The first key present on a node decides, even if its value is unusable.
var chanceKeys = [...]string{"dropChance", "drop_chance", "chance", "probability"}

// Chance is an optional drop probability, always within [0,1] when set.
type Chance struct {
	p   float64
	set bool
}

// NewChance normalizes v: values above 1 are percentages.
func NewChance(v float64) Chance {
	return Chance{p: NormalizeProbability(v), set: true}
}

// NormalizeProbability maps a raw chance into [0,1]. Anything above 1 is
// read as a percentage; out-of-range results are clamped.
func NormalizeProbability(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		v /= 100
	}
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

// Value returns the probability and whether one was ever specified.
func (c Chance) Value() (float64, bool) { return c.p, c.set }

func (c Chance) IsSet() bool { return c.set }

// Effective is the probability used for expected values; unset means 1.
func (c Chance) Effective() float64 {
	if !c.set {
		return 1
	}
	return c.p
}

// or returns c when set, otherwise inherited.
func (c Chance) or(inherited Chance) Chance {
	if c.set {
		return c
	}
	return inherited
}

func parseChance(node gjson.Result) Chance {
	for _, key := range chanceKeys {
		v, ok := city.Field(node, key)
		if !ok {
			continue
		}
		f, ok := city.FloatValue(v)
		if !ok {
			return Chance{}
		}
		return NewChance(f)
	}
	return Chance{}
}
