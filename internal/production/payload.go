package production

import (
	"github.com/tidwall/gjson"

	"cityanalysis/internal/city"
)

// Payload is a raw reward description as found in production data or in an
// era's reward lookup table.
type Payload struct {
	ID      string
	SubType string
	Amount  float64
	Name    string

	// Assembled is the reward this payload is a piece of, if any.
	Assembled *Payload
}

// ParsePayload reads a reward object. Missing fields keep their zero value;
// a non-object yields ok=false.
func ParsePayload(r gjson.Result) (Payload, bool) {
	if !r.IsObject() {
		return Payload{}, false
	}
	var p Payload
	p.ID, _ = city.String(r, "id")
	p.SubType, _ = city.String(r, "subType")
	p.Amount, _ = city.Float(r, "amount")
	p.Name, _ = city.String(r, "name")
	if a, ok := city.Object(r, "assembledReward"); ok {
		if ap, ok := ParsePayload(a); ok {
			p.Assembled = &ap
		}
	}
	return p, true
}
