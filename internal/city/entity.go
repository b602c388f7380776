package city

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Entity is one building from the snapshot.
type Entity struct {
	ID   string
	Name string

	Footprint    Footprint
	HasFootprint bool

	raw        gjson.Result
	components gjson.Result
}

// Component is the loosely typed data of one era of an entity.
type Component = gjson.Result

// Footprint is a building's size in tiles.
type Footprint struct {
	Width  int
	Length int
}

func (f Footprint) Area() int { return f.Width * f.Length }

func (f Footprint) String() string { return fmt.Sprintf("%dx%d", f.Width, f.Length) }

func parseEntity(v gjson.Result) (Entity, bool) {
	if !v.IsObject() {
		return Entity{}, false
	}
	comps, ok := Object(v, "components")
	if !ok {
		return Entity{}, false
	}
	e := Entity{raw: v, components: comps}
	if id, ok := Field(v, "id"); ok && (id.Type == gjson.String || id.Type == gjson.Number) {
		e.ID = id.String()
	}
	e.Name = e.ID
	if name, ok := Field(v, "name"); ok && name.Type == gjson.String {
		e.Name = name.Str
	}
	if e.ID == "" {
		e.ID = e.Name
	}
	e.Footprint, e.HasFootprint = e.footprint()
	return e, true
}

// SizeLabel is "WxL", or "unknown" without footprint data.
func (e Entity) SizeLabel() string {
	if !e.HasFootprint {
		return "unknown"
	}
	return e.Footprint.String()
}

// Area returns the tile area when the footprint is known.
func (e Entity) Area() (int, bool) {
	if !e.HasFootprint {
		return 0, false
	}
	return e.Footprint.Area(), true
}

// Era returns the component for the named era, when it is a mapping.
func (e Entity) Era(name string) (Component, bool) {
	return Object(e.components, name)
}

// footprint prefers the all-age placement size over legacy top-level fields.
func (e Entity) footprint() (Footprint, bool) {
	if allAge, ok := Object(e.components, "AllAge"); ok {
		if placement, ok := Object(allAge, "placement"); ok {
			if size, ok := Object(placement, "size"); ok {
				if f, ok := footprintFrom(size, "x", "y"); ok {
					return f, true
				}
			}
		}
	}
	return footprintFrom(e.raw, "width", "length")
}

func footprintFrom(r gjson.Result, wKey, lKey string) (Footprint, bool) {
	w, ok1 := Int(r, wKey)
	l, ok2 := Int(r, lKey)
	if !ok1 || !ok2 || w <= 0 || l <= 0 {
		return Footprint{}, false
	}
	return Footprint{Width: w, Length: l}, true
}

// StreetRequirement looks for the street connection level on the all-age
// component, then the era component, then the legacy requirements block.
func (e Entity) StreetRequirement(era Component) (int, bool) {
	if allAge, ok := Object(e.components, "AllAge"); ok {
		if v, ok := Field(allAge, "streetConnectionRequirement"); ok {
			if n, ok := streetLevel(v); ok {
				return n, true
			}
		}
	}
	if v, ok := Field(era, "streetConnectionRequirement"); ok {
		if n, ok := streetLevel(v); ok {
			return n, true
		}
	}
	if reqs, ok := Object(e.raw, "requirements"); ok {
		if v, ok := Field(reqs, "street_connection_level"); ok {
			if n, ok := streetLevel(v); ok {
				return n, true
			}
		}
	}
	return 0, false
}

func streetLevel(v gjson.Result) (int, bool) {
	if v.IsObject() {
		if n, ok := Int(v, "requiredLevel"); ok && n >= 0 {
			return n, true
		}
		if n, ok := Int(v, "street_connection_level"); ok && n >= 0 {
			return n, true
		}
		return 0, false
	}
	n, ok := IntValue(v)
	if !ok || n < 0 {
		return 0, false
	}
	return n, true
}
