package city

import (
	"iter"

	"github.com/tidwall/gjson"
)

// Document is a parsed city snapshot. It is read-only; entities are views
// into the same underlying JSON.
type Document struct {
	root     gjson.Result
	entities gjson.Result
}

// Parse checks that raw is JSON with a CityEntities mapping.
func Parse(raw []byte) (Document, error) {
	if !gjson.ValidBytes(raw) {
		return Document{}, ErrInvalidJSON
	}
	root := gjson.ParseBytes(raw)
	ents, ok := Object(root, "CityEntities")
	if !ok {
		return Document{}, ErrNoEntities
	}
	return Document{root: root, entities: ents}, nil
}

// Entities yields every well-formed entity in document order. Entries that
// are not objects or lack a components mapping are skipped.
func (d Document) Entities() iter.Seq[Entity] {
	return func(yield func(Entity) bool) {
		cont := true
		d.entities.ForEach(func(_, v gjson.Result) bool {
			e, ok := parseEntity(v)
			if !ok {
				return true
			}
			cont = yield(e)
			return cont
		})
	}
}

// Len is the number of raw entries under CityEntities, well-formed or not.
func (d Document) Len() int {
	n := 0
	d.entities.ForEach(func(_, _ gjson.Result) bool {
		n++
		return true
	})
	return n
}
