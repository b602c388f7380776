package reward

import (
	"github.com/tidwall/gjson"

	"cityanalysis/internal/city"
	"cityanalysis/internal/production"
)

// Lookup maps reward ids to the canonical payloads of one era component.
type Lookup struct {
	byID map[string]gjson.Result
}

// Source says where a resolved payload came from.
type Source int

const (
	// SourceInline is the payload carried by the production node itself.
	SourceInline Source = iota
	// SourceLookup is the era's canonical definition for the reward id.
	SourceLookup
)

func (s Source) String() string {
	if s == SourceLookup {
		return "lookup"
	}
	return "inline"
}

// Resolution is the payload chosen for classification. Valid is false when
// the lookup entry for the id exists but is not a reward object.
type Resolution struct {
	Payload production.Payload
	Source  Source
	Valid   bool
}

// LookupFor reads lookup.rewards, stored either as an id-keyed mapping or as
// a list of payloads that carry their own id.
func LookupFor(component gjson.Result) Lookup {
	l := Lookup{byID: map[string]gjson.Result{}}
	lk, ok := city.Object(component, "lookup")
	if !ok {
		return l
	}
	rewards, ok := city.Field(lk, "rewards")
	if !ok {
		return l
	}
	switch {
	case rewards.IsObject():
		rewards.ForEach(func(k, v gjson.Result) bool {
			l.byID[k.String()] = v
			return true
		})
	case rewards.IsArray():
		city.Each(rewards, func(v gjson.Result) {
			if id, ok := city.String(v, "id"); ok {
				l.byID[id] = v
			}
		})
	}
	return l
}

func (l Lookup) Len() int { return len(l.byID) }

// Resolve picks the canonical payload when the reference's id is known,
// and the inline payload otherwise.
func (l Lookup) Resolve(ref production.Ref) Resolution {
	if ref.RewardID != "" {
		if raw, ok := l.byID[ref.RewardID]; ok {
			p, valid := production.ParsePayload(raw)
			return Resolution{Payload: p, Source: SourceLookup, Valid: valid}
		}
	}
	return Resolution{Payload: ref.Payload, Source: SourceInline, Valid: true}
}
