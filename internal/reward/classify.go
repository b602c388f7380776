package reward

import (
	"cityanalysis/internal/kits"
	"cityanalysis/internal/production"
)

const (
	UnitKits      = "kits"
	UnitFragments = "fragments"

	// unitItems is used for a wrapper payload without a subtype.
	unitItems = "items"

	fragmentSubType = "fragment"
)

// Classified is a reward recognized as producing a target kit.
type Classified struct {
	Kit    kits.Kit
	Amount float64
	// Unit is UnitKits, UnitFragments, or the wrapper's own subtype.
	Unit string
	Name string

	RewardID string
	Source   Source

	OptionName         string
	OptionTime         int
	HasOptionTime      bool
	Chance             production.Chance
	RequiresMotivation bool
}

type Classifier struct {
	catalog kits.Catalog
}

func NewClassifier(catalog kits.Catalog) *Classifier {
	return &Classifier{catalog: catalog}
}

// Classify decides whether the resolved payload produces a target kit.
// Fragments of a kit are checked first, then the kit itself, then any other
// wrapper around an assembled kit.
func (c *Classifier) Classify(ref production.Ref, res Resolution) (Classified, bool) {
	if !res.Valid {
		return Classified{}, false
	}
	p := res.Payload

	var out Classified
	switch kit, wrapsKit := c.assembledKit(p); {
	case p.SubType == fragmentSubType && wrapsKit:
		out = Classified{Kit: kit, Amount: p.Amount, Unit: UnitFragments, Name: nameOr(p, "Fragments of "+kit.Label)}
	case c.isKit(p.SubType):
		kit, _ := c.catalog.Lookup(p.SubType)
		out = Classified{Kit: kit, Amount: p.Amount, Unit: UnitKits, Name: nameOr(p, kit.Label)}
	case wrapsKit:
		unit := p.SubType
		if unit == "" {
			unit = unitItems
		}
		out = Classified{Kit: kit, Amount: p.Amount, Unit: unit, Name: nameOr(p, kit.Label)}
	default:
		return Classified{}, false
	}

	out.RewardID = ref.RewardID
	if out.RewardID == "" {
		out.RewardID = p.ID
	}
	out.Source = res.Source
	out.OptionName = ref.OptionName
	out.OptionTime = ref.OptionTime
	out.HasOptionTime = ref.HasOptionTime
	out.Chance = ref.Chance
	out.RequiresMotivation = ref.RequiresMotivation
	return out, true
}

func (c *Classifier) isKit(subtype string) bool {
	_, ok := c.catalog.Lookup(subtype)
	return ok
}

func (c *Classifier) assembledKit(p production.Payload) (kits.Kit, bool) {
	if p.Assembled == nil {
		return kits.Kit{}, false
	}
	return c.catalog.Lookup(p.Assembled.SubType)
}

func nameOr(p production.Payload, fallback string) string {
	if p.Name != "" {
		return p.Name
	}
	return fallback
}
