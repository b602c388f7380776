// Package analysis runs the per-era kit scan over a city document.
package analysis

import (
	"log"

	"cityanalysis/internal/aggregate"
	"cityanalysis/internal/city"
	"cityanalysis/internal/kits"
	"cityanalysis/internal/production"
	"cityanalysis/internal/reward"
)

type Options struct {
	// Logger receives one summary line per run. Nil disables logging.
	Logger *log.Logger
	// OnMatch is called for every classified reward, in document order.
	OnMatch func(aggregate.Building, reward.Classified)
}

// Stats counts what the scan saw.
type Stats struct {
	Entities   int
	WithEra    int
	Matching   int
	Classified int
}

type Result struct {
	Era    string
	Report aggregate.Report
	Stats  Stats
}

// Run scans every entity's era component and ranks kit producers.
func Run(doc city.Document, era string, catalog kits.Catalog, opts Options) Result {
	cls := reward.NewClassifier(catalog)
	agg := aggregate.New(catalog)
	res := Result{Era: era}

	for ent := range doc.Entities() {
		res.Stats.Entities++
		comp, ok := ent.Era(era)
		if !ok {
			continue
		}
		res.Stats.WithEra++

		matches := Classify(comp, cls)
		if len(matches) == 0 {
			continue
		}
		res.Stats.Matching++
		res.Stats.Classified += len(matches)

		b := buildingOf(ent, comp)
		for _, c := range matches {
			agg.Add(b, c)
			if opts.OnMatch != nil {
				opts.OnMatch(b, c)
			}
		}
	}
	res.Report = agg.Report()

	if opts.Logger != nil {
		opts.Logger.Printf("era=%s entities=%d with_era=%d matching=%d rewards=%d",
			era, res.Stats.Entities, res.Stats.WithEra, res.Stats.Matching, res.Stats.Classified)
	}
	return res
}

// Classify resolves one era component's production and keeps the rewards
// that produce a target kit.
func Classify(component city.Component, cls *reward.Classifier) []reward.Classified {
	lookup := reward.LookupFor(component)
	var out []reward.Classified
	for ref := range production.Resolve(production.ParseOptions(component)) {
		if c, ok := cls.Classify(ref, lookup.Resolve(ref)); ok {
			out = append(out, c)
		}
	}
	return out
}

func buildingOf(ent city.Entity, comp city.Component) aggregate.Building {
	b := aggregate.Building{
		ID:        ent.ID,
		Name:      ent.Name,
		SizeLabel: ent.SizeLabel(),
	}
	b.Area, b.HasArea = ent.Area()
	b.Street, b.HasStreet = ent.StreetRequirement(comp)
	return b
}
