// Package aggregate turns classified kit rewards into per-building buckets
// and ranks buildings by expected fragments per tile.
package aggregate

import (
	"sort"

	"cityanalysis/internal/format"
	"cityanalysis/internal/kits"
	"cityanalysis/internal/reward"
)

// Building is the metadata a bucket copies on creation.
type Building struct {
	ID        string
	Name      string
	SizeLabel string
	Area      int
	HasArea   bool
	Street    int
	HasStreet bool
}

// Record is one contributing reward source of a bucket.
type Record struct {
	Fragments float64
	// Note is " (N kits)" or " (N <unit>)", empty for plain fragments.
	Note            string
	TimeLabel       string
	Probability     float64
	HasProbability  bool
	NeedsMotivation bool
	Expected        float64
}

// Bucket accumulates one building's yield of one kit type.
type Bucket struct {
	Building
	Records  []Record
	Expected float64

	// Efficiency is Expected per tile; HasEfficiency is false when the
	// footprint is unknown.
	Efficiency    float64
	HasEfficiency bool
}

// KitReport is the ranked bucket list for one kit.
type KitReport struct {
	Kit     kits.Kit
	Buckets []Bucket
}

// Report holds one KitReport per catalog kit, in catalog order.
type Report struct {
	Kits []KitReport
}

// Empty reports whether no kit has any bucket.
func (r Report) Empty() bool {
	for _, k := range r.Kits {
		if len(k.Buckets) > 0 {
			return false
		}
	}
	return true
}

// For returns the ranked buckets of the kit subtype.
func (r Report) For(subtype string) []Bucket {
	for _, k := range r.Kits {
		if k.Kit.SubType == subtype {
			return k.Buckets
		}
	}
	return nil
}

type bucketKey struct {
	building string
	kit      string
}

// Aggregator is scoped to a single run. It is not safe for concurrent use.
type Aggregator struct {
	catalog kits.Catalog
	buckets map[bucketKey]*Bucket
	order   map[string][]bucketKey
}

func New(catalog kits.Catalog) *Aggregator {
	return &Aggregator{
		catalog: catalog,
		buckets: map[bucketKey]*Bucket{},
		order:   map[string][]bucketKey{},
	}
}

// Add folds one classified reward into the bucket for (building, kit),
// creating the bucket on first use.
func (a *Aggregator) Add(b Building, c reward.Classified) {
	if _, ok := a.catalog.Lookup(c.Kit.SubType); !ok {
		return
	}
	rec := newRecord(c)

	k := bucketKey{building: b.ID, kit: c.Kit.SubType}
	bucket, ok := a.buckets[k]
	if !ok {
		bucket = &Bucket{Building: b}
		a.buckets[k] = bucket
		a.order[k.kit] = append(a.order[k.kit], k)
	}
	bucket.Expected += rec.Expected
	bucket.Records = append(bucket.Records, rec)
}

func newRecord(c reward.Classified) Record {
	fragments := c.Amount
	var note string
	switch c.Unit {
	case reward.UnitKits:
		fragments *= kits.FragmentsPerKit
		plural := "s"
		if format.IsOne(c.Amount) {
			plural = ""
		}
		note = " (" + format.Number(c.Amount) + " kit" + plural + ")"
	case reward.UnitFragments:
	default:
		note = " (" + format.Number(c.Amount) + " " + c.Unit + ")"
	}

	rec := Record{
		Fragments:       fragments,
		Note:            note,
		NeedsMotivation: c.RequiresMotivation,
	}
	if c.HasOptionTime {
		rec.TimeLabel = format.Duration(c.OptionTime)
	}
	rec.Probability, rec.HasProbability = c.Chance.Value()
	rec.Expected = fragments * c.Chance.Effective()
	return rec
}

// Report computes efficiencies and ranks every kit's buckets. It copies
// the accumulated state, so calling it again gives the same answer.
func (a *Aggregator) Report() Report {
	var out Report
	for _, kit := range a.catalog.Kits() {
		keys := a.order[kit.SubType]
		buckets := make([]Bucket, 0, len(keys))
		for _, k := range keys {
			b := *a.buckets[k]
			b.Records = append([]Record(nil), b.Records...)
			if b.HasArea && b.Area > 0 {
				b.Efficiency = b.Expected / float64(b.Area)
				b.HasEfficiency = true
			}
			buckets = append(buckets, b)
		}
		Rank(buckets)
		out.Kits = append(out.Kits, KitReport{Kit: kit, Buckets: buckets})
	}
	return out
}

// Rank sorts by efficiency, highest first, with unknown efficiency last and
// ties broken by building name.
func Rank(buckets []Bucket) {
	sort.SliceStable(buckets, func(i, j int) bool {
		return less(buckets[i], buckets[j])
	})
}

func less(x, y Bucket) bool {
	if x.HasEfficiency != y.HasEfficiency {
		return x.HasEfficiency
	}
	if x.HasEfficiency && x.Efficiency != y.Efficiency {
		return x.Efficiency > y.Efficiency
	}
	return x.Name < y.Name
}
