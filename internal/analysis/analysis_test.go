package analysis

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"cityanalysis/internal/aggregate"
	"cityanalysis/internal/city"
	"cityanalysis/internal/kits"
	"cityanalysis/internal/report"
	"cityanalysis/internal/reward"
)

const cityJSON = `{"CityEntities":{
  "1":{"id":"W_Kit","name":"Kit Workshop","components":{
    "AllAge":{"placement":{"size":{"x":4,"y":4}}},
    "VirtualFuture":{"production":{"options":[
      {"name":"Make","time":3600,"products":[
        {"type":"genericReward","reward":{"id":"k1","subType":"one_up_kit","amount":1}}
      ]}
    ]}}
  }},
  "2":{"id":"W_Chest","name":"Chest House","width":2,"length":5,"components":{
    "VirtualFuture":{
      "streetConnectionRequirement":2,
      "production":{"options":[
        {"name":"Open","time":86400,"onlyWhenMotivated":true,"products":[
          {"type":"chest","possible_rewards":[
            {"chance":10,"reward":{"id":"f1","subType":"fragment","amount":5,"assembledReward":{"subType":"renovation_kit"}}},
            {"chance":90,"reward":{"id":"m1","subType":"money","amount":1000}}
          ]}
        ]}
      ]}
    }
  }},
  "3":{"id":"W_Plain","name":"Plain House","components":{
    "VirtualFuture":{"production":{"options":[
      {"products":[{"type":"genericReward","reward":{"subType":"money","amount":5}}]}
    ]}}
  }},
  "4":{"id":"W_Old","name":"Old Kit Maker","components":{
    "BronzeAge":{"production":{"options":[
      {"products":[{"type":"genericReward","reward":{"subType":"one_up_kit","amount":3}}]}
    ]}}
  }}
}}`

func TestRun_EndToEnd(t *testing.T) {
	doc, err := city.Parse([]byte(cityJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var logs bytes.Buffer
	res := Run(doc, "VirtualFuture", kits.Default(), Options{Logger: log.New(&logs, "", 0)})

	if res.Stats.Entities != 4 || res.Stats.WithEra != 3 || res.Stats.Matching != 2 || res.Stats.Classified != 2 {
		t.Fatalf("stats: %+v", res.Stats)
	}
	if !strings.Contains(logs.String(), "matching=2") {
		t.Fatalf("log line: %q", logs.String())
	}

	up := res.Report.For("one_up_kit")
	if len(up) != 1 {
		t.Fatalf("one up buckets: %d", len(up))
	}
	b := up[0]
	if b.Name != "Kit Workshop" || b.SizeLabel != "4x4" || b.Expected != 30 || b.Efficiency != 1.875 {
		t.Fatalf("one up bucket: %+v", b)
	}
	if b.HasStreet {
		t.Fatalf("no street requirement expected")
	}

	ren := res.Report.For("renovation_kit")
	if len(ren) != 1 {
		t.Fatalf("renovation buckets: %d", len(ren))
	}
	r := ren[0]
	if r.Name != "Chest House" || !r.HasStreet || r.Street != 2 {
		t.Fatalf("renovation bucket: %+v", r)
	}
	if len(r.Records) != 1 || !r.Records[0].NeedsMotivation || r.Records[0].TimeLabel != "24h" {
		t.Fatalf("records: %+v", r.Records)
	}
	if r.Expected < 0.4999 || r.Expected > 0.5001 {
		t.Fatalf("expected: %v", r.Expected)
	}
	if r.Efficiency < 0.04999 || r.Efficiency > 0.05001 {
		t.Fatalf("efficiency: %v", r.Efficiency)
	}
}

func TestRun_OtherEra(t *testing.T) {
	doc, err := city.Parse([]byte(cityJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res := Run(doc, "BronzeAge", kits.Default(), Options{})
	up := res.Report.For("one_up_kit")
	if len(up) != 1 || up[0].Expected != 90 || up[0].HasEfficiency {
		t.Fatalf("bronze age: %+v", up)
	}
	if res.Report.Empty() {
		t.Fatalf("report should not be empty")
	}
	if !Run(doc, "ArcticFuture", kits.Default(), Options{}).Report.Empty() {
		t.Fatalf("unknown era should yield nothing")
	}
}

func TestRun_OnMatchSeesEveryClassifiedReward(t *testing.T) {
	doc, err := city.Parse([]byte(cityJSON))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	var seen []string
	res := Run(doc, "VirtualFuture", kits.Default(), Options{
		OnMatch: func(b aggregate.Building, c reward.Classified) {
			seen = append(seen, b.ID+":"+c.Kit.SubType)
		},
	})
	if strings.Join(seen, ",") != "W_Kit:one_up_kit,W_Chest:renovation_kit" {
		t.Fatalf("seen: %v", seen)
	}
	if len(seen) != res.Stats.Classified {
		t.Fatalf("seen %d, classified %d", len(seen), res.Stats.Classified)
	}
}

func TestRun_NonFiniteValuesKeepWorkbookValid(t *testing.T) {
	doc, err := city.Parse([]byte(`{"CityEntities":{
	  "1":{"id":"W_NaN","name":"Odd Workshop","components":{
	    "AllAge":{"placement":{"size":{"x":2,"y":2}}},
	    "VirtualFuture":{"production":{"options":[{"products":[
	      {"type":"genericReward","dropChance":"NaN","reward":{"subType":"one_up_kit","amount":1}},
	      {"type":"genericReward","reward":{"subType":"renovation_kit","amount":"Infinity"}}
	    ]}]}}
	  }}
	}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	res := Run(doc, "VirtualFuture", kits.Default(), Options{})
	up := res.Report.For("one_up_kit")
	if len(up) != 1 || up[0].Expected != 30 || up[0].Efficiency != 7.5 {
		t.Fatalf("one up: %+v", up)
	}
	if ren := res.Report.For("renovation_kit"); len(ren) != 1 || ren[0].Expected != 0 {
		t.Fatalf("renovation: %+v", ren)
	}
	if err := report.Workbook(res.Report).Validate(); err != nil {
		t.Fatalf("workbook: %v", err)
	}
}
