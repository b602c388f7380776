package production

import (
	"github.com/tidwall/gjson"

	"cityanalysis/internal/city"
)

// Product is one node of a production recipe. The concrete type is one of
// GenericReward, Random, Chest or Other.
type Product interface {
	base() Node
}

// Node holds the context every product kind may set for its subtree.
type Node struct {
	Chance            Chance
	OnlyWhenMotivated bool
}

func (n Node) base() Node { return n }

// GenericReward yields its reward directly.
type GenericReward struct {
	Node
	Reward Payload
}

// Random picks one of its branches. Branch chances replace the inherited
// chance; they are not multiplied with it.
type Random struct {
	Node
	Branches []Branch
}

type Branch struct {
	Chance            Chance
	OnlyWhenMotivated bool
	Product           Product
}

// Chest rolls each candidate independently.
type Chest struct {
	Node
	Candidates []Candidate
}

type Candidate struct {
	Chance Chance
	Reward Payload
}

// Other is an unrecognized product type that still carries a reward.
type Other struct {
	Node
	Type   string
	Reward Payload
}

// ParseProduct converts one production node. Nodes that cannot produce
// anything (wrong shape, generic reward without payload, unknown type
// without payload) return ok=false.
func ParseProduct(r gjson.Result) (Product, bool) {
	if !r.IsObject() {
		return nil, false
	}
	node := Node{
		Chance:            parseChance(r),
		OnlyWhenMotivated: city.Flag(r, "onlyWhenMotivated"),
	}
	typ, _ := city.String(r, "type")
	reward, hasReward := rewardOf(r)

	switch typ {
	case "genericReward":
		if !hasReward {
			return nil, false
		}
		return GenericReward{Node: node, Reward: reward}, true
	case "random":
		rnd := Random{Node: node}
		if subs, ok := city.Array(r, "products"); ok {
			city.Each(subs, func(sub gjson.Result) {
				if b, ok := parseBranch(sub); ok {
					rnd.Branches = append(rnd.Branches, b)
				}
			})
		}
		return rnd, true
	case "chest":
		chest := Chest{Node: node}
		city.Each(possibleRewards(r), func(c gjson.Result) {
			if !c.IsObject() {
				return
			}
			p, ok := rewardOf(c)
			if !ok {
				return
			}
			chest.Candidates = append(chest.Candidates, Candidate{Chance: parseChance(c), Reward: p})
		})
		return chest, true
	}
	if !hasReward {
		return nil, false
	}
	return Other{Node: node, Type: typ, Reward: reward}, true
}

func parseBranch(sub gjson.Result) (Branch, bool) {
	if !sub.IsObject() {
		return Branch{}, false
	}
	b := Branch{
		Chance:            parseChance(sub),
		OnlyWhenMotivated: city.Flag(sub, "onlyWhenMotivated"),
	}
	key := "reward"
	if city.Flag(sub, "product") {
		key = "product"
	}
	// A bare reward is walked as if it were a product node.
	nested, ok := city.Object(sub, key)
	if !ok {
		return Branch{}, false
	}
	p, ok := ParseProduct(nested)
	if !ok {
		return Branch{}, false
	}
	b.Product = p
	return b, true
}

func rewardOf(r gjson.Result) (Payload, bool) {
	v, ok := city.Object(r, "reward")
	if !ok {
		return Payload{}, false
	}
	return ParsePayload(v)
}

func possibleRewards(r gjson.Result) gjson.Result {
	if v, ok := city.Array(r, "possible_rewards"); ok && city.Flag(r, "possible_rewards") {
		return v
	}
	v, _ := city.Array(r, "possibleRewards")
	return v
}
