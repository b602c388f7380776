package production

import "iter"

// Ref is a terminal reward reached by walking a production definition,
// together with the context inherited along the path.
type Ref struct {
	// RewardID is empty when the payload has no id; the payload is then
	// the only description of the reward.
	RewardID string
	Payload  Payload

	OptionName    string
	OptionTime    int
	HasOptionTime bool

	Chance             Chance
	RequiresMotivation bool
}

type frame struct {
	opt        *Option
	chance     Chance
	motivation bool
}

func (f frame) enter(chance Chance, motivated bool) frame {
	f.chance = chance.or(f.chance)
	f.motivation = f.motivation || motivated
	return f
}

func (f frame) ref(p Payload, chance Chance) Ref {
	return Ref{
		RewardID:           p.ID,
		Payload:            p,
		OptionName:         f.opt.Name,
		OptionTime:         f.opt.Time,
		HasOptionTime:      f.opt.HasTime,
		Chance:             chance,
		RequiresMotivation: f.motivation,
	}
}

// Resolve flattens the options into terminal reward references, lazily and
// in definition order.
func Resolve(options []Option) iter.Seq[Ref] {
	return func(yield func(Ref) bool) {
		for i := range options {
			root := frame{opt: &options[i], motivation: options[i].OnlyWhenMotivated}
			for _, p := range options[i].Products {
				if !walk(p, root, yield) {
					return
				}
			}
		}
	}
}

func walk(p Product, in frame, yield func(Ref) bool) bool {
	n := p.base()
	f := in.enter(n.Chance, n.OnlyWhenMotivated)

	switch p := p.(type) {
	case GenericReward:
		return yield(f.ref(p.Reward, f.chance))
	case Random:
		for _, b := range p.Branches {
			if !walk(b.Product, f.enter(b.Chance, b.OnlyWhenMotivated), yield) {
				return false
			}
		}
	case Chest:
		// Candidates roll on their own odds only.
		for _, c := range p.Candidates {
			if !yield(f.ref(c.Reward, c.Chance)) {
				return false
			}
		}
	case Other:
		return yield(f.ref(p.Reward, f.chance))
	}
	return true
}
