package spec

import "fmt"

// Plan is the resolver's accumulator: one entry per distinct (Name, Guid,
// Min, Max) resolved spec. Two different exact versions of the same module
// name coexist as separate members (ordinary side-by-side installation);
// convergence onto a single version for a given name, when one is called
// for, is the admission filter's job (§4.5.2), not Plan.Add's.
type Plan struct {
	members map[Key]Spec
}

// NewPlan returns an empty Plan.
func NewPlan() *Plan {
	return &Plan{members: make(map[Key]Spec)}
}

// Add inserts s into the plan. It reports false without modifying the plan
// when an entry with the same (Name, Guid, Min, Max) is already present
// (§4.5 step 2: "if already present by structural equality, stop
// processing"); otherwise it adds s as a new member.
func (p *Plan) Add(s Spec) bool {
	k := s.Key()
	if _, ok := p.members[k]; ok {
		return false
	}
	p.members[k] = s
	return true
}

// Get returns the plan member with the given key, if any.
func (p *Plan) Get(k Key) (Spec, bool) {
	s, ok := p.members[k]
	return s, ok
}

// ByName returns every plan member named name.
func (p *Plan) ByName(name string) []Spec {
	var out []Spec
	for _, s := range p.members {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// All returns every plan member, in no particular order.
func (p *Plan) All() []Spec {
	out := make([]Spec, 0, len(p.members))
	for _, s := range p.members {
		out = append(out, s)
	}
	return out
}

// Len returns the number of plan members.
func (p *Plan) Len() int { return len(p.members) }

// Validate checks R-1 (closure) and R-2 (uniqueness) against a dependency
// lookup function, which must return the direct dependencies of a resolved
// spec's catalog entry.
func (p *Plan) Validate(deps func(Spec) []Spec) error {
	byName := make(map[string][]Spec)
	for _, s := range p.members {
		byName[s.Name] = append(byName[s.Name], s)
	}
	for _, s := range p.members {
		for _, d := range deps(s) {
			satisfied := false
			for _, candidate := range byName[d.Name] {
				if candidate.Matches(d.Min) && d.Matches(candidate.Min) {
					satisfied = true
					break
				}
			}
			if !satisfied {
				return fmt.Errorf("plan closure violated: %s depends on %s which no plan member satisfies", s.CanonicalString(), d.CanonicalString())
			}
		}
	}
	return nil
}
