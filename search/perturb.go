// SPDX-License-Identifier: MIT

package search

import (
	"github.com/katalvlaran/vroute/cost"
	"github.com/katalvlaran/vroute/rng"
)

// PerturbationParams bounds how many random ruin-and-recreate moves a
// perturbation applies. The count is redrawn on every Shuffle.
type PerturbationParams struct {
	MinPerturbations int
	MaxPerturbations int
}

// Validate checks 0 <= min <= max.
func (p PerturbationParams) Validate() error {
	if p.MinPerturbations < 0 || p.MinPerturbations > p.MaxPerturbations {
		return invalidParamsf("perturbations [%d, %d]", p.MinPerturbations, p.MaxPerturbations)
	}

	return nil
}

// perturber applies random destroy/insert moves, accepting them without
// regard for cost. Same-vehicle guards and required flags still hold.
type perturber struct {
	params PerturbationParams
	k      int
}

func newPerturber(params PerturbationParams) *perturber {
	return &perturber{params: params, k: params.MinPerturbations}
}

// shuffle redraws the move count for the next perturb call.
func (p *perturber) shuffle(gen *rng.Generator) {
	span := p.params.MaxPerturbations - p.params.MinPerturbations + 1
	p.k = p.params.MinPerturbations + int(gen.RandInt(uint32(span)))
}

// perturb applies k random moves: an unrouted client is inserted at its
// best position, a routed one is torn out and reinserted somewhere
// random. Optional clients may stay out on a coin flip.
func (p *perturber) perturb(s *state, space *SearchSpace, ev *cost.Evaluator, gen *rng.Generator) {
	if s.data.NumClients() == 0 {
		return
	}
	var i int
	for i = 0; i < p.k; i++ {
		loc := s.data.NumDepots() + int(gen.RandInt(uint32(s.data.NumClients())))
		u := s.node(loc)
		required := s.data.Client(loc).Required
		if u.route == nil {
			s.insert(u, space, ev, required)
			continue
		}
		r := u.route
		removeClient(u)
		r.Update()
		if !required && gen.Next()%2 == 0 {
			continue
		}
		p.reinsert(s, space, u, gen)
	}
}

// reinsert places u after a random routed neighbour, falling back to the
// head of a compatible route. u may stay unrouted when no compatible spot
// exists; a later node pass picks it up.
func (p *perturber) reinsert(s *state, space *SearchSpace, u *Node, gen *rng.Generator) {
	compat := s.insertCompatible(u)
	nbs := space.Neighbours(u.loc)
	var t int
	for t = 0; t < len(nbs); t++ {
		v := s.nodes[nbs[int(gen.RandInt(uint32(len(nbs))))]]
		if v.route != nil && compat(v.route) {
			v.route.Insert(v.Idx()+1, u)
			v.route.Update()

			return
		}
	}
	start := int(gen.RandInt(uint32(len(s.routes))))
	for t = 0; t < len(s.routes); t++ {
		r := s.routes[(start+t)%len(s.routes)]
		if compat(r) {
			r.Insert(1, u)
			r.Update()

			return
		}
	}
}
