// SPDX-License-Identifier: MIT

package cost

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/vroute/measure"
	"github.com/katalvlaran/vroute/problem"
	"github.com/katalvlaran/vroute/solution"
)

// ErrInvalidPenalty is returned by New when a penalty rate is negative.
var ErrInvalidPenalty = errors.New("cost: invalid penalty")

// RouteCoster is the read surface the evaluator prices a route through.
// Both immutable solution routes and the search engine's working routes
// implement it.
type RouteCoster interface {
	FixedVehicleCost() measure.Cost
	Distance() measure.Distance
	UnitDistanceCost() measure.Cost
	Duration() measure.Duration
	UnitDurationCost() measure.Cost
	Overtime() measure.Duration
	UnitOvertimeCost() measure.Cost
	TimeWarp() measure.Duration
	ExcessLoad(dim int) measure.Load
	ExcessDistance() measure.Distance
	Prizes() measure.Cost
	ReloadCost() measure.Cost
}

// Evaluator prices routes and solutions. Construct with New; the zero
// value prices all violations at zero.
type Evaluator struct {
	loadPenalties []measure.Cost
	twPenalty     measure.Cost
	distPenalty   measure.Cost
}

// New returns an evaluator with the given penalty rates: one load penalty
// per dimension, a time-warp rate and an excess-distance rate. Negative
// rates return an error wrapping ErrInvalidPenalty.
func New(loadPenalties []measure.Cost, twPenalty, distPenalty measure.Cost) (*Evaluator, error) {
	for dim, p := range loadPenalties {
		if p < 0 {
			return nil, fmt.Errorf("load penalty %d is negative: %w", dim, ErrInvalidPenalty)
		}
	}
	if twPenalty < 0 || distPenalty < 0 {
		return nil, fmt.Errorf("negative rate: %w", ErrInvalidPenalty)
	}

	return &Evaluator{
		loadPenalties: append([]measure.Cost(nil), loadPenalties...),
		twPenalty:     twPenalty,
		distPenalty:   distPenalty,
	}, nil
}

// LoadPenalty prices an excess load amount in the given dimension.
func (e *Evaluator) LoadPenalty(excess measure.Load, dim int) measure.Cost {
	if excess <= 0 || dim >= len(e.loadPenalties) {
		return 0
	}

	return measure.MulCost(measure.Cost(excess), e.loadPenalties[dim])
}

// TwPenalty prices a time-warp amount.
func (e *Evaluator) TwPenalty(timeWarp measure.Duration) measure.Cost {
	if timeWarp <= 0 {
		return 0
	}
	if timeWarp == measure.MaxDuration {
		return measure.MaxCost
	}

	return measure.MulCost(measure.Cost(timeWarp), e.twPenalty)
}

// DistPenalty prices an excess-distance amount.
func (e *Evaluator) DistPenalty(excess measure.Distance) measure.Cost {
	if excess <= 0 {
		return 0
	}

	return measure.MulCost(measure.Cost(excess), e.distPenalty)
}

// PenalisedCost prices a route: real operating cost, plus penalties for
// every violation, minus the prizes collected.
func (e *Evaluator) PenalisedCost(r RouteCoster) measure.Cost {
	c := r.FixedVehicleCost()
	c = measure.AddCost(c, measure.MulCost(measure.Cost(r.Distance()), r.UnitDistanceCost()))
	c = measure.AddCost(c, measure.MulCost(measure.Cost(r.Duration()), r.UnitDurationCost()))
	c = measure.AddCost(c, measure.MulCost(measure.Cost(r.Overtime()), r.UnitOvertimeCost()))
	c = measure.AddCost(c, e.TwPenalty(r.TimeWarp()))
	c = measure.AddCost(c, e.DistPenalty(r.ExcessDistance()))
	for dim := range e.loadPenalties {
		c = measure.AddCost(c, e.LoadPenalty(r.ExcessLoad(dim), dim))
	}
	c = measure.AddCost(c, r.ReloadCost())

	return measure.AddCost(c, -r.Prizes())
}

// PenalisedSolutionCost prices a whole solution, charging the prizes of
// unassigned clients. Always finite.
func (e *Evaluator) PenalisedSolutionCost(data *problem.Data, sol *solution.Solution) measure.Cost {
	c := sol.UncollectedPrizes(data)
	for _, r := range sol.Routes() {
		c = measure.AddCost(c, e.PenalisedCost(r))
	}

	return c
}

// SolutionCost returns the exact objective: the penalised cost when the
// solution is feasible and complete (all penalty terms are then zero),
// measure.MaxCost otherwise.
func (e *Evaluator) SolutionCost(data *problem.Data, sol *solution.Solution) measure.Cost {
	if !sol.IsFeasible() {
		return measure.MaxCost
	}

	return e.PenalisedSolutionCost(data, sol)
}
