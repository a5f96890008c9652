// SPDX-License-Identifier: MIT

package search

import (
	"errors"
	"fmt"
)

// ErrRouteShape is the panic value (wrapped) raised when a mutation would
// produce a malformed route, such as a reload depot adjacent to the start
// or end depot.
var ErrRouteShape = errors.New("search: invalid route shape")

// ErrUnsupportedOperator is returned when an operator is constructed with
// parameters outside its supported range.
var ErrUnsupportedOperator = errors.New("search: unsupported operator")

// ErrInvalidNeighbourhood is returned by BuildNeighbours when the options
// are out of range.
var ErrInvalidNeighbourhood = errors.New("search: invalid neighbourhood")

// ErrInvalidParams is returned by New when the search parameters are out
// of range.
var ErrInvalidParams = errors.New("search: invalid parameters")

func invalidNeighboursf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidNeighbourhood)...)
}

func invalidParamsf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidParams)...)
}
