// SPDX-License-Identifier: MIT

package solution

import "errors"

// ErrInvalidSolution is returned by the constructors when a visit list
// does not describe a well-formed solution for the instance. The returned
// error wraps this sentinel with the specific violation; match with
// errors.Is.
var ErrInvalidSolution = errors.New("solution: invalid solution")
