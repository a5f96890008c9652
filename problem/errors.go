// SPDX-License-Identifier: MIT

package problem

import "errors"

// ErrInvalidInstance is returned by New when the instance description
// violates a structural invariant. The returned error wraps this sentinel
// with the specific violation; match with errors.Is.
var ErrInvalidInstance = errors.New("problem: invalid instance")
