// SPDX-License-Identifier: MIT

// Package segment implements the associative load and duration algebra the
// route caches are built from.
//
// A segment summarises a consecutive stretch of visits. Two segments that
// cover adjacent stretches can be merged into one that covers both; the
// merge is associative, so prefix and suffix caches assembled from any
// split point agree. This property is what makes O(1) move evaluation
// possible: a candidate route is never materialised, it is expressed as a
// handful of cached segments merged with the affected edges.
//
// LoadSegment tracks delivery, pickup and the maximum in-vehicle load of a
// stretch. DurationSegment tracks duration, time warp and the earliest and
// latest feasible start, plus the cumulative statistics of trips that have
// already been closed by FinaliseBack/FinaliseFront (multi-trip routes).
//
// Segments are immutable value types: every operation returns a new value.
// All arithmetic that may meet the measure.Max* sentinels saturates.
package segment
