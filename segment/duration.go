// SPDX-License-Identifier: MIT

package segment

import "github.com/katalvlaran/vroute/measure"

// DurationSegment summarises the schedule of a consecutive stretch of
// visits. The stretch consists of zero or more trips closed by
// FinaliseBack/FinaliseFront plus one open part.
//
// For the open part:
//   - Duration is travel + service + unavoidable wait;
//   - TimeWarp is the time-window violation accumulated inside it;
//   - [StartEarly, StartLate] is the window of feasible start times that
//     minimise duration and warp;
//   - ReleaseTime is the latest release over its visits (the part cannot
//     start before it).
//
// CumDuration and CumTimeWarp aggregate the closed trips. PrevEndLate is
// the latest time the trip preceding the open part may end
// (measure.MaxDuration when there is none).
//
// Invariant: merging never loses warp. Whenever the open part of a cannot
// reach the open part of b in time, the deficit is converted into TimeWarp
// and the start window is shrunk accordingly, so a segment always admits at
// least one feasible start.
type DurationSegment struct {
	duration    measure.Duration
	timeWarp    measure.Duration
	startEarly  measure.Duration
	startLate   measure.Duration
	releaseTime measure.Duration
	cumDuration measure.Duration
	cumTimeWarp measure.Duration
	prevEndLate measure.Duration
}

// NewDurationSegment returns the segment of a single visit: service takes
// duration, the visit may start within [startEarly, startLate], and cannot
// start before releaseTime.
func NewDurationSegment(duration, startEarly, startLate, releaseTime measure.Duration) DurationSegment {
	return DurationSegment{
		duration:    duration,
		startEarly:  startEarly,
		startLate:   startLate,
		releaseTime: releaseTime,
		prevEndLate: measure.MaxDuration,
	}
}

// MergeDuration joins a and b with an arc of edgeDuration between them
// (a immediately before b).
//
// Contracts:
//   - associative for a fixed split of the underlying visit sequence;
//   - the merged warp is a.warp + b.warp + the deficit between a's earliest
//     exit and b's latest start;
//   - the merged start window is shrunk so that starting inside it attains
//     exactly the merged duration and warp.
//
// Complexity: O(1).
func MergeDuration(edgeDuration measure.Duration, a, b DurationSegment) DurationSegment {
	// delta is the time spent between starting a and arriving at b, net of
	// warp already charged inside a.
	delta := measure.AddDuration(a.duration-a.timeWarp, edgeDuration)

	var wait, warp measure.Duration
	if a.startLate != measure.MaxDuration {
		if v := measure.AddDuration(measure.AddDuration(b.startEarly, -delta), -a.startLate); v > 0 {
			wait = v
		}
	}
	if b.startLate != measure.MaxDuration {
		if v := measure.AddDuration(measure.AddDuration(a.startEarly, delta), -b.startLate); v > 0 {
			warp = v
		}
	}

	startEarly := measure.MaxOf(b.startEarly-delta, a.startEarly) - wait
	startLate := measure.AddDuration(measure.MinOf(measure.AddDuration(b.startLate, -delta), a.startLate), warp)

	return DurationSegment{
		duration:    measure.AddDuration(measure.AddDuration(a.duration+b.duration, edgeDuration), wait),
		timeWarp:    measure.AddDuration(a.timeWarp+b.timeWarp, warp),
		startEarly:  startEarly,
		startLate:   startLate,
		releaseTime: measure.MaxOf(a.releaseTime, b.releaseTime),
		cumDuration: a.cumDuration + b.cumDuration,
		cumTimeWarp: a.cumTimeWarp + b.cumTimeWarp,
		prevEndLate: measure.MinOf(a.prevEndLate, b.prevEndLate),
	}
}

// releaseWarp is the warp incurred because the open part cannot start
// before its release time but must start by startLate.
func (s DurationSegment) releaseWarp() measure.Duration {
	if s.releaseTime > s.startLate {
		return s.releaseTime - s.startLate
	}

	return 0
}

// FinaliseBack closes the open part as a completed trip and opens an empty
// part anchored at the trip's earliest end. Used when building prefix
// caches left-to-right across a reload depot.
func (s DurationSegment) FinaliseBack() DurationSegment {
	warp := measure.AddDuration(s.timeWarp, s.releaseWarp())

	return DurationSegment{
		cumDuration: measure.AddDuration(s.cumDuration, s.duration),
		cumTimeWarp: measure.AddDuration(s.cumTimeWarp, warp),
		startEarly:  s.EndEarly(),
		startLate:   measure.MaxDuration,
		prevEndLate: s.EndLate(),
	}
}

// FinaliseFront closes the open part as a future trip and opens an empty
// part that must finish by that trip's latest start. Used when building
// suffix caches right-to-left across a reload depot.
func (s DurationSegment) FinaliseFront() DurationSegment {
	warp := measure.AddDuration(s.timeWarp, s.releaseWarp())

	return DurationSegment{
		cumDuration: measure.AddDuration(s.cumDuration, s.duration),
		cumTimeWarp: measure.AddDuration(s.cumTimeWarp, warp),
		startEarly:  0,
		startLate:   s.startLate,
		prevEndLate: s.prevEndLate,
	}
}

// Duration returns the total duration: closed trips plus the open part.
// Idle time parked at a depot between trips is not counted.
func (s DurationSegment) Duration() measure.Duration {
	return measure.AddDuration(s.cumDuration, s.duration)
}

// TimeWarp returns the total warp given the maximum total duration the
// vehicle may be underway (shift plus allowed overtime); any excess beyond
// maxDuration is charged as warp.
func (s DurationSegment) TimeWarp(maxDuration measure.Duration) measure.Duration {
	warp := measure.AddDuration(
		measure.AddDuration(s.cumTimeWarp, s.timeWarp),
		s.releaseWarp(),
	)
	if d := s.Duration(); d > maxDuration {
		warp = measure.AddDuration(warp, d-maxDuration)
	}

	return warp
}

// StartEarly returns the earliest feasible start of the open part.
func (s DurationSegment) StartEarly() measure.Duration { return s.startEarly }

// StartLate returns the latest feasible start of the open part.
func (s DurationSegment) StartLate() measure.Duration { return s.startLate }

// ReleaseTime returns the largest release time over the open part.
func (s DurationSegment) ReleaseTime() measure.Duration { return s.releaseTime }

// PrevEndLate returns the latest possible end of the trip preceding the
// open part, or measure.MaxDuration when there is none.
func (s DurationSegment) PrevEndLate() measure.Duration { return s.prevEndLate }

// EndEarly returns the earliest possible end of the open part.
func (s DurationSegment) EndEarly() measure.Duration {
	start := measure.MinOf(measure.MaxOf(s.startEarly, s.releaseTime), s.startLate)

	return measure.AddDuration(start, s.duration-s.timeWarp)
}

// EndLate returns the latest possible end of the open part.
func (s DurationSegment) EndLate() measure.Duration {
	return measure.AddDuration(s.startLate, s.duration-s.timeWarp)
}

// Slack returns the width of the feasible start window.
func (s DurationSegment) Slack() measure.Duration {
	return measure.AddDuration(s.startLate, -s.startEarly)
}

// CumDuration returns the duration already accumulated in closed trips.
func (s DurationSegment) CumDuration() measure.Duration { return s.cumDuration }

// CumTimeWarp returns the warp already accumulated in closed trips.
func (s DurationSegment) CumTimeWarp() measure.Duration { return s.cumTimeWarp }
