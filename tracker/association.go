package tracker

import (
	"errors"
	"fmt"
	"strings"

	hg "github.com/charles-haynes/munkres"
	"gonum.org/v1/gonum/mat"
)

// NewTrackID marks a detection in an Assignment that matched no existing
// track and will start a new one
const NewTrackID = -1

// ErrUnknownMatcher is returned when a matcher name is not recognised
var ErrUnknownMatcher = errors.New("unknown matcher")

// Matcher names accepted by MatcherByName and Config.Matcher
const (
	MatcherGreedy    = "greedy"
	MatcherHungarian = "hungarian"
	MatcherJV        = "jv"
)

// Assignment is the result of associating a frame's detections with the
// live tracks.  It is indexed by detection, each value is the matched
// track ID or NewTrackID.
type Assignment []int

// newAssignment returns an Assignment with every detection unmatched
func newAssignment(n int) Assignment {

	a := make(Assignment, n)

	for i := range a {
		a[i] = NewTrackID
	}

	return a
}

// Matched returns the track ID assigned to detection i
func (a Assignment) Matched(i int) (int, bool) {
	if i < 0 || i >= len(a) || a[i] == NewTrackID {
		return NewTrackID, false
	}
	return a[i], true
}

// Matcher associates detections with live tracks.  Tracks are supplied in
// ascending ID order and detections in the order the detector produced them.
// A track must be assigned to at most one detection.
type Matcher interface {
	Match(tracks []*Track, dets []BoundingBox) Assignment
}

// MatcherByName returns the Matcher for the given name using the IoU
// threshold supplied
func MatcherByName(name string, threshold float64) (Matcher, error) {

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MatcherGreedy:
		return GreedyMatcher{Threshold: threshold}, nil
	case MatcherHungarian:
		return HungarianMatcher{Threshold: threshold}, nil
	case MatcherJV:
		return JVMatcher{Threshold: threshold}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownMatcher, name)
}

// GreedyMatcher assigns each detection, in the order supplied, to the
// unused track it overlaps the most, provided the IoU exceeds Threshold.
// Ties go to the first track iterated, being the lowest track ID.  The
// result depends on detection order and is not globally optimal.
type GreedyMatcher struct {
	Threshold float64
}

// Match implements Matcher
func (g GreedyMatcher) Match(tracks []*Track, dets []BoundingBox) Assignment {

	res := newAssignment(len(dets))

	// tracks already claimed by an earlier detection this frame
	used := make(map[int]struct{}, len(tracks))

	for di, det := range dets {

		bestID := NewTrackID
		bestIoU := 0.0

		for _, trk := range tracks {

			if _, taken := used[trk.ID]; taken {
				continue
			}

			iou := IoU(det, trk.Box)

			if iou > bestIoU && iou > g.Threshold {
				bestIoU = iou
				bestID = trk.ID
			}
		}

		if bestID != NewTrackID {
			res[di] = bestID
			used[bestID] = struct{}{}
		}
	}

	return res
}

// HungarianMatcher finds the assignment with the minimum total cost
// (1 - IoU) using the Hungarian (Munkres) algorithm.  Pairs that do not
// exceed Threshold are never matched.
type HungarianMatcher struct {
	Threshold float64
}

// Match implements Matcher.  Should the solver reject the cost matrix the
// greedy strategy is used for the frame instead.
func (h HungarianMatcher) Match(tracks []*Track, dets []BoundingBox) Assignment {

	if len(tracks) == 0 || len(dets) == 0 {
		return newAssignment(len(dets))
	}

	ious := iouMatrix(tracks, dets)
	cost := extendedCost(ious, h.Threshold)

	ha, err := hg.NewHungarianAlgorithm(denseRows(cost))

	if err != nil {
		return GreedyMatcher{Threshold: h.Threshold}.Match(tracks, dets)
	}

	return collectMatches(ha.Execute(), tracks, ious, h.Threshold)
}

// JVMatcher solves the same minimum cost assignment as HungarianMatcher
// using the Jonker-Volgenant shortest augmenting path algorithm
type JVMatcher struct {
	Threshold float64
}

// Match implements Matcher.  Should the solver fail the greedy strategy is
// used for the frame instead.
func (j JVMatcher) Match(tracks []*Track, dets []BoundingBox) Assignment {

	if len(tracks) == 0 || len(dets) == 0 {
		return newAssignment(len(dets))
	}

	ious := iouMatrix(tracks, dets)
	cost := extendedCost(ious, j.Threshold)

	rowsol, err := solveJV(denseRows(cost))

	if err != nil {
		return GreedyMatcher{Threshold: j.Threshold}.Match(tracks, dets)
	}

	return collectMatches(rowsol, tracks, ious, j.Threshold)
}

// iouMatrix returns the tracks x detections IoU matrix
func iouMatrix(tracks []*Track, dets []BoundingBox) *mat.Dense {

	m := mat.NewDense(len(tracks), len(dets), nil)

	for ti, trk := range tracks {
		for di, det := range dets {
			m.Set(ti, di, IoU(trk.Box, det))
		}
	}

	return m
}

// extendedCost builds a square (tracks+dets) cost matrix from the IoU
// matrix so every track and detection may also stay unmatched.  Leaving a
// track and a detection both unmatched costs 1-threshold, so a pair is only
// worth matching when its cost (1-IoU) is lower, ie: IoU > threshold.
func extendedCost(ious *mat.Dense, threshold float64) *mat.Dense {

	nTracks, nDets := ious.Dims()
	n := nTracks + nDets
	limit := 1 - threshold
	gated := 2*limit + 1

	// track rows and detection columns may stay unmatched at limit/2,
	// filler rows against filler columns are free
	cost := mat.NewDense(n, n, nil)
	cost.Apply(func(i, j int, _ float64) float64 {
		if i < nTracks || j < nDets {
			return limit / 2
		}
		return 0
	}, cost)

	// real pairs cost 1-IoU unless gated by the threshold
	pairs := cost.Slice(0, nTracks, 0, nDets).(*mat.Dense)
	pairs.Apply(func(_, _ int, iou float64) float64 {
		if iou > threshold {
			return 1 - iou
		}
		return gated
	}, ious)

	return cost
}

// denseRows copies a matrix into the slice of rows the solvers take
func denseRows(m *mat.Dense) [][]float64 {

	r, c := m.Dims()
	rows := make([][]float64, r)

	for i := range rows {
		rows[i] = make([]float64, c)
		copy(rows[i], m.RawRowView(i))
	}

	return rows
}

// collectMatches converts a solver's row solution over the extended cost
// matrix into an Assignment, discarding pairs that fall below threshold
func collectMatches(rowsol []int, tracks []*Track, ious *mat.Dense,
	threshold float64) Assignment {

	_, nDets := ious.Dims()
	res := newAssignment(nDets)

	for ti := range tracks {

		if ti >= len(rowsol) {
			break
		}

		di := rowsol[ti]

		if di < 0 || di >= nDets {
			continue
		}

		if ious.At(ti, di) > threshold {
			res[di] = tracks[ti].ID
		}
	}

	return res
}
