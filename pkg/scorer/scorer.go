// Package scorer remaps raw rubric scores onto a target grading curve and
// derives the final score and label for an assessment.
package scorer

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// TiePolicy decides how items with equal raw scores are treated.
type TiePolicy string

const (
	// TiesShareScore gives every item in a block of equal raw scores the same
	// adjusted score: the most common value in the slice of the target
	// multiset the block covers. Order is preserved, but the adjusted counts
	// can drift from the apportioned ones when blocks are large; use
	// TiesByPosition when the counts must match exactly.
	TiesShareScore TiePolicy = "share"
	// TiesByPosition breaks ties by input order, so the adjusted multiset
	// matches the apportioned counts exactly.
	TiesByPosition TiePolicy = "position"
)

// ParseTiePolicy maps a flag or config value to a TiePolicy. An empty string
// selects TiesShareScore.
func ParseTiePolicy(s string) (policy TiePolicy, err error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(TiesShareScore):
		policy = TiesShareScore
	case string(TiesByPosition):
		policy = TiesByPosition
	default:
		err = errors.Errorf("unknown tie policy %q: must be %q or %q", s, TiesShareScore, TiesByPosition)
	}
	return policy, err
}

// ValidateScores fails on the first score outside the 1-5 scale.
func ValidateScores(scores []int) (err error) {
	for i, s := range scores {
		if s < MinScore || s > MaxScore {
			err = &InvalidScoreError{Index: i, Value: s}
			return err
		}
	}
	return err
}

// Normalize remaps raw scores onto the target distribution using
// TiesShareScore, so the adjusted counts may differ from Apportion's when
// raw scores tie. See NormalizeWithPolicy.
func Normalize(raw []int, target Distribution) (adjusted []int, err error) {
	adjusted, err = NormalizeWithPolicy(raw, target, TiesShareScore)
	return adjusted, err
}

// NormalizeWithPolicy remaps raw scores so the adjusted multiset follows the
// target distribution as closely as integer counts allow, without inverting
// the raw order: raw[i] < raw[j] implies adjusted[i] <= adjusted[j].
//
// The target is apportioned into counts for len(raw) items, expanded into a
// sorted multiset, and handed out in rank order of the raw scores (stable,
// so equal raw scores keep their input order). Output order matches input.
func NormalizeWithPolicy(raw []int, target Distribution, policy TiePolicy) (adjusted []int, err error) {
	if len(raw) == 0 {
		err = &InvalidInputError{Reason: "no scores to normalize"}
		return adjusted, err
	}

	err = ValidateScores(raw)
	if err != nil {
		return adjusted, err
	}

	var counts Counts
	counts, err = Apportion(target, len(raw))
	if err != nil {
		return adjusted, err
	}
	pool := counts.Expand()

	// Rank items by raw score, lowest first.
	order := make([]int, len(raw))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) (less bool) {
		less = raw[order[a]] < raw[order[b]]
		return less
	})

	adjusted = make([]int, len(raw))

	if policy == TiesByPosition {
		for rank, idx := range order {
			adjusted[idx] = pool[rank]
		}
		return adjusted, err
	}

	for start := 0; start < len(order); {
		end := start + 1
		for end < len(order) && raw[order[end]] == raw[order[start]] {
			end++
		}

		value := blockValue(pool[start:end])
		for _, idx := range order[start:end] {
			adjusted[idx] = value
		}

		start = end
	}

	return adjusted, err
}

// blockValue picks the most frequent value of a sorted slice; equal
// frequencies prefer the value closest to CenterScore, then the lower value.
func blockValue(block []int) (value int) {
	counts := CountValues(block)

	best := 0
	for v := MinScore; v <= MaxScore; v++ {
		if counts[v] == 0 {
			continue
		}
		switch {
		case best == 0, counts[v] > counts[best]:
			best = v
		case counts[v] == counts[best] && distanceFromCenter(v) < distanceFromCenter(best):
			best = v
		}
	}

	value = best
	return value
}
