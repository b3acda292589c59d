package scorer

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

const (
	// MinScore is the lowest value on the rubric scale.
	MinScore = 1
	// MaxScore is the highest value on the rubric scale.
	MaxScore = 5
	// CenterScore is the "competent" value the target curve peaks at.
	CenterScore = 3

	// sumTolerance is how far the percentages may drift from 100.
	sumTolerance = 0.01
	// remainderEpsilon treats two fractional remainders as equal.
	remainderEpsilon = 1e-9
)

// Distribution is a target percentage per score value. The zero value is
// invalid; build one with NewDistribution, ParseDistribution or
// DefaultDistribution.
type Distribution struct {
	percent [MaxScore + 1]float64
}

// Counts holds a per-value count, indexed by score value. Index 0 is unused.
type Counts [MaxScore + 1]int

// DefaultDistribution returns the grading curve used for suturing
// assessments: 3% poor, 7% substandard, 80% competent, 7% proficient,
// 3% exemplary.
func DefaultDistribution() (d Distribution) {
	d.percent = [MaxScore + 1]float64{0, 3, 7, 80, 7, 3}
	return d
}

// NewDistribution builds and validates a distribution from percentages keyed
// by score value. Missing values count as 0%.
func NewDistribution(percentages map[int]float64) (d Distribution, err error) {
	for value, pct := range percentages {
		if value < MinScore || value > MaxScore {
			err = &InvalidDistributionError{Reason: fmt.Sprintf("score value %d is outside %d-%d", value, MinScore, MaxScore)}
			return d, err
		}
		d.percent[value] = pct
	}

	err = d.Validate()
	return d, err
}

// ParseDistribution parses five comma-separated percentages for the values
// 1 through 5, e.g. "3,7,80,7,3".
func ParseDistribution(s string) (d Distribution, err error) {
	parts := strings.Split(s, ",")
	if len(parts) != MaxScore {
		err = &InvalidDistributionError{Reason: fmt.Sprintf("expected %d comma-separated percentages, got %d", MaxScore, len(parts))}
		return d, err
	}

	for i, part := range parts {
		var pct float64
		pct, err = strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			err = &InvalidDistributionError{Reason: fmt.Sprintf("percentage for score %d is not a number: %q", i+MinScore, part)}
			return d, err
		}
		d.percent[i+MinScore] = pct
	}

	err = d.Validate()
	return d, err
}

// Validate checks that no percentage is negative and that they sum to 100.
func (d Distribution) Validate() (err error) {
	total := 0.0
	for v := MinScore; v <= MaxScore; v++ {
		pct := d.percent[v]
		if math.IsNaN(pct) || math.IsInf(pct, 0) {
			err = &InvalidDistributionError{Reason: fmt.Sprintf("percentage for score %d is not finite", v)}
			return err
		}
		if pct < 0 {
			err = &InvalidDistributionError{Reason: fmt.Sprintf("percentage for score %d is negative: %g", v, pct)}
			return err
		}
		total += pct
	}

	if math.Abs(total-100) > sumTolerance {
		err = &InvalidDistributionError{Reason: fmt.Sprintf("percentages sum to %g, must sum to 100", total)}
		return err
	}

	return err
}

// Percent returns the target percentage for a score value.
func (d Distribution) Percent(value int) (pct float64) {
	if value < MinScore || value > MaxScore {
		return pct
	}
	pct = d.percent[value]
	return pct
}

// Map returns the percentages keyed by score value.
func (d Distribution) Map() (m map[int]float64) {
	m = make(map[int]float64, MaxScore)
	for v := MinScore; v <= MaxScore; v++ {
		m[v] = d.percent[v]
	}
	return m
}

func (d Distribution) String() (s string) {
	parts := make([]string, 0, MaxScore)
	for v := MinScore; v <= MaxScore; v++ {
		parts = append(parts, fmt.Sprintf("%d:%g%%", v, d.percent[v]))
	}
	s = strings.Join(parts, " ")
	return s
}

// Apportion turns the target percentages into exact integer counts for n
// items using the largest-remainder method. Each value first receives the
// floor of its quota; the leftover units go one each to the values with the
// largest fractional remainder. Equal remainders prefer the value closest to
// CenterScore, then the lower value. The counts always sum to n.
func Apportion(d Distribution, n int) (counts Counts, err error) {
	if n < 1 {
		err = &InvalidInputError{Reason: fmt.Sprintf("cannot apportion %d items", n)}
		return counts, err
	}

	err = d.Validate()
	if err != nil {
		return counts, err
	}

	type share struct {
		value     int
		remainder float64
	}

	// Scale by the actual total so quotas sum to n even within tolerance.
	total := 0.0
	for v := MinScore; v <= MaxScore; v++ {
		total += d.percent[v]
	}

	assigned := 0
	shares := make([]share, 0, MaxScore)
	for v := MinScore; v <= MaxScore; v++ {
		quota := d.percent[v] / total * float64(n)
		whole := math.Floor(quota)
		counts[v] = int(whole)
		assigned += counts[v]
		shares = append(shares, share{value: v, remainder: quota - whole})
	}

	sort.SliceStable(shares, func(i, j int) (less bool) {
		a, b := shares[i], shares[j]
		if math.Abs(a.remainder-b.remainder) > remainderEpsilon {
			less = a.remainder > b.remainder
			return less
		}
		da, db := distanceFromCenter(a.value), distanceFromCenter(b.value)
		if da != db {
			less = da < db
			return less
		}
		less = a.value < b.value
		return less
	})

	for k := 0; assigned < n; k++ {
		counts[shares[k%len(shares)].value]++
		assigned++
	}

	return counts, err
}

// Total returns the number of items the counts describe.
func (c Counts) Total() (total int) {
	for v := MinScore; v <= MaxScore; v++ {
		total += c[v]
	}
	return total
}

// Expand returns the multiset the counts describe, sorted ascending.
func (c Counts) Expand() (values []int) {
	values = make([]int, 0, c.Total())
	for v := MinScore; v <= MaxScore; v++ {
		for range c[v] {
			values = append(values, v)
		}
	}
	return values
}

// CountValues builds a histogram of the given scores. Values outside the
// scale are ignored.
func CountValues(scores []int) (counts Counts) {
	for _, s := range scores {
		if s < MinScore || s > MaxScore {
			continue
		}
		counts[s]++
	}
	return counts
}

func (c Counts) String() (s string) {
	parts := make([]string, 0, MaxScore)
	for v := MinScore; v <= MaxScore; v++ {
		parts = append(parts, fmt.Sprintf("%d:%d", v, c[v]))
	}
	s = strings.Join(parts, " ")
	return s
}

func distanceFromCenter(value int) (d int) {
	d = value - CenterScore
	if d < 0 {
		d = -d
	}
	return d
}
