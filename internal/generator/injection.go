package generator

import (
	"math"
	"sort"
)

const (
	// InvalidRowRatio is the share of a batch made invalid on request.
	InvalidRowRatio = 0.5

	// InlineEditInvalidCap bounds the invalid rows of an inline-editable batch,
	// the most a reviewer is expected to correct by hand.
	InlineEditInvalidCap = 49

	// MaxInvalidFieldsPerRow bounds how many fields one invalid row corrupts.
	MaxInvalidFieldsPerRow = 3
)

// InvalidCount is the number of invalid rows in a batch of rowCount.
func InvalidCount(rowCount int, inject, inlineEdit bool) int {
	if !inject || rowCount <= 0 {
		return 0
	}
	n := int(math.Floor(float64(rowCount) * InvalidRowRatio))
	if inlineEdit && n > InlineEditInvalidCap {
		n = InlineEditInvalidCap
	}
	return n
}

// Plan marks which row positions are invalid. The first rowCount-invalid
// positions start valid and the rest invalid, then the whole batch is
// shuffled; no position is exempt.
func Plan(src Source, rowCount int, inject, inlineEdit bool) []bool {
	if rowCount <= 0 {
		return nil
	}
	invalid := InvalidCount(rowCount, inject, inlineEdit)
	plan := make([]bool, rowCount)
	for i := rowCount - invalid; i < rowCount; i++ {
		plan[i] = true
	}
	Shuffle(src, len(plan), func(i, j int) {
		plan[i], plan[j] = plan[j], plan[i]
	})
	return plan
}

// chooseFields picks between 1 and MaxInvalidFieldsPerRow distinct indices
// of eligible, uniformly, returned in ascending order.
func chooseFields(src Source, eligible int) []int {
	if eligible <= 0 {
		return nil
	}
	k := src.IntRange(1, min(MaxInvalidFieldsPerRow, eligible))
	idx := make([]int, eligible)
	for i := range idx {
		idx[i] = i
	}
	Shuffle(src, eligible, func(i, j int) {
		idx[i], idx[j] = idx[j], idx[i]
	})
	chosen := idx[:k]
	sort.Ints(chosen)
	return chosen
}

