package comparator

import (
	"sort"
	"time"

	"github.com/viam-modules/label-compare/matcher"
)

// FileResult is the comparison of one stem. Err is set when the stem was skipped
// because one of its files could not be parsed; Result is then empty.
type FileResult struct {
	Stem   string
	PathA  string
	PathB  string
	CountA int
	CountB int
	Result matcher.ComparisonResult
	Audit  *matcher.AuditResult
	Err    error
	Took   time.Duration
}

// ClassTotals are the corpus counts of a single class.
type ClassTotals struct {
	Strong     int
	Weak       int
	MissingInA int
	MissingInB int
	IoUSum     float64
}

// MeanIoU over the matches of this class, 0 when there are none.
func (ct *ClassTotals) MeanIoU() float64 {
	if n := ct.Strong + ct.Weak; n > 0 {
		return ct.IoUSum / float64(n)
	}
	return 0
}

// Accumulator holds the running totals of a run. It is owned by the run and is
// only written from the goroutine folding results in stem order.
type Accumulator struct {
	Threshold  float64
	Files      int
	Skipped    []string
	Strong     int
	Weak       int
	MissingInA int
	MissingInB int
	Classes    map[int]*ClassTotals
	Audit      *matcher.AuditResult

	iouSum   float64
	iouCount int
}

func newAccumulator(threshold float64, audit bool) *Accumulator {
	acc := &Accumulator{Threshold: threshold, Classes: make(map[int]*ClassTotals)}
	if audit {
		acc.Audit = &matcher.AuditResult{}
	}
	return acc
}

func (acc *Accumulator) class(id int) *ClassTotals {
	ct, ok := acc.Classes[id]
	if !ok {
		ct = &ClassTotals{}
		acc.Classes[id] = ct
	}
	return ct
}

// Fold adds one stem's result to the totals.
func (acc *Accumulator) Fold(fr FileResult) {
	acc.Files++
	if fr.Err != nil {
		acc.Skipped = append(acc.Skipped, fr.Stem)
		return
	}
	res := fr.Result
	acc.Strong += len(res.Strong)
	acc.Weak += len(res.Weak)
	acc.MissingInA += len(res.MissingInA)
	acc.MissingInB += len(res.MissingInB)
	for _, m := range res.Strong {
		ct := acc.class(m.ClassID)
		ct.Strong++
		ct.IoUSum += m.IoU
		acc.iouSum += m.IoU
		acc.iouCount++
	}
	for _, m := range res.Weak {
		ct := acc.class(m.ClassID)
		ct.Weak++
		ct.IoUSum += m.IoU
		acc.iouSum += m.IoU
		acc.iouCount++
	}
	for _, u := range res.MissingInA {
		acc.class(u.ClassID).MissingInA++
	}
	for _, u := range res.MissingInB {
		acc.class(u.ClassID).MissingInB++
	}
	if acc.Audit != nil && fr.Audit != nil {
		*acc.Audit = acc.Audit.Add(*fr.Audit)
	}
}

// Matches is the number of strong and weak matches.
func (acc *Accumulator) Matches() int {
	return acc.Strong + acc.Weak
}

// MeanIoU over every recorded match, 0 when there are none.
func (acc *Accumulator) MeanIoU() float64 {
	if acc.iouCount == 0 {
		return 0
	}
	return acc.iouSum / float64(acc.iouCount)
}

// Agreement is the share of compared boxes that found a strong counterpart:
// strong / (matches + missing on either side). An empty corpus agrees fully.
func (acc *Accumulator) Agreement() float64 {
	denom := acc.Matches() + acc.MissingInA + acc.MissingInB
	if denom == 0 {
		return 1
	}
	return float64(acc.Strong) / float64(denom)
}

// ClassIDs returns the classes seen in the run, ascending.
func (acc *Accumulator) ClassIDs() []int {
	ids := make([]int, 0, len(acc.Classes))
	for id := range acc.Classes {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
