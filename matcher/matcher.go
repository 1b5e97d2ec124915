package matcher

import (
	"sort"

	"github.com/viam-modules/label-compare/labels"
)

// DefaultThreshold is the IoU at or above which a match counts as strong.
const DefaultThreshold = 0.9

// Side names the annotation set a box belongs to.
type Side int

const (
	// SideA is the reference set.
	SideA Side = iota
	// SideB is the candidate set.
	SideB
)

func (s Side) String() string {
	if s == SideA {
		return "A"
	}
	return "B"
}

// MatchRecord is one established correspondence.
type MatchRecord struct {
	IndexA  int
	IndexB  int
	ClassID int
	IoU     float64
}

// UnmatchedRecord is a box left without a counterpart. Side is the set the box
// was read from.
type UnmatchedRecord struct {
	Index   int
	ClassID int
	Side    Side
}

// ComparisonResult is the outcome of matching one image.
// MissingInA holds boxes found only in B; MissingInB holds boxes found only in A.
type ComparisonResult struct {
	Strong     []MatchRecord
	Weak       []MatchRecord
	MissingInA []UnmatchedRecord
	MissingInB []UnmatchedRecord
}

// Matches returns the number of matched pairs.
func (r ComparisonResult) Matches() int {
	return len(r.Strong) + len(r.Weak)
}

type candidate struct {
	iou  float64
	a, b int // positions within the class item lists
}

// Compare partitions both sets and matches them.
func Compare(a, b labels.AnnotationSet, threshold float64) ComparisonResult {
	return Match(Partition(a), Partition(b), threshold)
}

// Match greedily pairs items of the same class by descending IoU. Classes are
// visited in ascending id order. Pairs with equal IoU keep their enumeration order
// (A-major, B-minor), so the result is deterministic. The matching is maximal
// per class but not globally optimal.
func Match(a, b ClassPartition, threshold float64) ComparisonResult {
	var res ComparisonResult
	for _, cls := range classIDs(a, b) {
		itemsA, itemsB := a[cls], b[cls]
		usedA := make([]bool, len(itemsA))
		usedB := make([]bool, len(itemsB))

		for _, c := range rankCandidates(itemsA, itemsB) {
			if usedA[c.a] || usedB[c.b] {
				continue
			}
			usedA[c.a], usedB[c.b] = true, true
			rec := MatchRecord{IndexA: itemsA[c.a].Index, IndexB: itemsB[c.b].Index, ClassID: cls, IoU: c.iou}
			if c.iou >= threshold {
				res.Strong = append(res.Strong, rec)
			} else {
				res.Weak = append(res.Weak, rec)
			}
		}
		for i, used := range usedA {
			if !used {
				res.MissingInB = append(res.MissingInB, UnmatchedRecord{Index: itemsA[i].Index, ClassID: cls, Side: SideA})
			}
		}
		for j, used := range usedB {
			if !used {
				res.MissingInA = append(res.MissingInA, UnmatchedRecord{Index: itemsB[j].Index, ClassID: cls, Side: SideB})
			}
		}
	}
	return res
}

// rankCandidates returns every cross pair sorted by IoU, highest first.
func rankCandidates(itemsA, itemsB []Item) []candidate {
	if len(itemsA) == 0 || len(itemsB) == 0 {
		return nil
	}
	pairs := make([]candidate, 0, len(itemsA)*len(itemsB))
	for i, ia := range itemsA {
		for j, ib := range itemsB {
			pairs = append(pairs, candidate{iou: IoU(ia.Box, ib.Box), a: i, b: j})
		}
	}
	sort.SliceStable(pairs, func(x, y int) bool {
		return pairs[x].iou > pairs[y].iou
	})
	return pairs
}
