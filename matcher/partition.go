package matcher

import (
	"sort"

	"github.com/viam-modules/label-compare/labels"
)

// Item is a box of one side together with its position in the annotation set.
type Item struct {
	Index int
	Box   AxisAlignedBox
}

// ClassPartition groups the items of one side of one image by class id.
// Items of a class keep annotation order.
type ClassPartition map[int][]Item

// Partition buckets an annotation set by class.
func Partition(set labels.AnnotationSet) ClassPartition {
	p := make(ClassPartition)
	for i, b := range set {
		box, cls := ToAxisAligned(b)
		p[cls] = append(p[cls], Item{Index: i, Box: box})
	}
	return p
}

// Size is the total number of items across classes.
func (p ClassPartition) Size() int {
	n := 0
	for _, items := range p {
		n += len(items)
	}
	return n
}

// classIDs returns the union of class ids of a and b in ascending order.
func classIDs(a, b ClassPartition) []int {
	seen := make(map[int]struct{}, len(a)+len(b))
	ids := make([]int, 0, len(a)+len(b))
	for _, p := range []ClassPartition{a, b} {
		for c := range p {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			ids = append(ids, c)
		}
	}
	sort.Ints(ids)
	return ids
}
