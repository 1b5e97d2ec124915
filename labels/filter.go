package labels

// Filter maps an annotation set to a subset of itself.
type Filter func(AnnotationSet) AnnotationSet

// NewClassFilter returns a Filter that keeps only boxes whose class is in chosen.
// An empty chosen list keeps every box.
func NewClassFilter(chosen []int) Filter {
	return func(set AnnotationSet) AnnotationSet {
		// If it's empty, return the input.
		if len(chosen) < 1 {
			return set
		}
		keep := make(map[int]struct{}, len(chosen))
		for _, c := range chosen {
			keep[c] = struct{}{}
		}
		out := make(AnnotationSet, 0, len(set))
		for _, b := range set {
			if _, ok := keep[b.ClassID]; ok {
				out = append(out, b)
			}
		}
		return out
	}
}
