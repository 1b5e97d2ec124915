// Package labels reads object-detection annotation files into normalized boxes.
// A box is kept in YOLO form (class, center x, center y, width, height) and is never
// mutated once read.
package labels

// Box is a single annotation in normalized YOLO form.
type Box struct {
	ClassID int
	CX      float64
	CY      float64
	W       float64
	H       float64
}

// NewBox builds a Box from its class and normalized center/size.
func NewBox(classID int, cx, cy, w, h float64) Box {
	return Box{ClassID: classID, CX: cx, CY: cy, W: w, H: h}
}

// AnnotationSet holds the boxes of one file in line order. The position of a box
// is its identity within the file.
type AnnotationSet []Box

// Classes returns how many boxes of each class the set holds.
func (s AnnotationSet) Classes() map[int]int {
	out := make(map[int]int)
	for _, b := range s {
		out[b.ClassID]++
	}
	return out
}
