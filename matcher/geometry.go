// Package matcher pairs the boxes of two annotation sets by IoU, class by class.
package matcher

import (
	"math"

	"github.com/viam-modules/label-compare/labels"
)

// unionFloor keeps IoU finite when both boxes have zero area.
const unionFloor = 1e-12

// AxisAlignedBox is a box given by its corners.
type AxisAlignedBox struct {
	X1, Y1, X2, Y2 float64
}

// ToAxisAligned converts a center/size box into corner form and returns its class.
func ToAxisAligned(b labels.Box) (AxisAlignedBox, int) {
	return AxisAlignedBox{
		X1: b.CX - b.W/2,
		Y1: b.CY - b.H/2,
		X2: b.CX + b.W/2,
		Y2: b.CY + b.H/2,
	}, b.ClassID
}

// Area is zero for degenerate or inverted boxes.
func (r AxisAlignedBox) Area() float64 {
	return math.Max(0, r.X2-r.X1) * math.Max(0, r.Y2-r.Y1)
}

// IoU returns the intersection over union of 2 boxes, in [0,1].
func IoU(a, b AxisAlignedBox) float64 {
	iw := math.Min(a.X2, b.X2) - math.Max(a.X1, b.X1)
	ih := math.Min(a.Y2, b.Y2) - math.Max(a.Y1, b.Y1)
	if iw <= 0 || ih <= 0 {
		return 0
	}
	inter := iw * ih
	return inter / math.Max(unionFloor, a.Area()+b.Area()-inter)
}
