package matcher

import (
	hg "github.com/charles-haynes/munkres"
	"github.com/pkg/errors"
)

// AuditResult compares the total IoU kept by the greedy matching with the best
// total any one-to-one assignment could reach on the same image.
type AuditResult struct {
	GreedyIoU  float64
	OptimalIoU float64
}

// Shortfall is how much total IoU the greedy matching left on the table.
func (r AuditResult) Shortfall() float64 {
	if d := r.OptimalIoU - r.GreedyIoU; d > 0 {
		return d
	}
	return 0
}

// Add sums two audits.
func (r AuditResult) Add(o AuditResult) AuditResult {
	return AuditResult{GreedyIoU: r.GreedyIoU + o.GreedyIoU, OptimalIoU: r.OptimalIoU + o.OptimalIoU}
}

// Audit solves, per class, the maximum-total-IoU assignment between a and b with
// the Hungarian method and reports it next to the greedy total. It does not change
// the matching; res must be the result of Match on the same partitions.
func Audit(a, b ClassPartition, res ComparisonResult) (AuditResult, error) {
	var out AuditResult
	for _, r := range res.Strong {
		out.GreedyIoU += r.IoU
	}
	for _, r := range res.Weak {
		out.GreedyIoU += r.IoU
	}
	for _, cls := range classIDs(a, b) {
		itemsA, itemsB := a[cls], b[cls]
		if len(itemsA) == 0 || len(itemsB) == 0 {
			continue
		}
		matchMtx := BuildMatchingMatrix(itemsA, itemsB)
		HA, err := hg.NewHungarianAlgorithm(matchMtx)
		if err != nil {
			return AuditResult{}, errors.Wrapf(err, "unable to solve assignment for class %d", cls)
		}
		matches := HA.Execute()
		for i, j := range matches {
			if j >= 0 && j < len(itemsB) && i < len(itemsA) {
				out.OptimalIoU -= matchMtx[i][j]
			}
		}
	}
	return out, nil
}

// BuildMatchingMatrix sets up a cost matrix for the Hungarian algorithm.
// Cost is -IoU between boxes (b/c solver will find min).
func BuildMatchingMatrix(itemsA, itemsB []Item) [][]float64 {
	matchMtx := make([][]float64, len(itemsA))
	for i, ia := range itemsA {
		row := make([]float64, len(itemsB))
		for j, ib := range itemsB {
			row[j] = -IoU(ia.Box, ib.Box)
		}
		matchMtx[i] = row
	}
	return matchMtx
}
