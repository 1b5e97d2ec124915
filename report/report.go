// Package report renders comparison results: one line per stem, a corpus summary,
// a per-class table and a CSV export.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/viam-modules/label-compare/comparator"
	"github.com/viam-modules/label-compare/labels"
)

// Printer writes the human-readable log. It keeps the first write error.
type Printer struct {
	w         io.Writer
	threshold string
	err       error
}

// NewPrinter returns a Printer writing to w.
func NewPrinter(w io.Writer, threshold float64) *Printer {
	return &Printer{w: w, threshold: strconv.FormatFloat(threshold, 'g', -1, 64)}
}

func (p *Printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// File prints the counts of one stem.
func (p *Printer) File(fr comparator.FileResult) {
	if fr.Err != nil {
		p.printf("[%s] skipped: %v\n", fr.Stem, fr.Err)
		return
	}
	res := fr.Result
	p.printf("[%s] A:%d B:%d strong:%d weak<%s:%d missInA:%d missInB:%d\n",
		fr.Stem, fr.CountA, fr.CountB, len(res.Strong), p.threshold, len(res.Weak), len(res.MissingInA), len(res.MissingInB))
}

// Summary prints the corpus totals.
func (p *Printer) Summary(acc *comparator.Accumulator) {
	p.printf("\n=== SUMMARY ===\n")
	p.printf("matches:%d strong:%d weak:%d missing_in_A:%d missing_in_B:%d meanIoU:%.4f\n",
		acc.Matches(), acc.Strong, acc.Weak, acc.MissingInA, acc.MissingInB, acc.MeanIoU())
	p.printf("files:%d skipped:%d agreement:%.4f\n", acc.Files, len(acc.Skipped), acc.Agreement())
	if acc.Audit != nil {
		p.printf("audit: greedy_iou_sum:%.4f optimal_iou_sum:%.4f shortfall:%.4f\n",
			acc.Audit.GreedyIoU, acc.Audit.OptimalIoU, acc.Audit.Shortfall())
	}
}

// ClassTable renders per-class totals. Class names are shown when names is set.
func (p *Printer) ClassTable(acc *comparator.Accumulator, names *labels.ClassNames) {
	if p.err != nil {
		return
	}
	t := table.NewWriter()
	t.AppendHeader(table.Row{"class", "name", "strong", "weak", "missing_in_A", "missing_in_B", "mean IoU"})
	for _, id := range acc.ClassIDs() {
		ct := acc.Classes[id]
		t.AppendRow(table.Row{id, names.Name(id), ct.Strong, ct.Weak, ct.MissingInA, ct.MissingInB, fmt.Sprintf("%.4f", ct.MeanIoU())})
	}
	t.AppendFooter(table.Row{"total", "", acc.Strong, acc.Weak, acc.MissingInA, acc.MissingInB, fmt.Sprintf("%.4f", acc.MeanIoU())})
	p.printf("\n%s\n", t.Render())
}

// Err returns the first error hit while writing.
func (p *Printer) Err() error {
	return p.err
}
