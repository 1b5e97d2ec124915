package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	viamutils "go.viam.com/utils"

	"github.com/viam-modules/label-compare/comparator"
)

// Header is the first row of every export.
var Header = []string{"image_stem", "class_id", "status", "iou", "strength"}

// Exporter buffers export rows in stem order until WriteFile is called.
type Exporter struct {
	rows [][]string
}

// NewExporter returns an empty Exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// File appends the rows of one stem: matches first (strong, then weak), then boxes
// missing in A, then boxes missing in B. Skipped stems add nothing.
func (e *Exporter) File(fr comparator.FileResult) {
	if fr.Err != nil {
		return
	}
	res := fr.Result
	for _, m := range res.Strong {
		e.rows = append(e.rows, []string{fr.Stem, strconv.Itoa(m.ClassID), "match", strconv.FormatFloat(m.IoU, 'f', 6, 64), "strong"})
	}
	for _, m := range res.Weak {
		e.rows = append(e.rows, []string{fr.Stem, strconv.Itoa(m.ClassID), "match", strconv.FormatFloat(m.IoU, 'f', 6, 64), "weak"})
	}
	for _, u := range res.MissingInA {
		e.rows = append(e.rows, []string{fr.Stem, strconv.Itoa(u.ClassID), "missing_in_A", "", ""})
	}
	for _, u := range res.MissingInB {
		e.rows = append(e.rows, []string{fr.Stem, strconv.Itoa(u.ClassID), "missing_in_B", "", ""})
	}
}

// Rows returns the buffered rows, header excluded.
func (e *Exporter) Rows() [][]string {
	return e.rows
}

// WriteFile writes the header and every row to path, creating its directory.
func (e *Exporter) WriteFile(path string) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrapf(err, "unable to create export directory %v", dir)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create export %v", path)
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "unable to close export %v", path)
		}
	}()

	w := csv.NewWriter(f)
	viamutils.UncheckedError(w.Write(Header))
	viamutils.UncheckedError(w.WriteAll(e.rows))
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "unable to write export %v", path)
	}
	return nil
}
