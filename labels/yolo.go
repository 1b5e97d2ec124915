package labels

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// YOLOSuffix is the file suffix of YOLO text annotations.
const YOLOSuffix = ".txt"

// ReadYOLOFile reads a YOLO text annotation file.
func ReadYOLOFile(path string) (AnnotationSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open labels %v", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)
	return ParseYOLO(f, path)
}

// ParseYOLO reads one box per non-blank line, formatted as "class cx cy w h".
// The class token may be written as a float ("3.0") and is truncated to an int.
// Tokens past the fifth are ignored. The name is only used in errors.
func ParseYOLO(r io.Reader, name string) (AnnotationSet, error) {
	var out AnnotationSet
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		box, reason := parseYOLOFields(fields)
		if reason != "" {
			return nil, &ParseError{Path: name, Line: lineNum, Reason: reason}
		}
		out = append(out, box)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "unable to read labels %v", name)
	}
	return out, nil
}

func parseYOLOFields(fields []string) (Box, string) {
	if len(fields) < 5 {
		return Box{}, fmt.Sprintf("expected 5 fields (class cx cy w h), got %d", len(fields))
	}
	cls, err := strconv.ParseFloat(fields[0], 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return Box{}, fmt.Sprintf("class id %q is out of range", fields[0])
	case err != nil:
		return Box{}, fmt.Sprintf("class id %q is not a number", fields[0])
	case math.IsNaN(cls) || cls > math.MaxInt32 || cls < math.MinInt32:
		return Box{}, fmt.Sprintf("class id %q is out of range", fields[0])
	}
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(fields[i+1], 64)
		if errors.Is(err, strconv.ErrRange) || math.IsInf(v, 0) {
			return Box{}, fmt.Sprintf("field %d %q is out of range", i+2, fields[i+1])
		}
		if err != nil || math.IsNaN(v) {
			return Box{}, fmt.Sprintf("field %d %q is not a number", i+2, fields[i+1])
		}
		vals[i] = v
	}
	return NewBox(int(cls), vals[0], vals[1], vals[2], vals[3]), ""
}
