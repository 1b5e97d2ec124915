package labels

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// VOCSuffix is the file suffix of Pascal VOC annotations.
const VOCSuffix = ".xml"

type vocAnnotation struct {
	Size struct {
		Width  string `xml:"width"`
		Height string `xml:"height"`
	} `xml:"size"`
	Objects []vocObject `xml:"object"`
}

type vocObject struct {
	Name   string `xml:"name"`
	BndBox struct {
		XMin string `xml:"xmin"`
		YMin string `xml:"ymin"`
		XMax string `xml:"xmax"`
		YMax string `xml:"ymax"`
	} `xml:"bndbox"`
}

// ReadVOCFile reads a Pascal VOC annotation file. See ParseVOC.
func ReadVOCFile(path string, names *ClassNames) (AnnotationSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open labels %v", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)
	return ParseVOC(f, path, names)
}

// ParseVOC reads pixel boxes from a VOC document and normalizes them by the image
// size it declares. Object names are resolved through names; with a nil table every
// object is class 0.
func ParseVOC(r io.Reader, name string, names *ClassNames) (AnnotationSet, error) {
	var doc vocAnnotation
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, &ParseError{Path: name, Reason: "invalid VOC xml: " + err.Error()}
	}
	width, err1 := parsePositive(doc.Size.Width)
	height, err2 := parsePositive(doc.Size.Height)
	if err1 != nil || err2 != nil {
		return nil, &ParseError{Path: name, Reason: "missing or invalid image size"}
	}

	out := make(AnnotationSet, 0, len(doc.Objects))
	for i, obj := range doc.Objects {
		cls := 0
		if names != nil {
			id, ok := names.ID(obj.Name)
			if !ok {
				return nil, &ParseError{Path: name, Reason: "object " + strconv.Itoa(i) + ": unknown class " + strconv.Quote(obj.Name)}
			}
			cls = id
		}
		var coords [4]float64
		for j, s := range []string{obj.BndBox.XMin, obj.BndBox.YMin, obj.BndBox.XMax, obj.BndBox.YMax} {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, &ParseError{Path: name, Reason: "object " + strconv.Itoa(i) + ": bad bndbox value " + strconv.Quote(s)}
			}
			coords[j] = v
		}
		xmin, ymin, xmax, ymax := coords[0]/width, coords[1]/height, coords[2]/width, coords[3]/height
		if xmax < xmin || ymax < ymin {
			return nil, &ParseError{Path: name, Reason: "object " + strconv.Itoa(i) + ": bndbox max is below min"}
		}
		out = append(out, NewBox(cls, (xmin+xmax)/2, (ymin+ymax)/2, xmax-xmin, ymax-ymin))
	}
	return out, nil
}

func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, errors.Errorf("%v is not positive", v)
	}
	return v, nil
}
