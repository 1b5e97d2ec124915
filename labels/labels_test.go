package labels

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
)

func TestParseYOLO(t *testing.T) {
	in := "0 0.5 0.5 0.2 0.2\n\n   \n2.0 0.1 0.2 0.3 0.4 0.99 extra\n"
	set, err := ParseYOLO(strings.NewReader(in), "a.txt")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, set, test.ShouldHaveLength, 2)
	test.That(t, set[0], test.ShouldResemble, NewBox(0, 0.5, 0.5, 0.2, 0.2))
	test.That(t, set[1].ClassID, test.ShouldEqual, 2)
	test.That(t, set[1].H, test.ShouldEqual, 0.4)
	test.That(t, set.Classes(), test.ShouldResemble, map[int]int{0: 1, 2: 1})
}

func TestParseYOLOTruncatesClass(t *testing.T) {
	set, err := ParseYOLO(strings.NewReader("3.7 0.5 0.5 0.1 0.1\n-1.5 0 0 0 0"), "a.txt")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, set[0].ClassID, test.ShouldEqual, 3)
	test.That(t, set[1].ClassID, test.ShouldEqual, -1)
}

func TestParseYOLOEmpty(t *testing.T) {
	set, err := ParseYOLO(strings.NewReader(""), "empty.txt")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, set, test.ShouldHaveLength, 0)
}

func TestParseYOLOMalformed(t *testing.T) {
	for _, tc := range []struct {
		name   string
		in     string
		line   int
		reason string
	}{
		{"too few fields", "0 0.5 0.5 0.2 0.2\n1 0.5 0.5 0.2\n", 2, "expected 5 fields"},
		{"bad class", "\ncat 0.5 0.5 0.2 0.2\n", 2, "class id"},
		{"nan class", "nan 0.5 0.5 0.2 0.2\n", 1, "out of range"},
		{"huge class", "1e400 0.5 0.5 0.2 0.2\n", 1, `class id "1e400" is out of range`},
		{"bad coordinate", "0 0.5 x 0.2 0.2\n", 1, `field 3 "x" is not a number`},
		{"nan coordinate", "0 0.5 0.5 NaN 0.2\n", 1, `field 4 "NaN" is not a number`},
		{"huge coordinate", "0 0.5 0.5 0.2 1e400\n", 1, `field 5 "1e400" is out of range`},
		{"inf coordinate", "0 Inf 0.5 0.2 0.2\n", 1, "out of range"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseYOLO(strings.NewReader(tc.in), "bad.txt")
			test.That(t, err, test.ShouldNotBeNil)
			var perr *ParseError
			test.That(t, errors.As(err, &perr), test.ShouldBeTrue)
			test.That(t, perr.Path, test.ShouldEqual, "bad.txt")
			test.That(t, perr.Line, test.ShouldEqual, tc.line)
			test.That(t, perr.Reason, test.ShouldContainSubstring, tc.reason)
		})
	}
}

func TestReadYOLOFileMissing(t *testing.T) {
	_, err := ReadYOLOFile(filepath.Join(t.TempDir(), "nope.txt"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, os.IsNotExist(errors.Cause(err)), test.ShouldBeTrue)
}

const vocDoc = `<annotation>
	<filename>img1.jpg</filename>
	<size><width>200</width><height>100</height><depth>3</depth></size>
	<object>
		<name>dog</name>
		<bndbox><xmin>50</xmin><ymin>25</ymin><xmax>150</xmax><ymax>75</ymax></bndbox>
	</object>
	<object>
		<name>cat</name>
		<bndbox><xmin>0</xmin><ymin>0</ymin><xmax>20</xmax><ymax>10</ymax></bndbox>
	</object>
</annotation>`

func TestParseVOC(t *testing.T) {
	names, err := NewClassNames([]string{"cat", "", "dog"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, names.Len(), test.ShouldEqual, 2)

	set, err := ParseVOC(strings.NewReader(vocDoc), "img1.xml", names)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, set, test.ShouldHaveLength, 2)
	test.That(t, set[0].ClassID, test.ShouldEqual, 1)
	test.That(t, set[0].CX, test.ShouldAlmostEqual, 0.5)
	test.That(t, set[0].CY, test.ShouldAlmostEqual, 0.5)
	test.That(t, set[0].W, test.ShouldAlmostEqual, 0.5)
	test.That(t, set[0].H, test.ShouldAlmostEqual, 0.5)
	test.That(t, set[1].ClassID, test.ShouldEqual, 0)
	test.That(t, set[1].CX, test.ShouldAlmostEqual, 0.05)

	set, err = ParseVOC(strings.NewReader(vocDoc), "img1.xml", nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, set[0].ClassID, test.ShouldEqual, 0)
}

func TestParseVOCErrors(t *testing.T) {
	names, err := NewClassNames([]string{"cat"})
	test.That(t, err, test.ShouldBeNil)
	_, err = ParseVOC(strings.NewReader(vocDoc), "img1.xml", names)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown class "dog"`)

	_, err = ParseVOC(strings.NewReader("<annotation><object></object></annotation>"), "nosize.xml", nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "image size")

	_, err = ParseVOC(strings.NewReader("<annotation"), "broken.xml", nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "invalid VOC xml")
}

func TestClassNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "classes.txt")
	test.That(t, os.WriteFile(path, []byte("person\ncar\n\nbus\n"), 0o644), test.ShouldBeNil)
	names, err := LoadClassNames(path)
	test.That(t, err, test.ShouldBeNil)
	id, ok := names.ID("bus")
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, id, test.ShouldEqual, 2)
	test.That(t, names.Name(1), test.ShouldEqual, "car")
	test.That(t, names.Name(9), test.ShouldEqual, "")

	_, err = NewClassNames([]string{"a", "a"})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestClassFilter(t *testing.T) {
	set := AnnotationSet{NewBox(0, 0, 0, 1, 1), NewBox(1, 0, 0, 1, 1), NewBox(2, 0, 0, 1, 1)}
	test.That(t, NewClassFilter(nil)(set), test.ShouldHaveLength, 3)
	out := NewClassFilter([]int{2, 0})(set)
	test.That(t, out, test.ShouldHaveLength, 2)
	test.That(t, out[0].ClassID, test.ShouldEqual, 0)
	test.That(t, out[1].ClassID, test.ShouldEqual, 2)
}
