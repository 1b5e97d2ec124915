package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/rdk/logging"
	"go.viam.com/test"

	"github.com/viam-modules/label-compare/comparator"
)

func writeLabels(t *testing.T, path, contents string) {
	t.Helper()
	test.That(t, os.MkdirAll(filepath.Dir(path), 0o755), test.ShouldBeNil)
	test.That(t, os.WriteFile(path, []byte(contents), 0o644), test.ShouldBeNil)
}

func TestFlagTypes(t *testing.T) {
	var tf thresholdFlag
	test.That(t, tf.String(), test.ShouldEqual, "")
	test.That(t, tf.Set("0.75"), test.ShouldBeNil)
	test.That(t, tf.set, test.ShouldBeTrue)
	test.That(t, tf.Get(), test.ShouldEqual, 0.75)
	test.That(t, tf.String(), test.ShouldEqual, "0.75")
	test.That(t, tf.Set("high"), test.ShouldNotBeNil)

	var cf classListFlag
	test.That(t, cf.Set("0, 2,,5"), test.ShouldBeNil)
	test.That(t, cf.Get(), test.ShouldResemble, []int{0, 2, 5})
	test.That(t, cf.String(), test.ShouldEqual, "0,2,5")
	test.That(t, cf.Set("dog"), test.ShouldNotBeNil)
}

func TestBuildConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeLabels(t, path, `{"reference_dir": "fromfile", "candidate_dir": "b", "iou_threshold": 0.5, "workers": 2}`)

	var args Arguments
	args.Config = path
	args.DirA = "a"
	test.That(t, args.IoU.Set("0.8"), test.ShouldBeNil)
	test.That(t, args.Only.Set("1,3"), test.ShouldBeNil)
	args.Audit = true

	cfg, err := buildConfig(args)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ReferenceDir, test.ShouldEqual, "a")
	test.That(t, cfg.CandidateDir, test.ShouldEqual, "b")
	test.That(t, cfg.Threshold(), test.ShouldEqual, 0.8)
	test.That(t, cfg.Workers, test.ShouldEqual, 2)
	test.That(t, cfg.ChosenClasses, test.ShouldResemble, []int{1, 3})
	test.That(t, cfg.Audit, test.ShouldBeTrue)

	_, err = buildConfig(Arguments{})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "reference_dir")

	bad := Arguments{DirA: "a"}
	test.That(t, bad.IoU.Set("1.5"), test.ShouldBeNil)
	_, err = buildConfig(bad)
	test.That(t, err, test.ShouldNotBeNil)

	nan := Arguments{DirA: "a"}
	test.That(t, nan.IoU.Set("NaN"), test.ShouldBeNil)
	_, err = buildConfig(nan)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "between 0.0 and 1.0")

	_, err = buildConfig(Arguments{Config: filepath.Join(dir, "missing.json")})
	test.That(t, err, test.ShouldNotBeNil)
}

func TestRunCompare(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "A"), filepath.Join(dir, "B")
	writeLabels(t, filepath.Join(a, "img1.txt"), "0 0.5 0.5 0.2 0.2\n")
	writeLabels(t, filepath.Join(b, "img1.txt"), "0 0.5 0.5 0.2 0.2\n")
	writeLabels(t, filepath.Join(a, "img2.txt"), "0 0.5 0.5 0.2 0.2\n")
	logger := logging.NewTestLogger(t)

	export := filepath.Join(dir, "out", "report.csv")
	var out bytes.Buffer
	cfg := comparator.Config{ReferenceDir: a, CandidateDir: b, ExportPath: export}
	test.That(t, runCompare(context.Background(), cfg, &out, true, logger), test.ShouldBeNil)

	lines := strings.Split(out.String(), "\n")
	test.That(t, lines[0], test.ShouldEqual, "[img1] A:1 B:1 strong:1 weak<0.9:0 missInA:0 missInB:0")
	test.That(t, lines[1], test.ShouldEqual, "[img2] A:1 B:0 strong:0 weak<0.9:0 missInA:0 missInB:1")
	test.That(t, out.String(), test.ShouldContainSubstring,
		"matches:1 strong:1 weak:0 missing_in_A:0 missing_in_B:1 meanIoU:1.0000")
	test.That(t, strings.ToUpper(out.String()), test.ShouldContainSubstring, "MISSING_IN_B")

	data, err := os.ReadFile(export)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(data), test.ShouldEqual,
		"image_stem,class_id,status,iou,strength\nimg1,0,match,1.000000,strong\nimg2,0,missing_in_B,,\n")
}

func TestRunCompareExportFailsAfterSummary(t *testing.T) {
	dir := t.TempDir()
	a, b := filepath.Join(dir, "A"), filepath.Join(dir, "B")
	writeLabels(t, filepath.Join(a, "img1.txt"), "0 0.5 0.5 0.2 0.2\n")
	writeLabels(t, filepath.Join(b, "img1.txt"), "0 0.5 0.5 0.2 0.2\n")
	blocker := filepath.Join(dir, "blocker")
	writeLabels(t, blocker, "")

	var out bytes.Buffer
	cfg := comparator.Config{ReferenceDir: a, CandidateDir: b, ExportPath: filepath.Join(blocker, "report.csv")}
	err := runCompare(context.Background(), cfg, &out, false, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, out.String(), test.ShouldContainSubstring, "=== SUMMARY ===")
}

func TestRunCompareMissingRoot(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	cfg := comparator.Config{ReferenceDir: filepath.Join(dir, "A"), CandidateDir: dir}
	err := runCompare(context.Background(), cfg, &out, false, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, out.String(), test.ShouldBeEmpty)
}
