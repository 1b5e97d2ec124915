// Package main compares two directories of bounding-box labels and reports how well
// the labellers agree.
package main

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	"go.viam.com/utils"

	"github.com/viam-modules/label-compare/comparator"
	"github.com/viam-modules/label-compare/report"
)

var logger = logging.NewLogger("label-compare")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	DirA    string        `flag:"dirA,usage=reference label directory"`
	DirB    string        `flag:"dirB,usage=candidate label directory (default: sibling labelImg directory)"`
	IoU     thresholdFlag `flag:"iou,usage=IoU at or above which a match is strong (default 0.9)"`
	CSV     string        `flag:"csv,usage=write per-box rows to this CSV file"`
	Workers int           `flag:"workers,default=0,usage=number of stems compared in parallel (default 1)"`
	VOC     bool          `flag:"voc,usage=also read Pascal VOC .xml files"`
	Classes string        `flag:"classes,usage=class names file used to resolve VOC object names"`
	Only    classListFlag `flag:"only,usage=compare only these class ids"`
	Audit   bool          `flag:"audit,usage=compare greedy matching against an optimal assignment"`
	Table   bool          `flag:"table,usage=print a per-class table"`
	Debug   bool          `flag:"debug,usage=enable debug logging"`
	Config  string        `flag:"config,usage=JSON config file; flags override it"`
}

// thresholdFlag is a float flag that remembers whether it was given.
type thresholdFlag struct {
	value float64
	set   bool
}

func (tf *thresholdFlag) String() string {
	if !tf.set {
		return ""
	}
	return strconv.FormatFloat(tf.value, 'g', -1, 64)
}

func (tf *thresholdFlag) Set(val string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
	if err != nil {
		return errors.Errorf("invalid IoU threshold %q", val)
	}
	tf.value, tf.set = v, true
	return nil
}

func (tf *thresholdFlag) Get() interface{} {
	return tf.value
}

// classListFlag is a comma-separated list of class ids.
type classListFlag []int

func (cf *classListFlag) String() string {
	parts := make([]string, 0, len(*cf))
	for _, id := range *cf {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

func (cf *classListFlag) Set(val string) error {
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return errors.Errorf("invalid class id %q", part)
		}
		*cf = append(*cf, id)
	}
	return nil
}

func (cf *classListFlag) Get() interface{} {
	return []int(*cf)
}

func mainWithArgs(ctx context.Context, args []string, logger logging.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.Debug {
		logger.SetLevel(logging.DEBUG)
	}
	cfg, err := buildConfig(argsParsed)
	if err != nil {
		return err
	}
	return runCompare(ctx, *cfg, os.Stdout, argsParsed.Table, logger)
}

// buildConfig starts from the --config file, if any, and applies every flag that
// was given on top of it.
func buildConfig(args Arguments) (*comparator.Config, error) {
	cfg := &comparator.Config{}
	if args.Config != "" {
		loaded, err := comparator.LoadConfig(args.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if args.DirA != "" {
		cfg.ReferenceDir = args.DirA
	}
	if args.DirB != "" {
		cfg.CandidateDir = args.DirB
	}
	if args.IoU.set {
		thr := args.IoU.value
		cfg.IoUThreshold = &thr
	}
	if args.CSV != "" {
		cfg.ExportPath = args.CSV
	}
	if args.Workers != 0 {
		cfg.Workers = args.Workers
	}
	if args.VOC {
		cfg.VOC = true
	}
	if args.Classes != "" {
		cfg.ClassesFile = args.Classes
	}
	if len(args.Only) > 0 {
		cfg.ChosenClasses = args.Only
	}
	if args.Audit {
		cfg.Audit = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid arguments")
	}
	return cfg, nil
}

// runCompare prints every stem and the summary to out, then writes the export.
// An export failure is returned only after the summary is out.
func runCompare(ctx context.Context, cfg comparator.Config, out io.Writer, table bool, logger logging.Logger) error {
	c, err := comparator.New(cfg, logger.Sublogger("comparator"))
	if err != nil {
		return err
	}
	printer := report.NewPrinter(out, cfg.Threshold())
	sinks := []comparator.Sink{printer}
	var exporter *report.Exporter
	if cfg.ExportPath != "" {
		exporter = report.NewExporter()
		sinks = append(sinks, exporter)
	}

	acc, err := c.Run(ctx, sinks...)
	if err != nil {
		return err
	}
	printer.Summary(acc)
	if table {
		printer.ClassTable(acc, c.Names())
	}
	if err := printer.Err(); err != nil {
		return errors.Wrap(err, "unable to write report")
	}

	stats := c.Stats()
	logger.Debugw("comparison timing",
		"stems", stats.NumberOfRuns, "slowest", stats.Slowest, "fastest", stats.Fastest, "average", stats.Average)

	if exporter != nil {
		if err := exporter.WriteFile(cfg.ExportPath); err != nil {
			return err
		}
		logger.Infow("wrote export", "path", cfg.ExportPath, "rows", len(exporter.Rows()))
	}
	return nil
}
