// Package comparator compares two directories of annotation files stem by stem and
// keeps corpus-wide totals.
package comparator

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"
	viamutils "go.viam.com/utils"

	"github.com/viam-modules/label-compare/labels"
	"github.com/viam-modules/label-compare/matcher"
)

// Sink receives every stem's result, in lexicographic stem order.
type Sink interface {
	File(fr FileResult)
}

// Comparator runs one comparison over a reference and a candidate directory.
type Comparator struct {
	cfg       Config
	logger    logging.Logger
	filter    labels.Filter
	names     *labels.ClassNames
	timeStats []time.Duration
}

// New validates cfg and prepares a comparison.
func New(cfg Config, logger logging.Logger) (*Comparator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Comparator{
		cfg:    cfg,
		logger: logger,
		filter: labels.NewClassFilter(cfg.ChosenClasses),
	}
	if cfg.ClassesFile != "" {
		names, err := labels.LoadClassNames(cfg.ClassesFile)
		if err != nil {
			return nil, err
		}
		c.names = names
	}
	return c, nil
}

// CandidateDir is the candidate directory the run uses, looking it up next to the
// reference directory when the config leaves it empty.
func (c *Comparator) CandidateDir() (string, error) {
	if c.cfg.CandidateDir != "" {
		return c.cfg.CandidateDir, nil
	}
	dir, err := FindSiblingLabels(c.cfg.ReferenceDir)
	if err != nil {
		return "", errors.Wrap(err, "no candidate directory given")
	}
	c.cfg.CandidateDir = dir
	c.logger.Infow("using sibling label directory", "candidate_dir", dir)
	return dir, nil
}

func (c *Comparator) suffixes() []string {
	if c.cfg.VOC {
		return []string{labels.YOLOSuffix, labels.VOCSuffix}
	}
	return []string{labels.YOLOSuffix}
}

// Run compares every stem found under either directory. Sinks see each result as
// soon as it and every stem before it is done. A missing or unreadable root
// directory fails the run; a malformed file only skips its stem.
func (c *Comparator) Run(ctx context.Context, sinks ...Sink) (*Accumulator, error) {
	dirB, err := c.CandidateDir()
	if err != nil {
		return nil, err
	}
	filesA, err := discoverLabels(c.cfg.ReferenceDir, c.suffixes(), c.logger)
	if err != nil {
		return nil, err
	}
	filesB, err := discoverLabels(dirB, c.suffixes(), c.logger)
	if err != nil {
		return nil, err
	}
	stems := unionStems(filesA, filesB)
	c.logger.Debugw("discovered labels", "reference", len(filesA), "candidate", len(filesB), "stems", len(stems))

	var activeWorkers sync.WaitGroup
	defer activeWorkers.Wait()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]FileResult, len(stems))
	done := make([]chan struct{}, len(stems))
	for i := range done {
		done[i] = make(chan struct{})
	}
	jobs := make(chan int)

	activeWorkers.Add(1)
	viamutils.PanicCapturingGo(func() {
		defer activeWorkers.Done()
		defer close(jobs)
		for i := range stems {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	})
	for w := 0; w < c.cfg.workers(); w++ {
		activeWorkers.Add(1)
		viamutils.PanicCapturingGo(func() {
			defer activeWorkers.Done()
			for i := range jobs {
				stem := stems[i]
				fa, okA := filesA[stem]
				fb, okB := filesB[stem]
				c.runJob(results, done, i, stem, func() FileResult {
					return c.compareStem(stem, fa, okA, fb, okB)
				})
			}
		})
	}

	acc := newAccumulator(c.cfg.Threshold(), c.cfg.Audit)
	c.timeStats = c.timeStats[:0]
	for i := range stems {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-done[i]:
		}
		fr := results[i]
		if fr.Err != nil {
			c.logger.Warnw("skipping stem", "stem", fr.Stem, "error", fr.Err)
		} else {
			c.timeStats = append(c.timeStats, fr.Took)
		}
		acc.Fold(fr)
		for _, s := range sinks {
			s.File(fr)
		}
	}
	return acc, nil
}

// runJob stores the job's result in its slot and marks the slot done, turning a
// panic into a skipped stem so the ordered fold never waits forever.
func (c *Comparator) runJob(results []FileResult, done []chan struct{}, i int, stem string, job func() FileResult) {
	defer close(done[i])
	defer func() {
		if r := recover(); r != nil {
			results[i] = FileResult{Stem: stem, Err: errors.Errorf("panic while comparing: %v", r)}
		}
	}()
	results[i] = job()
}

func (c *Comparator) compareStem(stem string, fa labelFile, okA bool, fb labelFile, okB bool) FileResult {
	start := time.Now()
	fr := FileResult{Stem: stem}
	var setA, setB labels.AnnotationSet
	var err error
	if okA {
		fr.PathA = fa.path
		if setA, err = c.read(fa.path); err != nil {
			fr.Err = err
			return fr
		}
	}
	if okB {
		fr.PathB = fb.path
		if setB, err = c.read(fb.path); err != nil {
			fr.Err = err
			return fr
		}
	}
	setA, setB = c.filter(setA), c.filter(setB)
	fr.CountA, fr.CountB = len(setA), len(setB)

	pa, pb := matcher.Partition(setA), matcher.Partition(setB)
	fr.Result = matcher.Match(pa, pb, c.cfg.Threshold())
	if c.cfg.Audit {
		audit, err := matcher.Audit(pa, pb, fr.Result)
		if err != nil {
			c.logger.Warnw("assignment audit failed", "stem", stem, "error", err)
		} else {
			fr.Audit = &audit
		}
	}
	fr.Took = time.Since(start)
	c.logger.Debugw("compared stem", "stem", stem, "boxes_a", pa.Size(), "boxes_b", pb.Size(),
		"classes_a", len(setA.Classes()), "matches", fr.Result.Matches(), "took", fr.Took)
	return fr
}

func (c *Comparator) read(path string) (labels.AnnotationSet, error) {
	if strings.HasSuffix(path, labels.VOCSuffix) {
		return labels.ReadVOCFile(path, c.names)
	}
	return labels.ReadYOLOFile(path)
}

// Stats reports how long the stems of the last run took to compare.
func (c *Comparator) Stats() Stats {
	return newStats(c.timeStats)
}

// Names is the class-name table of the run, nil when no classes file is set.
func (c *Comparator) Names() *labels.ClassNames {
	return c.names
}
