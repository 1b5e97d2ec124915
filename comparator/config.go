package comparator

import (
	"encoding/json"
	"math"
	"os"

	"github.com/pkg/errors"

	"github.com/viam-modules/label-compare/matcher"
)

var (
	// DefaultIoUThreshold splits strong matches from weak ones.
	DefaultIoUThreshold = matcher.DefaultThreshold
	// DefaultWorkers compares stems one at a time.
	DefaultWorkers = 1
	// MaxWorkers bounds the worker pool.
	MaxWorkers = 256
)

// Config describes one comparison run.
type Config struct {
	ReferenceDir  string   `json:"reference_dir"`
	CandidateDir  string   `json:"candidate_dir,omitempty"`
	IoUThreshold  *float64 `json:"iou_threshold,omitempty"`
	ExportPath    string   `json:"export_path,omitempty"`
	Workers       int      `json:"workers,omitempty"`
	VOC           bool     `json:"voc,omitempty"`
	ClassesFile   string   `json:"classes_file,omitempty"`
	ChosenClasses []int    `json:"chosen_classes,omitempty"`
	Audit         bool     `json:"audit,omitempty"`
}

// LoadConfig reads a JSON config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config %v", path)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "unable to parse config %v", path)
	}
	return &cfg, nil
}

// Validate checks the config. The candidate directory may be empty; it is then
// looked up next to the reference directory when the run starts.
func (cfg *Config) Validate() error {
	if cfg.ReferenceDir == "" {
		return errors.New(`expected "reference_dir" attribute for label comparison`)
	}
	if thr := cfg.IoUThreshold; thr != nil && (math.IsNaN(*thr) || *thr < 0 || *thr > 1) {
		return errors.New("iou threshold must be between 0.0 and 1.0")
	}
	if cfg.Workers < 0 {
		return errors.New("attribute workers cannot be less than 0")
	}
	if cfg.Workers > MaxWorkers {
		return errors.Errorf("workers must be between 1 and %d", MaxWorkers)
	}
	if cfg.ClassesFile != "" {
		if _, err := os.Stat(cfg.ClassesFile); err != nil {
			return errors.Wrapf(err, "unable to use classes file %v", cfg.ClassesFile)
		}
	}
	return nil
}

// Threshold returns the configured IoU threshold or the default.
func (cfg *Config) Threshold() float64 {
	if cfg.IoUThreshold != nil {
		return *cfg.IoUThreshold
	}
	return DefaultIoUThreshold
}

// workers returns the pool size, defaulting 0 to DefaultWorkers.
func (cfg *Config) workers() int {
	if cfg.Workers == 0 {
		return DefaultWorkers
	}
	return cfg.Workers
}
