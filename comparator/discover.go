package comparator

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/rdk/logging"

	"github.com/viam-modules/label-compare/labels"
)

// labelFile is the annotation file chosen for a stem on one side.
type labelFile struct {
	path string
	rank int // index of the suffix; lower wins
}

// checkRoot makes sure a root directory exists and is a directory.
func checkRoot(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return errors.Wrapf(err, "unable to open label directory %v", root)
	}
	if !info.IsDir() {
		return errors.Errorf("label directory %v is not a directory", root)
	}
	return nil
}

// discoverLabels walks root recursively and keys every annotation file by stem.
// When a stem appears more than once the earlier suffix wins, then the lexically
// smaller path.
func discoverLabels(root string, suffixes []string, logger logging.Logger) (map[string]labelFile, error) {
	if err := checkRoot(root); err != nil {
		return nil, err
	}
	found := make(map[string]labelFile)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "unable to walk label directory %v", root)
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		for rank, suffix := range suffixes {
			if !strings.HasSuffix(name, suffix) {
				continue
			}
			stem := strings.TrimSuffix(name, suffix)
			if stem == "" {
				stem = name
			}
			cand := labelFile{path: path, rank: rank}
			prev, dup := found[stem]
			if !dup || cand.rank < prev.rank || (cand.rank == prev.rank && cand.path < prev.path) {
				found[stem] = cand
			}
			if dup && cand.rank == prev.rank {
				logger.Warnw("duplicate stem", "stem", stem, "kept", found[stem].path, "root", root)
			}
			break
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// unionStems returns every stem of a or b, sorted.
func unionStems(a, b map[string]labelFile) []string {
	stems := make([]string, 0, len(a)+len(b))
	for s := range a {
		stems = append(stems, s)
	}
	for s := range b {
		if _, ok := a[s]; !ok {
			stems = append(stems, s)
		}
	}
	sort.Strings(stems)
	return stems
}

// siblingKeys are the labelImg directory markers, in order of preference.
var siblingKeys = []string{"_li", "_labelimg", "-li", "-labelimg"}

// labelImgSuffix matches the labelImg marker at the end of a labels directory name.
var labelImgSuffix = regexp.MustCompile(`(?i)([_-]li([_-]labelimg)?|[_-]labelimg)$`)

// FindSiblingLabels looks for the other labeller's directory next to a reference
// laid out as <root>/labels_<name>/train. Siblings named with a labelImg marker are
// preferred, then any labels_* sibling. A sibling whose train directory holds no
// labels is only returned when nothing better exists. When the reference is itself
// the labelImg side (labels_<name>_li), labels_<name>/train is used if it exists.
func FindSiblingLabels(referenceDir string) (string, error) {
	trainDir, err := filepath.Abs(referenceDir)
	if err != nil {
		return "", errors.Wrapf(err, "unable to resolve %v", referenceDir)
	}
	if !strings.EqualFold(filepath.Base(trainDir), "train") {
		return "", errors.Errorf("cannot derive a candidate directory from %v: expected .../labels_<name>/train", referenceDir)
	}
	labelsDir := filepath.Dir(trainDir)
	ourBase := filepath.Base(labelsDir)
	root := filepath.Dir(labelsDir)

	if plain := labelImgSuffix.ReplaceAllString(ourBase, ""); plain != ourBase && plain != "" {
		if train := filepath.Join(root, plain, "train"); isDir(train) {
			return train, nil
		}
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", errors.Wrapf(err, "unable to list %v", root)
	}
	var siblings []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.EqualFold(name, ourBase) || !hasPrefixFold(name, "labels_") {
			continue
		}
		siblings = append(siblings, name)
	}

	var bestGuess string
	for _, key := range siblingKeys {
		for _, name := range siblings {
			if !strings.Contains(strings.ToLower(name), key) {
				continue
			}
			train := filepath.Join(root, name, "train")
			if !isDir(train) {
				continue
			}
			if hasLabels(train) {
				return train, nil
			}
			if bestGuess == "" {
				bestGuess = train
			}
		}
	}
	for _, name := range siblings {
		train := filepath.Join(root, name, "train")
		if isDir(train) && hasLabels(train) {
			return train, nil
		}
	}
	if bestGuess == "" {
		return "", errors.Errorf("no sibling label directory found for %v", referenceDir)
	}
	return bestGuess, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// hasLabels reports whether dir directly holds any .txt or .xml file.
func hasLabels(dir string) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		if e.Type().IsRegular() && (strings.HasSuffix(e.Name(), labels.YOLOSuffix) || strings.HasSuffix(e.Name(), labels.VOCSuffix)) {
			return true
		}
	}
	return false
}
