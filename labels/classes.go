package labels

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// ClassNames maps class names to ids, following the labelImg classes.txt convention
// where the n-th non-blank line names class n.
type ClassNames struct {
	names []string
	ids   map[string]int
}

// NewClassNames builds a table from names in id order.
func NewClassNames(names []string) (*ClassNames, error) {
	cn := &ClassNames{ids: make(map[string]int, len(names))}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := cn.ids[n]; ok {
			return nil, errors.Errorf("class name %q is listed twice", n)
		}
		cn.ids[n] = len(cn.names)
		cn.names = append(cn.names, n)
	}
	return cn, nil
}

// LoadClassNames reads a class-names file.
func LoadClassNames(path string) (*ClassNames, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open class names %v", path)
	}
	defer utils.UncheckedErrorFunc(f.Close)
	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		names = append(names, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "unable to read class names %v", path)
	}
	cn, err := NewClassNames(names)
	if err != nil {
		return nil, errors.Wrapf(err, "bad class names file %v", path)
	}
	return cn, nil
}

// ID returns the id of a class name.
func (cn *ClassNames) ID(name string) (int, bool) {
	if cn == nil {
		return 0, false
	}
	id, ok := cn.ids[strings.TrimSpace(name)]
	return id, ok
}

// Name returns the name of a class id, or "" when the id is not listed.
func (cn *ClassNames) Name(id int) string {
	if cn == nil || id < 0 || id >= len(cn.names) {
		return ""
	}
	return cn.names[id]
}

// Len is the number of named classes.
func (cn *ClassNames) Len() int {
	if cn == nil {
		return 0
	}
	return len(cn.names)
}
