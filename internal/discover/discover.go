// Package discover expands command-line operands into the list of C sources
// to check. Files are passed through as given; directories are walked for
// .c files.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// sourceExt is the extension collected when walking a directory.
const sourceExt = ".c"

// defaultIgnore is the default set of directory names to skip.
// Matching is against directory base names only, not full paths.
var defaultIgnore = map[string]bool{
	".git":         true,
	".svn":         true,
	"build":        true,
	"dist":         true,
	"node_modules": true,
	"vendor":       true,
}

// Source is one discovered file.
type Source struct {
	Path string // path as passed to the loader
	// Name labels the file in reports and export file names. It is the base
	// name for file operands and the slash-separated path relative to the
	// operand for files found under a directory. Names are unique within one
	// Sources result.
	Name string
}

// Sources resolves operands into sources. Explicit file operands are kept in
// order and not filtered by extension, so the loader can report a bad
// extension. Each directory operand contributes its .c files in lexical
// order. ignore supplements the default ignored directory names.
func Sources(operands []string, ignore []string) ([]Source, error) {
	extraIgnore := make(map[string]bool, len(ignore))
	for _, p := range ignore {
		extraIgnore[p] = true
	}
	skipDir := func(name string) bool {
		return defaultIgnore[name] || extraIgnore[name] || (strings.HasPrefix(name, ".") && name != "." && name != "..")
	}

	var out []Source
	seen := make(map[string]bool)
	add := func(p, name string) {
		key := filepath.Clean(p)
		if !seen[key] {
			seen[key] = true
			out = append(out, Source{Path: p, Name: name})
		}
	}

	for _, op := range operands {
		info, err := os.Stat(op)
		if err != nil || !info.IsDir() {
			// Missing files are left to the loader to report.
			add(op, filepath.Base(op))
			continue
		}

		var found []string
		err = filepath.WalkDir(op, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != op && skipDir(d.Name()) {
					return fs.SkipDir
				}
				return nil
			}
			if strings.EqualFold(filepath.Ext(d.Name()), sourceExt) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("discover: walk %s: %w", op, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("discover: no %s files under %s", sourceExt, op)
		}
		sort.Strings(found)
		for _, p := range found {
			rel, err := filepath.Rel(op, p)
			if err != nil {
				rel = filepath.Base(p)
			}
			add(p, filepath.ToSlash(rel))
		}
	}
	return uniqueNames(out), nil
}

// uniqueNames replaces every name shared by more than one source with that
// source's cleaned slash path.
func uniqueNames(srcs []Source) []Source {
	count := make(map[string]int, len(srcs))
	for _, s := range srcs {
		count[s.Name]++
	}
	for i, s := range srcs {
		if count[s.Name] > 1 {
			srcs[i].Name = filepath.ToSlash(filepath.Clean(s.Path))
		}
	}
	return srcs
}

// File wraps a single explicit file operand.
func File(path string) Source {
	return Source{Path: path, Name: filepath.Base(path)}
}
