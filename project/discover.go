// Package project discovers C/C++ translation units in a directory tree,
// generalizing the teacher's InspectPackage (filepath.Walk + suffix filter
// + skip-tests toggle) into glob-based selection so callers can scope a
// batch run to a subset of a tree (e.g. "src/**/*.cpp").
package project

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/viant/afs"
	"github.com/viant/afs/storage"
)

// sourceSuffixes are the translation-unit extensions recognized per
// SPEC_FULL.md's --lang {c|cpp} split.
var sourceSuffixes = map[string][]string{
	"c":   {".c", ".h"},
	"cpp": {".cpp", ".cc", ".cxx", ".hpp", ".hh", ".h"},
}

// rootMarkers are files whose presence marks a directory as a project
// root, carried over from the teacher's repository detector (go.mod,
// pom.xml) but rewritten for C/C++ build systems.
var rootMarkers = []string{"CMakeLists.txt", "Makefile", "compile_commands.json"}

// Config controls discovery. Glob defaults to "**/*" when empty; Lang
// narrows the suffix filter; SkipTests drops files matching a "_test"
// stem, mirroring the teacher's SkipTests toggle.
type Config struct {
	Lang      string
	Glob      string
	SkipTests bool
}

// TranslationUnit is one discovered source file.
type TranslationUnit struct {
	Path string // absolute or caller-relative path
	Lang string
}

// Discover walks root (via afs, so it works over local and remote storage
// schemes alike) and returns every translation unit config selects, sorted
// by path for deterministic batch ordering.
func Discover(ctx context.Context, root string, cfg Config) ([]TranslationUnit, error) {
	glob := cfg.Glob
	if glob == "" {
		glob = "**/*"
	}
	pattern := path.Join(root, glob)

	fs := afs.New()

	var units []TranslationUnit
	err := walk(ctx, fs, root, func(o storage.Object) error {
		if o.IsDir() {
			return nil
		}
		matched, matchErr := doublestar.Match(pattern, o.URL())
		if matchErr != nil {
			return fmt.Errorf("matching glob %s against %s: %w", pattern, o.URL(), matchErr)
		}
		if !matched {
			return nil
		}
		if cfg.SkipTests && strings.Contains(o.Name(), "_test") {
			return nil
		}
		lang := langFor(o.Name(), cfg.Lang)
		if lang == "" {
			return nil
		}
		units = append(units, TranslationUnit{Path: o.URL(), Lang: lang})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Path < units[j].Path })
	return units, nil
}

// walk recurses through root using afs.List, since afs has no built-in
// recursive walk; each directory entry is visited via fn, directories are
// descended into.
func walk(ctx context.Context, fs afs.Service, root string, fn func(storage.Object) error) error {
	objects, err := fs.List(ctx, root)
	if err != nil {
		return fmt.Errorf("listing %s: %w", root, err)
	}
	for _, o := range objects {
		if o.URL() == root {
			continue
		}
		if err := fn(o); err != nil {
			return err
		}
		if o.IsDir() {
			if err := walk(ctx, fs, o.URL(), fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// langFor infers a translation unit's language from its suffix, honoring
// an explicit override ("c" or "cpp") when the caller already knows it.
func langFor(name, override string) string {
	if override != "" {
		for _, suf := range sourceSuffixes[override] {
			if strings.HasSuffix(name, suf) {
				return override
			}
		}
		return ""
	}
	for lang, suffixes := range sourceSuffixes {
		for _, suf := range suffixes {
			if strings.HasSuffix(name, suf) {
				return lang
			}
		}
	}
	return ""
}

// HasProjectMarker reports whether dir contains one of the recognized
// C/C++ build-root marker files, per the teacher's repository-detector
// idiom generalized to this domain.
func HasProjectMarker(ctx context.Context, dir string) (bool, error) {
	fs := afs.New()
	for _, marker := range rootMarkers {
		ok, err := fs.Exists(ctx, path.Join(dir, marker))
		if err != nil {
			return false, fmt.Errorf("checking marker %s: %w", marker, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
