package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"

	"projectdocs/internal/core/errors"
	"projectdocs/internal/shared/util"

	"github.com/gobwas/glob"
)

// Node is one entry of the scanned tree. Children keep directory-read order;
// renderers apply their own ordering.
type Node struct {
	Name     string
	Path     string // slash-separated, relative to the root; "" for the root itself
	IsDir    bool
	Children []*Node
	Err      string // set when the directory could not be read, e.g. "Permission Denied"
}

type Stats struct {
	Files int
	Dirs  int // the root is not counted
}

func (s Stats) Total() int {
	return s.Files + s.Dirs
}

// Issue records a subtree that could not be read. Scanning continues past it.
type Issue struct {
	Path    string
	Message string
}

type Result struct {
	Root   string // absolute path of the scanned directory
	Name   string // basename of Root
	Files  []string
	Tree   *Node
	Stats  Stats
	Issues []Issue
}

type Scanner struct {
	globs []glob.Glob
}

// New compiles the exclusion patterns. Patterns match single path segments.
func New(patterns []string) (*Scanner, error) {
	s := &Scanner{}
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid exclude pattern %q", p))
		}
		s.globs = append(s.globs, g)
	}
	return s, nil
}

func Scan(root string, patterns []string) (*Result, error) {
	s, err := New(patterns)
	if err != nil {
		return nil, err
	}
	return s.Scan(root)
}

func (s *Scanner) Excluded(name string) bool {
	for _, g := range s.globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Scan walks root once, pruning excluded directories without descending into
// them. Symbolic links below root are neither followed nor listed.
func (s *Scanner) Scan(root string) (*Result, error) {
	abs, err := validateRoot(root)
	if err != nil {
		return nil, err
	}
	walkRoot := abs
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		walkRoot = resolved
	}

	res := &Result{
		Root: abs,
		Name: rootName(abs),
		Tree: &Node{Name: rootName(abs), IsDir: true},
	}
	dirs := map[string]*Node{"": res.Tree}

	err = filepath.WalkDir(walkRoot, func(p string, d fs.DirEntry, err error) error {
		rel := util.RelSlash(walkRoot, p)
		if err != nil {
			if rel == "" {
				return err
			}
			res.Issues = append(res.Issues, Issue{Path: rel, Message: err.Error()})
			if node, ok := dirs[rel]; ok {
				node.Err = readError(err)
			}
			return nil
		}
		if rel == "" {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if s.Excluded(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}

		parentKey := path.Dir(rel)
		if parentKey == "." {
			parentKey = ""
		}
		parent, ok := dirs[parentKey]
		if !ok {
			return nil
		}
		node := &Node{Name: d.Name(), Path: rel, IsDir: d.IsDir()}
		parent.Children = append(parent.Children, node)

		if d.IsDir() {
			dirs[rel] = node
			res.Stats.Dirs++
			return nil
		}
		res.Stats.Files++
		res.Files = append(res.Files, rel)
		return nil
	})
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeValidationError, "cannot read root directory"),
			errors.CtxPath, root,
		)
	}

	sort.Strings(res.Files)
	return res, nil
}

func validateRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("invalid root path %q", root))
	}
	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.New(errors.CodeNotFound, fmt.Sprintf("root path %q does not exist", root))
		}
		return "", errors.Wrap(err, errors.CodeValidationError, fmt.Sprintf("cannot access root path %q", root))
	}
	if !info.IsDir() {
		return "", errors.New(errors.CodeValidationError, fmt.Sprintf("root path %q is not a directory", root))
	}
	return abs, nil
}

func rootName(abs string) string {
	name := filepath.Base(abs)
	if name == string(filepath.Separator) || name == "." || name == "" {
		return abs
	}
	return name
}

func readError(err error) string {
	if os.IsPermission(err) {
		return "Permission Denied"
	}
	return "Error: " + err.Error()
}
