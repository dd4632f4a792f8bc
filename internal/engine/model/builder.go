package model

import (
	"path"
	"sort"
	"strings"

	"projectdocs/internal/engine/parser"
)

const packageIndex = "__init__"

// Builder assembles a Project from parse records. Resolution runs only after
// every class name is indexed, so the outcome does not depend on the order
// files finished parsing.
type Builder struct {
	root       string
	name       string
	extensions []string
}

func NewBuilder(root, name string, extensions []string) *Builder {
	exts := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		exts = append(exts, strings.ToLower(ext))
	}
	return &Builder{root: root, name: name, extensions: exts}
}

func (b *Builder) Build(files []*parser.File, diagnostics []Diagnostic) *Project {
	sorted := make([]*parser.File, 0, len(files))
	for _, f := range files {
		if f != nil {
			sorted = append(sorted, f)
		}
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	diags := append([]Diagnostic(nil), diagnostics...)
	sort.SliceStable(diags, func(i, j int) bool { return diags[i].Path < diags[j].Path })

	project := &Project{
		Root:        b.root,
		Name:        b.name,
		Modules:     make([]Module, 0, len(sorted)),
		Diagnostics: diags,
		classes:     make(map[string]classLoc),
	}

	// Pass 1: modules and the class index.
	for mi, f := range sorted {
		mod := b.module(f)
		for ci := range mod.Classes {
			mod.Classes[ci].QualifiedName = mod.Name + "." + mod.Classes[ci].Name
			project.classes[mod.Classes[ci].QualifiedName] = classLoc{module: mi, class: ci}
		}
		project.Modules = append(project.Modules, mod)
	}

	// Pass 2: bind base references against the completed index.
	idx := newClassIndex(project.classes)
	for mi := range project.Modules {
		mod := &project.Modules[mi]
		bindings := importBindings(*mod)
		for ci := range mod.Classes {
			cls := &mod.Classes[ci]
			for bi := range cls.Bases {
				cls.Bases[bi] = idx.resolve(*mod, bindings, cls.Bases[bi].Name)
			}
		}
	}
	return project
}

func (b *Builder) module(f *parser.File) Module {
	name, isPackage, isRoot := b.ModuleName(f.Path)
	mod := Module{
		Name:      name,
		Path:      f.Path,
		IsPackage: isPackage,
		IsRoot:    isRoot,
		Imports:   f.Imports,
		Functions: lastWins(f.Functions, func(fn Function) string { return fn.Name }),
	}
	for _, c := range lastWins(f.Classes, func(c parser.Class) string { return c.Name }) {
		cls := Class{
			Name:       c.Name,
			Attributes: lastWins(c.Attributes, func(a Attribute) string { return a.Name }),
			Methods:    lastWins(c.Methods, func(fn Function) string { return fn.Name }),
			Decorators: c.Decorators,
			Docstring:  c.Docstring,
			Line:       c.Location.Line,
		}
		for _, base := range c.Bases {
			cls.Bases = append(cls.Bases, Unresolved(base))
		}
		mod.Classes = append(mod.Classes, cls)
	}
	return mod
}

// ModuleName derives the qualified name from a root-relative slash path:
// "pkg/sub.py" -> "pkg.sub", "pkg/__init__.py" -> "pkg". The root's own
// __init__ takes the project name.
func (b *Builder) ModuleName(rel string) (name string, isPackage, isRoot bool) {
	trimmed := rel
	lower := strings.ToLower(rel)
	stripped := false
	for _, ext := range b.extensions {
		if strings.HasSuffix(lower, ext) {
			trimmed = rel[:len(rel)-len(ext)]
			stripped = true
			break
		}
	}
	if !stripped {
		trimmed = strings.TrimSuffix(rel, path.Ext(rel))
	}

	segments := strings.Split(trimmed, "/")
	if segments[len(segments)-1] == packageIndex {
		isPackage = true
		segments = segments[:len(segments)-1]
	}
	if len(segments) == 0 {
		return b.name, true, true
	}
	return strings.Join(segments, "."), isPackage, false
}

// lastWins drops earlier duplicates so each key keeps the position of its
// last occurrence.
func lastWins[T any](items []T, key func(T) string) []T {
	if len(items) == 0 {
		return nil
	}
	last := make(map[string]int, len(items))
	for i, item := range items {
		last[key(item)] = i
	}
	out := make([]T, 0, len(last))
	for i, item := range items {
		if last[key(item)] == i {
			out = append(out, item)
		}
	}
	return out
}
