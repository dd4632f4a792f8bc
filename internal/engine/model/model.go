// Package model holds the project-wide structural model assembled from
// per-file parse records. Entities are plain values; inheritance edges are
// qualified-name lookups, never pointers.
package model

import (
	"strings"

	"projectdocs/internal/engine/parser"
)

type (
	Function  = parser.Function
	Parameter = parser.Parameter
	Attribute = parser.Attribute
	Import    = parser.Import
)

const (
	ParamPlain         = parser.ParamPlain
	ParamVarPositional = parser.ParamVarPositional
	ParamVarKeyword    = parser.ParamVarKeyword
)

type BaseKind int

const (
	BaseResolved BaseKind = iota
	BaseUnresolved
)

// BaseRef is either Resolved(qualified name of a project class) or
// Unresolved(raw token as written in source).
type BaseRef struct {
	Kind BaseKind
	Name string
}

func Resolved(qualified string) BaseRef {
	return BaseRef{Kind: BaseResolved, Name: qualified}
}

func Unresolved(raw string) BaseRef {
	return BaseRef{Kind: BaseUnresolved, Name: raw}
}

func (b BaseRef) IsResolved() bool {
	return b.Kind == BaseResolved
}

type Class struct {
	Name          string
	QualifiedName string
	Bases         []BaseRef
	Attributes    []Attribute
	Methods       []Function
	Decorators    []string
	Docstring     string
	Line          int
}

type Module struct {
	Name      string // qualified, e.g. "pkg.sub"
	Path      string // slash-separated, relative to the project root
	IsPackage bool   // defined by an __init__ file
	IsRoot    bool   // the __init__ file directly under the project root
	Imports   []Import
	Classes   []Class
	Functions []Function
}

// Package returns the qualified name relative imports are resolved against.
func (m Module) Package() string {
	if m.IsRoot {
		return ""
	}
	if m.IsPackage {
		return m.Name
	}
	if idx := strings.LastIndexByte(m.Name, '.'); idx >= 0 {
		return m.Name[:idx]
	}
	return ""
}

type Diagnostic struct {
	Path    string
	Message string
}

type Project struct {
	Root        string
	Name        string
	Modules     []Module // ascending by Path, byte order
	Diagnostics []Diagnostic
	classes     map[string]classLoc
}

type classLoc struct {
	module, class int
}

// Class looks up a class by qualified name.
func (p *Project) Class(qualified string) (*Class, bool) {
	loc, ok := p.classes[qualified]
	if !ok {
		return nil, false
	}
	return &p.Modules[loc.module].Classes[loc.class], true
}

func (p *Project) ClassCount() int {
	n := 0
	for _, m := range p.Modules {
		n += len(m.Classes)
	}
	return n
}

func (p *Project) FunctionCount() int {
	n := 0
	for _, m := range p.Modules {
		n += len(m.Functions)
	}
	return n
}
