package parser

import "strings"

// File is the structural record of one source file. Definitions keep source
// order; nothing here is qualified or resolved yet.
type File struct {
	Path      string // slash-separated, relative to the scan root
	Imports   []Import
	Classes   []Class
	Functions []Function // module-level only
}

type Location struct {
	Line   int // 1-based
	Column int // 1-based
}

type Import struct {
	Module   string // dotted module path without relative dots
	Name     string // member of a from-import, "*" for wildcards, empty for plain imports
	Alias    string
	Level    int // number of leading dots of a relative import
	Location Location
}

// QualifiedName is the imported name as written, e.g. "os.path",
// "pkg.base.Animal" or "..util.helper".
func (i Import) QualifiedName() string {
	prefix := strings.Repeat(".", i.Level)
	switch {
	case i.Name == "":
		return prefix + i.Module
	case i.Module == "":
		return prefix + i.Name
	default:
		return prefix + i.Module + "." + i.Name
	}
}

// Binding is the local name the import introduces. "import a.b" binds "a".
func (i Import) Binding() string {
	if i.Alias != "" {
		return i.Alias
	}
	if i.Name != "" {
		return i.Name
	}
	if idx := strings.IndexByte(i.Module, '.'); idx >= 0 {
		return i.Module[:idx]
	}
	return i.Module
}

type Class struct {
	Name       string
	Bases      []string // raw base expressions, keyword arguments dropped
	Attributes []Attribute
	Methods    []Function
	Decorators []string
	Docstring  string // first line only
	Location   Location
}

type Attribute struct {
	Name         string
	Annotation   string
	Default      string
	InferredType string // from a literal or bare-name default when unannotated
	Location     Location
}

// Type returns the annotation, falling back to the inferred type.
func (a Attribute) Type() string {
	if a.Annotation != "" {
		return a.Annotation
	}
	return a.InferredType
}

type ParamKind int

const (
	ParamPlain ParamKind = iota
	ParamVarPositional
	ParamVarKeyword
	ParamKeywordOnlyMarker    // bare "*"
	ParamPositionalOnlyMarker // "/"
)

type Parameter struct {
	Name       string
	Annotation string
	Default    string
	Kind       ParamKind
}

// String renders the parameter the way it is written in source.
func (p Parameter) String() string {
	var b strings.Builder
	switch p.Kind {
	case ParamKeywordOnlyMarker:
		return "*"
	case ParamPositionalOnlyMarker:
		return "/"
	case ParamVarPositional:
		b.WriteString("*")
	case ParamVarKeyword:
		b.WriteString("**")
	}
	b.WriteString(p.Name)
	if p.Annotation != "" {
		b.WriteString(": ")
		b.WriteString(p.Annotation)
	}
	if p.Default != "" {
		if p.Annotation != "" {
			b.WriteString(" = ")
		} else {
			b.WriteString("=")
		}
		b.WriteString(p.Default)
	}
	return b.String()
}

type Function struct {
	Name         string
	Parameters   []Parameter
	Returns      string
	Decorators   []string
	Docstring    string // first line only
	Location     Location
	IsAsync      bool
	IsStatic     bool // @staticmethod
	IsClassLevel bool // @classmethod
	IsAbstract   bool // @abstractmethod
}

// Signature reconstructs a one-line definition, e.g.
// "async def fetch(url: str, *, retries=3) -> bytes".
func (f Function) Signature() string {
	params := make([]string, 0, len(f.Parameters))
	for _, p := range f.Parameters {
		params = append(params, p.String())
	}
	var b strings.Builder
	if f.IsAsync {
		b.WriteString("async ")
	}
	b.WriteString("def ")
	b.WriteString(f.Name)
	b.WriteString("(")
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(")")
	if f.Returns != "" {
		b.WriteString(" -> ")
		b.WriteString(f.Returns)
	}
	return b.String()
}
