package report

import (
	"fmt"
	"strings"

	"projectdocs/internal/engine/model"
	"projectdocs/internal/engine/scanner"
	"projectdocs/internal/engine/visibility"
	"projectdocs/internal/ui/report/formats"
)

type Kind string

const (
	KindUML       Kind = "uml"
	KindTree      Kind = "tree"
	KindFunctions Kind = "functions"
)

// AllKinds is also the order artifacts are rendered in.
func AllKinds() []Kind {
	return []Kind{KindUML, KindTree, KindFunctions}
}

func ParseKinds(names []string) ([]Kind, error) {
	want := make(map[Kind]bool, len(names))
	for _, name := range names {
		k := Kind(strings.ToLower(strings.TrimSpace(name)))
		switch k {
		case KindUML, KindTree, KindFunctions:
			want[k] = true
		case "":
		default:
			return nil, fmt.Errorf("unknown artifact %q", name)
		}
	}
	out := make([]Kind, 0, len(want))
	for _, k := range AllKinds() {
		if want[k] {
			out = append(out, k)
		}
	}
	return out, nil
}

type Options struct {
	Visibility visibility.Policy
	Tree       formats.TreeOptions
}

type Artifact struct {
	Kind    Kind
	Content string
}

type Renderer struct {
	uml       *formats.PlantUMLGenerator
	tree      *formats.TreeGenerator
	functions *formats.FunctionDocGenerator
}

func NewRenderer(opts Options) *Renderer {
	return &Renderer{
		uml:       formats.NewPlantUMLGenerator(opts.Visibility),
		tree:      formats.NewTreeGenerator(opts.Tree),
		functions: formats.NewFunctionDocGenerator(),
	}
}

// RenderOne renders a single artifact. The tree reads the scan result; the
// other kinds read the project model.
func (r *Renderer) RenderOne(kind Kind, project *model.Project, scan *scanner.Result) (Artifact, error) {
	switch kind {
	case KindUML:
		return Artifact{Kind: kind, Content: r.uml.Generate(project)}, nil
	case KindTree:
		return Artifact{Kind: kind, Content: r.tree.Generate(scan)}, nil
	case KindFunctions:
		return Artifact{Kind: kind, Content: r.functions.Generate(project)}, nil
	}
	return Artifact{}, fmt.Errorf("unknown artifact %q", kind)
}

// Render produces the requested subset in AllKinds order. Repeated kinds
// render once.
func (r *Renderer) Render(kinds []Kind, project *model.Project, scan *scanner.Result) ([]Artifact, error) {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	ordered, err := ParseKinds(names)
	if err != nil {
		return nil, err
	}
	out := make([]Artifact, 0, len(ordered))
	for _, k := range ordered {
		art, err := r.RenderOne(k, project, scan)
		if err != nil {
			return nil, err
		}
		out = append(out, art)
	}
	return out, nil
}
