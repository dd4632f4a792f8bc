package formats

import (
	"fmt"
	"sort"
	"strings"

	"projectdocs/internal/engine/scanner"
)

type TreeOptions struct {
	MaxDepth     int // 0 renders every level
	IncludeStats bool
}

type TreeGenerator struct {
	opts TreeOptions
}

func NewTreeGenerator(opts TreeOptions) *TreeGenerator {
	return &TreeGenerator{opts: opts}
}

func (g *TreeGenerator) Generate(res *scanner.Result) string {
	var b strings.Builder
	b.WriteString(res.Name)
	b.WriteString("\n")
	if res.Tree != nil {
		g.writeChildren(&b, res.Tree, "", 0)
	}

	if g.opts.IncludeStats {
		b.WriteString("\nStatistics:\n")
		b.WriteString(fmt.Sprintf("- Files: %d\n", res.Stats.Files))
		b.WriteString(fmt.Sprintf("- Directories: %d\n", res.Stats.Dirs))
		b.WriteString(fmt.Sprintf("- Total items: %d\n", res.Stats.Total()))
	}
	return b.String()
}

func (g *TreeGenerator) writeChildren(b *strings.Builder, dir *scanner.Node, prefix string, depth int) {
	if g.opts.MaxDepth > 0 && depth >= g.opts.MaxDepth {
		return
	}
	if dir.Err != "" {
		b.WriteString(prefix + "[" + dir.Err + "]\n")
	}

	children := sortedChildren(dir.Children)
	for i, child := range children {
		connector, next := "├── ", prefix+"│   "
		if i == len(children)-1 {
			connector, next = "└── ", prefix+"    "
		}
		b.WriteString(prefix + connector + child.Name + "\n")
		if child.IsDir {
			g.writeChildren(b, child, next, depth+1)
		}
	}
}

// sortedChildren orders directories before files, each case-insensitively,
// falling back to byte order so names differing only in case stay stable.
func sortedChildren(nodes []*scanner.Node) []*scanner.Node {
	out := append([]*scanner.Node(nil), nodes...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsDir != out[j].IsDir {
			return out[i].IsDir
		}
		li, lj := strings.ToLower(out[i].Name), strings.ToLower(out[j].Name)
		if li != lj {
			return li < lj
		}
		return out[i].Name < out[j].Name
	})
	return out
}
