package formats

import (
	"fmt"
	"strings"

	"projectdocs/internal/engine/model"
)

// FunctionDocGenerator renders the Markdown catalogue of module-level
// functions. Methods never appear.
type FunctionDocGenerator struct{}

func NewFunctionDocGenerator() *FunctionDocGenerator {
	return &FunctionDocGenerator{}
}

func (m *FunctionDocGenerator) Generate(project *model.Project) string {
	var b strings.Builder
	b.WriteString("# Module Functions Documentation\n\n")

	written := 0
	for _, mod := range project.Modules {
		if len(mod.Functions) == 0 {
			continue
		}
		writeModuleFunctions(&b, mod)
		written++
	}
	if written == 0 {
		b.WriteString("No module-level functions found.\n")
	}
	return b.String()
}

func writeModuleFunctions(b *strings.Builder, mod model.Module) {
	b.WriteString("## Module: " + mod.Name + "\n")
	b.WriteString("**File:** " + codeSpan(mod.Path) + "\n\n")

	if imports := importLines(mod.Imports); len(imports) > 0 {
		b.WriteString("**Imports:**\n")
		for _, imp := range imports {
			b.WriteString("- " + imp + "\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("**Functions:**\n\n")
	for _, fn := range mod.Functions {
		b.WriteString("### " + codeSpan(fn.Signature()) + "\n\n")

		if len(fn.Decorators) > 0 {
			b.WriteString("**Decorators:**\n")
			for _, dec := range fn.Decorators {
				b.WriteString("- " + codeSpan("@"+dec) + "\n")
			}
			b.WriteString("\n")
		}

		if fn.Docstring != "" {
			b.WriteString("**Description:**\n")
			b.WriteString(fn.Docstring + "\n\n")
		}

		b.WriteString(fmt.Sprintf("**Line:** %d\n\n", fn.Location.Line))
		b.WriteString("---\n\n")
	}
}

// importLines lists imports in source order, dropping exact repeats.
func importLines(imports []model.Import) []string {
	seen := make(map[string]bool, len(imports))
	out := make([]string, 0, len(imports))
	for _, imp := range imports {
		line := imp.QualifiedName()
		if imp.Alias != "" {
			line += " as " + imp.Alias
		}
		if seen[line] {
			continue
		}
		seen[line] = true
		out = append(out, line)
	}
	return out
}
