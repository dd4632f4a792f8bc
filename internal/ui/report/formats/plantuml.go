package formats

import (
	"fmt"
	"strings"

	"projectdocs/internal/engine/model"
	"projectdocs/internal/engine/visibility"
)

// PlantUMLGenerator renders the class diagram. Output depends only on the
// Project, so equal projects render byte-identical documents.
type PlantUMLGenerator struct {
	policy visibility.Policy
}

func NewPlantUMLGenerator(policy visibility.Policy) *PlantUMLGenerator {
	return &PlantUMLGenerator{policy: policy}
}

func (p *PlantUMLGenerator) Generate(project *model.Project) string {
	var b strings.Builder
	b.WriteString("@startuml\n")
	b.WriteString("!theme plain\n")
	b.WriteString("skinparam classAttributeIconSize 0\n")
	b.WriteString("skinparam classFontStyle bold\n")
	b.WriteString("skinparam packageStyle rectangle\n")
	b.WriteString("set separator none\n\n")

	// Aliases are per class instance. Two modules can share a qualified name
	// (pkg.py and pkg/__init__.py); resolved bases point at the later one,
	// matching Project.Class.
	var names []string
	for _, mod := range project.Modules {
		for _, cls := range mod.Classes {
			names = append(names, cls.QualifiedName)
		}
	}
	ids := makeIDs(names)
	aliases := make([][]string, len(project.Modules))
	byName := make(map[string]string, len(ids))
	next := 0
	for mi, mod := range project.Modules {
		aliases[mi] = ids[next : next+len(mod.Classes)]
		for ci, cls := range mod.Classes {
			byName[cls.QualifiedName] = aliases[mi][ci]
		}
		next += len(mod.Classes)
	}

	for mi, mod := range project.Modules {
		if len(mod.Classes) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("package \"%s\" {\n", escapeLabel(mod.Name)))
		for ci, cls := range mod.Classes {
			p.writeClass(&b, cls, aliases[mi][ci])
		}
		b.WriteString("}\n\n")
	}

	var relations []string
	for mi, mod := range project.Modules {
		for ci, cls := range mod.Classes {
			child := aliases[mi][ci]
			for _, base := range cls.Bases {
				relations = append(relations, fmt.Sprintf("%s <|-- %s", baseTarget(base, byName), child))
			}
		}
	}
	if len(relations) > 0 {
		b.WriteString("' Inheritance relationships\n")
		for _, line := range relations {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString("@enduml\n")
	return b.String()
}

func (p *PlantUMLGenerator) writeClass(b *strings.Builder, cls model.Class, alias string) {
	b.WriteString(fmt.Sprintf("  class \"%s\" as %s {\n", escapeLabel(cls.Name), alias))

	var public, private []model.Attribute
	for _, attr := range cls.Attributes {
		if p.policy.IsPublic(attr.Name) {
			public = append(public, attr)
		} else {
			private = append(private, attr)
		}
	}
	for _, attr := range append(public, private...) {
		line := p.marker(attr.Name) + attr.Name
		if typ := attr.Type(); typ != "" {
			line += ": " + typ
		}
		b.WriteString("    " + escapeMember(line) + "\n")
	}

	if len(cls.Attributes) > 0 && len(cls.Methods) > 0 {
		b.WriteString("    --\n")
	}

	for _, fn := range cls.Methods {
		b.WriteString("    " + p.method(fn) + "\n")
	}
	b.WriteString("  }\n")
}

func (p *PlantUMLGenerator) method(fn model.Function) string {
	var mods []string
	if fn.IsStatic {
		mods = append(mods, "{static}")
	}
	if fn.IsClassLevel {
		mods = append(mods, "{classifier}")
	}
	if fn.IsAbstract {
		mods = append(mods, "{abstract}")
	}

	params := fn.Parameters
	if !fn.IsStatic && len(params) > 0 && params[0].Kind == model.ParamPlain && (params[0].Name == "self" || params[0].Name == "cls") {
		params = params[1:]
	}
	parts := make([]string, 0, len(params))
	for _, param := range params {
		parts = append(parts, param.String())
	}
	sig := fmt.Sprintf("%s(%s)", fn.Name, strings.Join(parts, ", "))
	if fn.Returns != "" {
		sig += ": " + fn.Returns
	}

	prefix := p.marker(fn.Name)
	if len(mods) > 0 {
		prefix += strings.Join(mods, " ") + " "
	}
	return prefix + escapeMember(sig)
}

func (p *PlantUMLGenerator) marker(name string) string {
	switch p.policy.Classify(name) {
	case visibility.StrictPrivate:
		return "-"
	case visibility.Private:
		return "#"
	default:
		return "+"
	}
}

// baseTarget points resolved bases at the class alias; external tokens are
// emitted as written, quoted when they are not plain dotted identifiers.
func baseTarget(base model.BaseRef, aliases map[string]string) string {
	if base.IsResolved() {
		if alias, ok := aliases[base.Name]; ok {
			return alias
		}
	}
	if isPlainIdent(base.Name) {
		return base.Name
	}
	return fmt.Sprintf("\"%s\"", escapeLabel(base.Name))
}
