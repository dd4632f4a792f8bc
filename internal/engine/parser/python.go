package parser

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type PythonExtractor struct{}

func (e *PythonExtractor) Extract(root *sitter.Node, source []byte, filePath string) (*File, error) {
	file := &File{Path: filePath}
	ctx := &ExtractionContext{Source: source, File: file}

	// Imports anywhere in the file count, definitions only at module level.
	imports := NewExtractorEngine(map[string]NodeHandler{
		"import_statement":        e.extractImport,
		"import_from_statement":   e.extractFromImport,
		"future_import_statement": e.extractFromImport,
	})
	imports.Walk(ctx, root)

	e.walkBlock(ctx, root, e.moduleDefinition)
	return file, nil
}

func (e *PythonExtractor) extractImport(ctx *ExtractionContext, node *sitter.Node) bool {
	for _, child := range namedChildren(node) {
		switch child.Kind() {
		case "dotted_name":
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:   ctx.Text(child),
				Location: ctx.Location(child),
			})
		case "aliased_import":
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:   ctx.Text(child.ChildByFieldName("name")),
				Alias:    ctx.Text(child.ChildByFieldName("alias")),
				Location: ctx.Location(child),
			})
		}
	}
	return true
}

func (e *PythonExtractor) extractFromImport(ctx *ExtractionContext, node *sitter.Node) bool {
	var module string
	level := 0
	afterImport := false

	if node.Kind() == "future_import_statement" {
		module = "__future__"
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "import":
			afterImport = true
		case "relative_import":
			for j := uint(0); j < child.ChildCount(); j++ {
				sub := child.Child(j)
				switch sub.Kind() {
				case "import_prefix":
					level = strings.Count(ctx.Text(sub), ".")
				case "dotted_name":
					module = ctx.Text(sub)
				}
			}
		case "wildcard_import":
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module: module, Name: "*", Level: level, Location: ctx.Location(node),
			})
		case "dotted_name":
			if !afterImport {
				module = ctx.Text(child)
				continue
			}
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module: module, Name: ctx.Text(child), Level: level, Location: ctx.Location(child),
			})
		case "aliased_import":
			ctx.File.Imports = append(ctx.File.Imports, Import{
				Module:   module,
				Name:     ctx.Text(child.ChildByFieldName("name")),
				Alias:    ctx.Text(child.ChildByFieldName("alias")),
				Level:    level,
				Location: ctx.Location(child),
			})
		}
	}
	return true
}

type definitionFunc func(ctx *ExtractionContext, def *sitter.Node, decorators []string)

// walkBlock visits the statements of a module or class body, descending into
// compound statements but never into function bodies.
func (e *PythonExtractor) walkBlock(ctx *ExtractionContext, block *sitter.Node, visit definitionFunc) {
	for _, stmt := range namedChildren(block) {
		switch kind := stmt.Kind(); {
		case kind == "function_definition" || kind == "class_definition":
			visit(ctx, stmt, nil)
		case kind == "decorated_definition":
			def := stmt.ChildByFieldName("definition")
			if def != nil {
				visit(ctx, def, e.decorators(ctx, stmt))
			}
		case kind == "expression_statement":
			visit(ctx, stmt, nil)
		case isCompoundStatement(kind):
			e.walkCompound(ctx, stmt, visit)
		}
	}
}

func (e *PythonExtractor) walkCompound(ctx *ExtractionContext, node *sitter.Node, visit definitionFunc) {
	for _, child := range namedChildren(node) {
		switch kind := child.Kind(); {
		case kind == "block":
			e.walkBlock(ctx, child, visit)
		case isCompoundStatement(kind):
			e.walkCompound(ctx, child, visit)
		}
	}
}

func isCompoundStatement(kind string) bool {
	switch kind {
	case "if_statement", "try_statement", "with_statement", "for_statement", "while_statement", "match_statement":
		return true
	}
	return strings.HasSuffix(kind, "_clause")
}

func (e *PythonExtractor) moduleDefinition(ctx *ExtractionContext, def *sitter.Node, decorators []string) {
	switch def.Kind() {
	case "function_definition":
		ctx.File.Functions = append(ctx.File.Functions, e.function(ctx, def, decorators))
	case "class_definition":
		ctx.File.Classes = append(ctx.File.Classes, e.class(ctx, def, decorators))
	}
}

func (e *PythonExtractor) class(ctx *ExtractionContext, node *sitter.Node, decorators []string) Class {
	cls := Class{
		Name:       ctx.Text(node.ChildByFieldName("name")),
		Decorators: decorators,
		Location:   ctx.Location(node),
	}
	if superclasses := node.ChildByFieldName("superclasses"); superclasses != nil {
		for _, arg := range namedChildren(superclasses) {
			switch arg.Kind() {
			case "keyword_argument", "list_splat", "dictionary_splat":
				continue
			}
			cls.Bases = append(cls.Bases, ctx.CompactText(arg))
		}
	}

	body := node.ChildByFieldName("body")
	cls.Docstring = e.docstring(ctx, body)
	e.walkBlock(ctx, body, func(ctx *ExtractionContext, member *sitter.Node, decorators []string) {
		switch member.Kind() {
		case "function_definition":
			cls.Methods = append(cls.Methods, e.function(ctx, member, decorators))
		case "expression_statement":
			cls.Attributes = append(cls.Attributes, e.attributes(ctx, member)...)
		}
		// Nested classes are not part of the structural model.
	})
	return cls
}

func (e *PythonExtractor) function(ctx *ExtractionContext, node *sitter.Node, decorators []string) Function {
	fn := Function{
		Name:       ctx.Text(node.ChildByFieldName("name")),
		Decorators: decorators,
		Location:   ctx.Location(node),
	}
	fn.IsAsync = childOfKind(node, "async") != nil
	fn.Parameters = e.parameters(ctx, node.ChildByFieldName("parameters"))
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		fn.Returns = ctx.CompactText(ret)
	}
	fn.Docstring = e.docstring(ctx, node.ChildByFieldName("body"))

	for _, dec := range decorators {
		switch decoratorName(dec) {
		case "staticmethod":
			fn.IsStatic = true
		case "classmethod":
			fn.IsClassLevel = true
		case "abstractmethod":
			fn.IsAbstract = true
		}
	}
	return fn
}

func (e *PythonExtractor) parameters(ctx *ExtractionContext, params *sitter.Node) []Parameter {
	var out []Parameter
	for _, param := range namedChildren(params) {
		switch param.Kind() {
		case "keyword_separator":
			out = append(out, Parameter{Kind: ParamKeywordOnlyMarker})
		case "positional_separator":
			out = append(out, Parameter{Kind: ParamPositionalOnlyMarker})
		case "typed_parameter":
			p := e.parameterName(ctx, param.NamedChild(0))
			p.Annotation = ctx.CompactText(param.ChildByFieldName("type"))
			out = append(out, p)
		case "default_parameter", "typed_default_parameter":
			p := e.parameterName(ctx, param.ChildByFieldName("name"))
			if typ := param.ChildByFieldName("type"); typ != nil {
				p.Annotation = ctx.CompactText(typ)
			}
			p.Default = ctx.CompactText(param.ChildByFieldName("value"))
			out = append(out, p)
		default:
			out = append(out, e.parameterName(ctx, param))
		}
	}
	return out
}

func (e *PythonExtractor) parameterName(ctx *ExtractionContext, node *sitter.Node) Parameter {
	if node == nil {
		return Parameter{}
	}
	switch node.Kind() {
	case "list_splat_pattern":
		return Parameter{Name: ctx.Text(node.NamedChild(0)), Kind: ParamVarPositional}
	case "dictionary_splat_pattern":
		return Parameter{Name: ctx.Text(node.NamedChild(0)), Kind: ParamVarKeyword}
	}
	return Parameter{Name: ctx.CompactText(node)}
}

func (e *PythonExtractor) decorators(ctx *ExtractionContext, decorated *sitter.Node) []string {
	var out []string
	for i := uint(0); i < decorated.ChildCount(); i++ {
		child := decorated.Child(i)
		if child == nil || child.Kind() != "decorator" {
			continue
		}
		text := strings.TrimSpace(strings.TrimPrefix(ctx.CompactText(child), "@"))
		if text != "" {
			out = append(out, text)
		}
	}
	return out
}

// decoratorName reduces "abc.abstractmethod" or "functools.cache(maxsize=1)"
// to the callee's last segment.
func decoratorName(dec string) string {
	if idx := strings.IndexByte(dec, '('); idx >= 0 {
		dec = dec[:idx]
	}
	dec = strings.TrimSpace(dec)
	if idx := strings.LastIndexByte(dec, '.'); idx >= 0 {
		dec = dec[idx+1:]
	}
	return dec
}

func (e *PythonExtractor) docstring(ctx *ExtractionContext, body *sitter.Node) string {
	stmts := namedChildren(body)
	if len(stmts) == 0 || stmts[0].Kind() != "expression_statement" {
		return ""
	}
	exprs := namedChildren(stmts[0])
	if len(exprs) != 1 {
		return ""
	}
	str := exprs[0]
	if str.Kind() == "concatenated_string" {
		str = str.NamedChild(0)
	}
	if str == nil || str.Kind() != "string" {
		return ""
	}
	return firstDocLine(ctx.Text(str))
}

func firstDocLine(literal string) string {
	body := strings.TrimLeft(literal, "rRbBuUfF")
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(body, quote) && strings.HasSuffix(body, quote) && len(body) >= 2*len(quote) {
			body = body[len(quote) : len(body)-len(quote)]
			break
		}
	}
	for _, line := range strings.Split(body, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}

// attributes reads simple class-body assignments: "x = 1", "x: int",
// "x: int = 1" and chained "a = b = 0". Tuple targets are ignored.
func (e *PythonExtractor) attributes(ctx *ExtractionContext, stmt *sitter.Node) []Attribute {
	exprs := namedChildren(stmt)
	if len(exprs) != 1 || exprs[0].Kind() != "assignment" {
		return nil
	}

	var targets []*sitter.Node
	var annotation, value *sitter.Node
	node := exprs[0]
	for {
		if left := node.ChildByFieldName("left"); left != nil && left.Kind() == "identifier" {
			targets = append(targets, left)
		}
		if typ := node.ChildByFieldName("type"); typ != nil && annotation == nil {
			annotation = typ
		}
		right := node.ChildByFieldName("right")
		if right != nil && right.Kind() == "assignment" {
			node = right
			continue
		}
		value = right
		break
	}

	out := make([]Attribute, 0, len(targets))
	for _, target := range targets {
		attr := Attribute{
			Name:     ctx.Text(target),
			Location: ctx.Location(target),
		}
		if annotation != nil {
			attr.Annotation = ctx.CompactText(annotation)
		}
		if value != nil {
			attr.Default = ctx.CompactText(value)
			if attr.Annotation == "" {
				attr.InferredType = inferType(ctx, value)
			}
		}
		out = append(out, attr)
	}
	return out
}

func inferType(ctx *ExtractionContext, value *sitter.Node) string {
	switch value.Kind() {
	case "integer":
		return "int"
	case "float":
		return "float"
	case "true", "false":
		return "bool"
	case "none":
		return "None"
	case "string", "concatenated_string":
		text := strings.ToLower(ctx.Text(value))
		prefix := text[:strings.IndexAny(text+`"'`, `"'`)]
		if strings.Contains(prefix, "b") {
			return "bytes"
		}
		return "str"
	case "list", "list_comprehension":
		return "list"
	case "dictionary", "dictionary_comprehension":
		return "dict"
	case "tuple":
		return "tuple"
	case "set", "set_comprehension":
		return "set"
	case "identifier":
		return ctx.Text(value)
	}
	return ""
}
