package model

import (
	"sort"
	"strings"
)

type classIndex struct {
	names    map[string]struct{}
	bySimple map[string][]string // simple name -> qualified names, sorted
}

func newClassIndex(classes map[string]classLoc) *classIndex {
	idx := &classIndex{
		names:    make(map[string]struct{}, len(classes)),
		bySimple: make(map[string][]string),
	}
	for qualified := range classes {
		idx.names[qualified] = struct{}{}
		simple := qualified[strings.LastIndexByte(qualified, '.')+1:]
		idx.bySimple[simple] = append(idx.bySimple[simple], qualified)
	}
	for _, list := range idx.bySimple {
		sort.Strings(list)
	}
	return idx
}

func (idx *classIndex) has(qualified string) bool {
	_, ok := idx.names[qualified]
	return ok
}

// binding is what an import introduces into a module's namespace.
type binding struct {
	target   string // absolute qualified name the local name stands for
	wildcard bool
}

// importBindings maps local names to import targets; later imports shadow
// earlier ones. Wildcard imports are keyed by their target module.
func importBindings(mod Module) map[string]binding {
	out := make(map[string]binding, len(mod.Imports))
	for _, imp := range mod.Imports {
		module := imp.Module
		if imp.Level > 0 {
			module = relativeModule(mod.Package(), imp.Level, imp.Module)
		}
		switch {
		case imp.Name == "*":
			out["*"+module] = binding{target: module, wildcard: true}
		case imp.Name != "":
			out[imp.Binding()] = binding{target: joinName(module, imp.Name)}
		case imp.Alias != "":
			out[imp.Alias] = binding{target: module}
		default:
			head := imp.Binding()
			out[head] = binding{target: head}
		}
	}
	return out
}

// relativeModule resolves "from ..x import" against pkg: level 1 is pkg
// itself, each further level drops one trailing segment.
func relativeModule(pkg string, level int, module string) string {
	var parts []string
	if pkg != "" {
		parts = strings.Split(pkg, ".")
	}
	up := level - 1
	if up > len(parts) {
		up = len(parts)
	}
	return joinName(strings.Join(parts[:len(parts)-up], "."), module)
}

func joinName(prefix, name string) string {
	switch {
	case prefix == "":
		return name
	case name == "":
		return prefix
	default:
		return prefix + "." + name
	}
}

func (idx *classIndex) resolve(mod Module, bindings map[string]binding, token string) BaseRef {
	if idx.has(token) {
		return Resolved(token)
	}
	if local := joinName(mod.Name, token); idx.has(local) {
		return Resolved(local)
	}

	head, rest := token, ""
	if i := strings.IndexByte(token, '.'); i >= 0 {
		head, rest = token[:i], token[i:]
	}
	if b, ok := bindings[head]; ok && !b.wildcard {
		if candidate := b.target + rest; idx.has(candidate) {
			return Resolved(candidate)
		}
		return Unresolved(token)
	}

	var wildcards []string
	for _, b := range bindings {
		if b.wildcard {
			wildcards = append(wildcards, b.target)
		}
	}
	sort.Strings(wildcards)
	for _, module := range wildcards {
		if candidate := joinName(module, token); idx.has(candidate) {
			return Resolved(candidate)
		}
	}

	simple := token[strings.LastIndexByte(token, '.')+1:]
	candidates := idx.bySimple[simple]
	switch len(candidates) {
	case 0:
		return Unresolved(token)
	case 1:
		return Resolved(candidates[0])
	}
	best, bestScore := "", -1
	for _, c := range candidates {
		// candidates are sorted, so ties keep the smallest name
		if score := commonPrefixSegments(mod.Package(), c); score > bestScore {
			best, bestScore = c, score
		}
	}
	return Resolved(best)
}

func commonPrefixSegments(pkg, qualified string) int {
	if pkg == "" {
		return 0
	}
	a := strings.Split(pkg, ".")
	b := strings.Split(qualified, ".")
	n := 0
	for n < len(a) && n < len(b)-1 && a[n] == b[n] {
		n++
	}
	return n
}
