package parser

import (
	"fmt"
	"strings"

	"projectdocs/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

const LanguagePython = "python"

// GrammarLoader owns the tree-sitter grammars and the parser pools built on
// them. One run analyzes a single language.
type GrammarLoader struct {
	languages map[string]*sitter.Language
	pools     map[string]*ParserPool
}

func NewGrammarLoader() *GrammarLoader {
	gl := &GrammarLoader{
		languages: make(map[string]*sitter.Language),
		pools:     make(map[string]*ParserPool),
	}
	python := sitter.NewLanguage(tree_sitter_python.Language())
	gl.languages[LanguagePython] = python
	gl.pools[LanguagePython] = NewParserPool(python)
	return gl
}

func (gl *GrammarLoader) Pool(name string) (*ParserPool, error) {
	pool, ok := gl.pools[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("grammar not loaded: %s", name)
	}
	return pool, nil
}

// Languages lists the loaded grammar names, sorted.
func (gl *GrammarLoader) Languages() []string {
	return util.SortedStringKeys(gl.languages)
}
