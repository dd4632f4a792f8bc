package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"projectdocs/internal/core/errors"
	"projectdocs/internal/shared/util"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*File, error)
}

type Options struct {
	Extensions   []string // lower-case, with leading dot
	MaxFileBytes int64    // 0 disables the limit
}

// Parser turns one file's bytes into a File record. It holds no per-file
// state, so a single Parser serves every worker.
type Parser struct {
	pool         *ParserPool
	extractor    Extractor
	extensions   map[string]struct{}
	maxFileBytes int64
}

func NewParser(loader *GrammarLoader, opts Options) (*Parser, error) {
	pool, err := loader.Pool(LanguagePython)
	if err != nil {
		msg := fmt.Sprintf("python grammar unavailable (loaded: %s)", strings.Join(loader.Languages(), ", "))
		return nil, errors.Wrap(err, errors.CodeNotSupported, msg)
	}
	p := &Parser{
		pool:         pool,
		extractor:    &PythonExtractor{},
		extensions:   make(map[string]struct{}),
		maxFileBytes: opts.MaxFileBytes,
	}
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = []string{".py"}
	}
	for _, ext := range exts {
		p.extensions[strings.ToLower(ext)] = struct{}{}
	}
	return p, nil
}

func (p *Parser) IsSupportedPath(filePath string) bool {
	_, ok := p.extensions[strings.ToLower(filepath.Ext(filePath))]
	return ok
}

func (p *Parser) SupportedExtensions() []string {
	return util.SortedStringKeys(p.extensions)
}

// PoolStats reports the parsers currently leased and how long the oldest
// lease has been held.
func (p *Parser) PoolStats() (leased int, oldest time.Duration) {
	return p.pool.Stats(), p.pool.OldestLease()
}

// MaxFileBytes is the size limit callers should check before reading a file.
func (p *Parser) MaxFileBytes() int64 {
	return p.maxFileBytes
}

// ParseFile returns a PARSE_ERROR DomainError for oversized, non UTF-8 or
// syntactically invalid input. The message carries no path; callers attach it.
func (p *Parser) ParseFile(filePath string, content []byte) (*File, error) {
	if p.maxFileBytes > 0 && int64(len(content)) > p.maxFileBytes {
		return nil, errors.New(errors.CodeParse, fmt.Sprintf("file size %d exceeds limit of %d bytes", len(content), p.maxFileBytes))
	}
	if !utf8.Valid(content) {
		return nil, errors.New(errors.CodeParse, "file is not valid UTF-8")
	}

	tree := p.pool.Parse(content)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(root)
	}
	if legacy := firstLegacyStatement(root); legacy != nil {
		return nil, legacyStatementError(legacy)
	}

	res, err := p.extractor.Extract(root, content, filePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction failed")
	}
	return res, nil
}

func syntaxError(root *sitter.Node) error {
	bad := firstErrorNode(root)
	if bad == nil {
		bad = root
	}
	line := int(bad.StartPosition().Row) + 1
	col := int(bad.StartPosition().Column) + 1
	msg := fmt.Sprintf("syntax error at line %d, column %d", line, col)
	if bad.IsMissing() {
		msg += fmt.Sprintf(": missing %q", bad.Kind())
	}
	err := errors.New(errors.CodeParse, msg)
	err = errors.AddContext(err, errors.CtxLine, line)
	return errors.AddContext(err, errors.CtxColumn, col)
}

// firstErrorNode returns the earliest ERROR or MISSING node in document order.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	if !node.HasError() {
		return nil
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if found := firstErrorNode(node.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// The grammar still accepts Python 2 print and exec statements; the
// interpreter rejects them, so they are reported like any other syntax error.
var legacyStatements = map[string]string{
	"print_statement": "print",
	"exec_statement":  "exec",
}

func firstLegacyStatement(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if _, ok := legacyStatements[node.Kind()]; ok {
		return node
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if found := firstLegacyStatement(node.NamedChild(i)); found != nil {
			return found
		}
	}
	return nil
}

func legacyStatementError(node *sitter.Node) error {
	line := int(node.StartPosition().Row) + 1
	col := int(node.StartPosition().Column) + 1
	msg := fmt.Sprintf("syntax error at line %d, column %d: Python 2 %s statement", line, col, legacyStatements[node.Kind()])
	err := errors.New(errors.CodeParse, msg)
	err = errors.AddContext(err, errors.CtxLine, line)
	return errors.AddContext(err, errors.CtxColumn, col)
}
