package parser

import (
	"sync"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parsers for one grammar so that parse
// workers do not allocate and close a parser per file.
//
//	sp := pool.Get()
//	defer pool.Put(sp)
//	tree := sp.Parse(source, nil)
//
// Safe for concurrent use.
type ParserPool struct {
	lang *sitter.Language
	pool sync.Pool

	leases   map[*sitter.Parser]time.Time
	leasesMu sync.Mutex
}

func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{
		lang:   lang,
		leases: make(map[*sitter.Parser]time.Time),
	}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// Get leases a parser configured for the pool's grammar.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	// Reset() does not clear the language, but callers may have swapped it.
	sp.SetLanguage(p.lang)

	p.leasesMu.Lock()
	p.leases[sp] = time.Now()
	p.leasesMu.Unlock()

	return sp
}

// Put resets sp and returns it to the pool. sp must not be used afterwards.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}

	p.leasesMu.Lock()
	delete(p.leases, sp)
	p.leasesMu.Unlock()

	sp.Reset()
	p.pool.Put(sp)
}

// Parse leases a parser for a single parse. The caller owns the returned tree.
func (p *ParserPool) Parse(source []byte) *sitter.Tree {
	sp := p.Get()
	defer p.Put(sp)
	return sp.Parse(source, nil)
}

// Stats returns the number of parsers currently leased.
func (p *ParserPool) Stats() int {
	p.leasesMu.Lock()
	defer p.leasesMu.Unlock()
	return len(p.leases)
}

// OldestLease reports how long the longest outstanding lease has been held.
func (p *ParserPool) OldestLease() time.Duration {
	p.leasesMu.Lock()
	defer p.leasesMu.Unlock()
	var oldest time.Duration
	now := time.Now()
	for _, at := range p.leases {
		if d := now.Sub(at); d > oldest {
			oldest = d
		}
	}
	return oldest
}
