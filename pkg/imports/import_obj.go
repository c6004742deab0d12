package imports

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"

	"pysort/pkg/errors"
	"pysort/pkg/pyast"
)

// Statement is one syntactic import statement. Exactly two concrete
// types implement it: Import and ImportFrom. Statements are immutable;
// their rendering and sort key are computed once and cached.
type Statement interface {
	// Module is the dotted module name the statement targets for
	// classification, dot-prefixed for relative from-imports.
	Module() string
	// IsMultiple reports whether more than one name shares the clause.
	IsMultiple() bool
	// Split decomposes a multi-name statement into fresh single-name
	// statements in declaration order; a single-name statement yields
	// one equivalent instance.
	Split() []Statement
	// Render is the canonical text form, newline-terminated, with
	// multi-name clauses alphabetically sorted.
	Render() string
	// Key identifies the statement for equality and hashing. Keys of
	// the two concrete types are distinct comparable structs, so a
	// plain import never equals a from-import.
	Key() any
	Equal(other Statement) bool

	sortKey() sortKey
}

// ImportKey identifies a plain import statement.
type ImportKey struct {
	Module string
	Asname string
}

// ImportFromKey identifies a from-import statement.
type ImportFromKey struct {
	Module string
	Symbol string
	Asname string
}

// Import is a plain `import a[, b as c]` statement.
type Import struct {
	node   *pyast.ImportNode
	key    ImportKey
	render func() string
}

// ImportFrom is a `from [.]*mod import a[, b as c]` statement.
type ImportFrom struct {
	node   *pyast.FromNode
	key    ImportFromKey
	render func() string
}

// NewImportNode wraps a parsed plain-import node.
func NewImportNode(node *pyast.ImportNode) *Import {
	first := node.Names[0]
	imp := &Import{node: node, key: ImportKey{Module: first.Name, Asname: first.Asname}}
	imp.render = sync.OnceValue(func() string {
		return "import " + renderAliases(node.Names) + "\n"
	})
	return imp
}

// NewFromNode wraps a parsed from-import node.
func NewFromNode(node *pyast.FromNode) *ImportFrom {
	first := node.Names[0]
	module := strings.Repeat(".", node.Level) + node.Module
	imp := &ImportFrom{
		node: node,
		key:  ImportFromKey{Module: module, Symbol: first.Name, Asname: first.Asname},
	}
	imp.render = sync.OnceValue(func() string {
		return "from " + module + " import " + renderAliases(node.Names) + "\n"
	})
	return imp
}

// FromString parses source text containing a single import statement of
// either shape.
func FromString(src string) (Statement, error) {
	stmt, err := pyast.ParseStatement(src)
	if err != nil {
		return nil, err
	}
	return FromNode(stmt), nil
}

// FromNode wraps an already-parsed statement node.
func FromNode(stmt pyast.Stmt) Statement {
	switch node := stmt.(type) {
	case *pyast.ImportNode:
		return NewImportNode(node)
	case *pyast.FromNode:
		return NewFromNode(node)
	default:
		// pyast.Stmt is a closed set
		panic(fmt.Sprintf("unexpected statement node %T", stmt))
	}
}

// NewImport parses source text that must be a plain import statement.
func NewImport(src string) (*Import, error) {
	stmt, err := FromString(src)
	if err != nil {
		return nil, err
	}
	imp, ok := stmt.(*Import)
	if !ok {
		return nil, fmt.Errorf("%w: expected plain import, got %q", errors.ErrParseMismatch, src)
	}
	return imp, nil
}

// NewImportFrom parses source text that must be a from-import statement.
func NewImportFrom(src string) (*ImportFrom, error) {
	stmt, err := FromString(src)
	if err != nil {
		return nil, err
	}
	imp, ok := stmt.(*ImportFrom)
	if !ok {
		return nil, fmt.Errorf("%w: expected from import, got %q", errors.ErrParseMismatch, src)
	}
	return imp, nil
}

// RenderSingle renders a statement that must name exactly one module or
// symbol.
func RenderSingle(s Statement) (string, error) {
	if s.IsMultiple() {
		return "", fmt.Errorf("%w: %q", errors.ErrMalformedStatement, strings.TrimSuffix(s.Render(), "\n"))
	}
	return s.Render(), nil
}

// Base is the first dot-separated segment of a module name; leading-dot
// relative modules have an empty base.
func Base(module string) string {
	base, _, _ := strings.Cut(module, ".")
	return base
}

func (i *Import) Module() string       { return i.node.Names[0].Name }
func (i *Import) IsMultiple() bool     { return len(i.node.Names) > 1 }
func (i *Import) Render() string       { return i.render() }
func (i *Import) Key() any             { return i.key }
func (i *Import) ImportKey() ImportKey { return i.key }
func (i *Import) Equal(other Statement) bool {
	o, ok := other.(*Import)
	return ok && o.key == i.key
}

func (i *Import) Split() []Statement {
	out := make([]Statement, 0, len(i.node.Names))
	for _, name := range i.node.Names {
		out = append(out, NewImportNode(&pyast.ImportNode{Names: []pyast.Alias{name}}))
	}
	return out
}

func (i *Import) sortKey() sortKey {
	return sortKey{
		kind:         kindImport,
		foldedModule: strings.ToLower(i.key.Module),
		foldedAsname: strings.ToLower(i.key.Asname),
		module:       i.key.Module,
		asname:       i.key.Asname,
	}
}

func (f *ImportFrom) Module() string         { return f.key.Module }
func (f *ImportFrom) IsMultiple() bool       { return len(f.node.Names) > 1 }
func (f *ImportFrom) Render() string         { return f.render() }
func (f *ImportFrom) Key() any               { return f.key }
func (f *ImportFrom) FromKey() ImportFromKey { return f.key }
func (f *ImportFrom) Equal(other Statement) bool {
	o, ok := other.(*ImportFrom)
	return ok && o.key == f.key
}

func (f *ImportFrom) Split() []Statement {
	out := make([]Statement, 0, len(f.node.Names))
	for _, name := range f.node.Names {
		out = append(out, NewFromNode(&pyast.FromNode{
			Level:  f.node.Level,
			Module: f.node.Module,
			Names:  []pyast.Alias{name},
		}))
	}
	return out
}

func (f *ImportFrom) sortKey() sortKey {
	return sortKey{
		kind:         kindImportFrom,
		foldedModule: strings.ToLower(f.key.Module),
		foldedSymbol: strings.ToLower(f.key.Symbol),
		foldedAsname: strings.ToLower(f.key.Asname),
		module:       f.key.Module,
		symbol:       f.key.Symbol,
		asname:       f.key.Asname,
	}
}

// plain imports sort before from-imports within a bucket
const (
	kindImport = iota
	kindImportFrom
)

type sortKey struct {
	kind         int
	foldedModule string
	foldedSymbol string
	foldedAsname string
	module       string
	symbol       string
	asname       string
}

func compareKeys(a, b sortKey) int {
	return cmp.Or(
		cmp.Compare(a.kind, b.kind),
		cmp.Compare(a.foldedModule, b.foldedModule),
		cmp.Compare(a.foldedSymbol, b.foldedSymbol),
		cmp.Compare(a.foldedAsname, b.foldedAsname),
		cmp.Compare(a.module, b.module),
		cmp.Compare(a.symbol, b.symbol),
		cmp.Compare(a.asname, b.asname),
	)
}

func aliasString(a pyast.Alias) string {
	if a.Asname != "" {
		return a.Name + " as " + a.Asname
	}
	return a.Name
}

func renderAliases(names []pyast.Alias) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, aliasString(name))
	}
	slices.Sort(parts)
	return strings.Join(parts, ", ")
}
