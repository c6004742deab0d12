package pyast

import (
	"fmt"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"pysort/pkg/errors"
)

// Alias is one imported name together with its optional "as" binding.
type Alias struct {
	Name   string
	Asname string
}

// ImportNode is a plain `import a, b as c` statement.
type ImportNode struct {
	Names []Alias
}

// FromNode is a `from [.]*mod import a, b as c` statement. Level is the
// number of leading dots; Module is empty for `from . import x`.
type FromNode struct {
	Level  int
	Module string
	Names  []Alias
}

// Stmt is the closed set of statement nodes the parser produces.
type Stmt interface {
	stmtNode()
}

func (*ImportNode) stmtNode() {}
func (*FromNode) stmtNode()   {}

func newPythonParser() (*tree_sitter.Parser, error) {
	parser := tree_sitter.NewParser()
	lang := tree_sitter.NewLanguage(tree_sitter_python.Language())
	if err := parser.SetLanguage(lang); err != nil {
		parser.Close()
		return nil, fmt.Errorf("%s: %w", errors.ErrMsgFailedToLoadGrammar, err)
	}
	return parser, nil
}

// ParseStatement parses source text containing exactly one import
// statement and returns its structured node. Text that is not a single
// import statement is rejected.
func ParseStatement(src string) (Stmt, error) {
	parser, err := newPythonParser()
	if err != nil {
		return nil, err
	}
	defer parser.Close()

	source := []byte(src)
	tree := parser.Parse(source, nil)
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%s: %q", errors.ErrMsgInvalidSyntax, src)
	}

	var stmt Stmt
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		if child.Kind() == "comment" {
			continue
		}
		converted, err := convertStatement(child, source)
		if err != nil {
			return nil, err
		}
		if stmt != nil {
			return nil, fmt.Errorf("%s: %q", errors.ErrMsgMultipleStatements, src)
		}
		stmt = converted
	}
	if stmt == nil {
		return nil, fmt.Errorf("%s: %q", errors.ErrMsgNotAnImport, src)
	}
	return stmt, nil
}

// Span is a statement's byte range in the source it was parsed from.
type Span struct {
	Start uint
	End   uint
}

// LeadingImports parses a whole module and returns the run of top-level
// import statements at its head, after any docstring and leading
// comments. The returned span covers the run; a comment inside the run
// terminates it so rewriting never loses text.
func LeadingImports(source []byte) ([]Stmt, Span, error) {
	parser, err := newPythonParser()
	if err != nil {
		return nil, Span{}, err
	}
	defer parser.Close()

	tree := parser.Parse(source, nil)
	defer tree.Close()

	root := tree.RootNode()
	var stmts []Stmt
	var span Span
	for i := uint(0); i < root.NamedChildCount(); i++ {
		child := root.NamedChild(i)
		switch child.Kind() {
		case "import_statement", "import_from_statement", "future_import_statement":
			converted, err := convertStatement(child, source)
			if err != nil {
				return nil, Span{}, err
			}
			if len(stmts) == 0 {
				span.Start = child.StartByte()
			}
			span.End = child.EndByte()
			stmts = append(stmts, converted)
			continue
		case "comment":
			if len(stmts) == 0 {
				continue
			}
		case "expression_statement":
			// module docstring
			if len(stmts) == 0 && child.NamedChildCount() == 1 &&
				child.NamedChild(0).Kind() == "string" {
				continue
			}
		}
		break
	}
	return stmts, span, nil
}

func convertStatement(node *tree_sitter.Node, source []byte) (Stmt, error) {
	switch node.Kind() {
	case "import_statement":
		return &ImportNode{Names: fieldAliases(node, source)}, nil
	case "import_from_statement":
		level, module := fromModule(node, source)
		return &FromNode{Level: level, Module: module, Names: fromAliases(node, source)}, nil
	case "future_import_statement":
		// `from __future__ import x` has its own node kind and no
		// module_name field.
		return &FromNode{Module: "__future__", Names: fromAliases(node, source)}, nil
	default:
		return nil, fmt.Errorf("%s: %s", errors.ErrMsgNotAnImport, node.Kind())
	}
}

// fieldAliases collects the children under the "name" field, preserving
// declaration order.
func fieldAliases(node *tree_sitter.Node, source []byte) []Alias {
	var aliases []Alias
	for i := uint(0); i < node.ChildCount(); i++ {
		if node.FieldNameForChild(uint32(i)) != "name" {
			continue
		}
		aliases = append(aliases, toAlias(node.Child(i), source))
	}
	return aliases
}

// fromAliases is fieldAliases plus `from x import *`, whose wildcard
// carries no field name in the grammar.
func fromAliases(node *tree_sitter.Node, source []byte) []Alias {
	aliases := fieldAliases(node, source)
	for i := uint(0); i < node.NamedChildCount(); i++ {
		if node.NamedChild(i).Kind() == "wildcard_import" {
			aliases = append(aliases, Alias{Name: "*"})
		}
	}
	return aliases
}

func toAlias(node *tree_sitter.Node, source []byte) Alias {
	if node.Kind() == "aliased_import" {
		alias := Alias{Name: node.ChildByFieldName("name").Utf8Text(source)}
		if as := node.ChildByFieldName("alias"); as != nil {
			alias.Asname = as.Utf8Text(source)
		}
		return alias
	}
	return Alias{Name: node.Utf8Text(source)}
}

func fromModule(node *tree_sitter.Node, source []byte) (int, string) {
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return 0, ""
	}
	if moduleNode.Kind() != "relative_import" {
		return 0, moduleNode.Utf8Text(source)
	}
	level := 0
	module := ""
	for i := uint(0); i < moduleNode.NamedChildCount(); i++ {
		child := moduleNode.NamedChild(i)
		switch child.Kind() {
		case "import_prefix":
			level = strings.Count(child.Utf8Text(source), ".")
		case "dotted_name":
			module = child.Utf8Text(source)
		}
	}
	return level, module
}
