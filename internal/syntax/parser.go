package syntax

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Parser produces a position-annotated syntax tree for one source file.
type Parser interface {
	ParseFile(path string, source []byte) (*Tree, error)
}

// TreeSitterParser adapts a dynamically loaded tree-sitter Swift grammar
// into the closed Node kind set.
type TreeSitterParser struct {
	lang *sitter.Language
}

func NewTreeSitterParser(grammarPath string) (*TreeSitterParser, error) {
	lang, err := LoadGrammar(grammarPath, "swift")
	if err != nil {
		return nil, err
	}
	return &TreeSitterParser{lang: lang}, nil
}

func (p *TreeSitterParser) ParseFile(path string, source []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.lang)

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("parse failed: %s", path)
	}
	defer tree.Close()

	root := convert(tree.RootNode(), "", source)
	return &Tree{Path: path, Root: root}, nil
}

// kindTable maps tree-sitter-swift node kinds onto the closed kind set.
// Shapes not listed degrade to KindOther and are walked structurally.
var kindTable = map[string]NodeKind{
	"source_file":                KindSourceFile,
	"import_declaration":         KindImportDecl,
	"protocol_declaration":       KindProtocolDecl,
	"typealias_declaration":      KindTypeAliasDecl,
	"associatedtype_declaration": KindAssociatedTypeDecl,
	"macro_declaration":          KindMacroDecl,
	"function_declaration":       KindFuncDecl,
	"init_declaration":           KindInitDecl,
	"property_declaration":       KindVarDecl,
	"enum_entry":                 KindEnumCaseDecl,
	"type_parameters":            KindGenericParamList,
	"type_parameter":             KindGenericParam,
	"inheritance_specifier":      KindInheritanceClause,
	"type_constraints":           KindWhereClause,
	"parameter":                  KindParam,
	"attribute":                  KindAttribute,
	"function_body":              KindCodeBlock,
	"statements":                 KindCodeBlock,
	"type_identifier":            KindTypeIdentifier,
	"user_type":                  KindTypeIdentifier,
	"optional_type":              KindOptionalType,
	"array_type":                 KindArrayType,
	"dictionary_type":            KindDictionaryType,
	"tuple_type":                 KindTupleType,
	"function_type":              KindFunctionType,
	"protocol_composition_type":  KindCompositionType,
	"opaque_type":                KindOpaqueType,
	"existential_type":           KindExistentialType,
	"type_arguments":             KindGenericArgList,
	"call_expression":            KindCallExpr,
	"navigation_expression":      KindMemberAccessExpr,
	"simple_identifier":          KindIdentifierExpr,
	"as_expression":              KindCastExpr,
	"control_transfer_statement": KindReturnStmt,
	"throw_keyword":              KindThrowStmt,
	"key_path_expression":        KindKeyPathExpr,
}

// fieldTable renames grammar field names onto the roles the extractor
// reads. Unlisted fields pass through unchanged.
var fieldTable = map[string]string{
	"function": "callee",
	"target":   "base",
	"suffix":   "member",
	"result":   "return_type",
}

func convert(n *sitter.Node, field string, source []byte) *Node {
	kind := classify(n, source)
	out := &Node{
		Kind:  kind,
		Field: field,
		Line:  int(n.StartPosition().Row) + 1,
		Col:   int(n.StartPosition().Column) + 1,
	}

	switch kind {
	case KindImportDecl:
		out.Text = importPath(n, source)
	case KindTypeIdentifier, KindIdentifierExpr, KindGenericParam, KindAttribute:
		out.Text = nameText(n, source)
	case KindParam:
		// A parameter written with one identifier ("from: Int") carries it
		// in the name field only; the label equals the internal name then.
		out.Text = nodeText(n.ChildByFieldName("external_name"), source)
		if out.Text == "" {
			out.Text = nodeText(n.ChildByFieldName("name"), source)
		}
	}

	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		childField := n.FieldNameForChild(uint32(i))
		if mapped, ok := fieldTable[childField]; ok {
			childField = mapped
		}
		out.Children = append(out.Children, convert(child, childField, source))
	}

	// Dotted user types ("Lib.Widget") arrive as one node with several
	// identifier children; rebuild them into base/member chains.
	if kind == KindTypeIdentifier {
		if chain := memberChain(out); chain != nil {
			return chain
		}
	}
	return out
}

func memberChain(n *Node) *Node {
	var parts []*Node
	for _, c := range n.Children {
		if c.Kind == KindTypeIdentifier {
			parts = append(parts, c)
		}
	}
	if len(parts) < 2 {
		return nil
	}

	// Explicit generic arguments belong to the rightmost member.
	last := parts[len(parts)-1]
	for _, c := range n.Children {
		if c.Kind == KindGenericArgList {
			last.Children = append(last.Children, c)
		}
	}

	node := parts[0]
	node.Field = "base"
	for _, member := range parts[1:] {
		member.Field = "member"
		node = &Node{
			Kind:     KindMemberType,
			Field:    "base",
			Line:     n.Line,
			Col:      n.Col,
			Children: []*Node{node, member},
		}
	}
	node.Field = n.Field
	return node
}

// classify resolves grammar kinds that multiplex several declaration shapes.
// tree-sitter-swift parses struct/class/enum/actor/extension all as
// class_declaration, distinguished by a declaration-kind token.
func classify(n *sitter.Node, source []byte) NodeKind {
	raw := n.Kind()
	if raw == "class_declaration" {
		switch declarationKeyword(n, source) {
		case "struct":
			return KindStructDecl
		case "enum":
			return KindEnumDecl
		case "actor":
			return KindActorDecl
		case "extension":
			return KindExtensionDecl
		default:
			return KindClassDecl
		}
	}
	if kind, ok := kindTable[raw]; ok {
		return kind
	}
	return KindOther
}

func declarationKeyword(n *sitter.Node, source []byte) string {
	for i := uint(0); i < n.ChildCount(); i++ {
		switch text := nodeText(n.Child(i), source); text {
		case "struct", "class", "enum", "actor", "extension":
			return text
		}
	}
	return ""
}

func importPath(n *sitter.Node, source []byte) string {
	var parts []string
	for i := uint(0); i < n.ChildCount(); i++ {
		child := n.Child(i)
		if child.Kind() == "identifier" || child.Kind() == "simple_identifier" {
			parts = append(parts, nodeText(child, source))
		}
	}
	return strings.Join(parts, ".")
}

func nameText(n *sitter.Node, source []byte) string {
	if name := n.ChildByFieldName("name"); name != nil {
		return nodeText(name, source)
	}
	return nodeText(n, source)
}

func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return string(source[n.StartByte():n.EndByte()])
}
