package syntax

// NodeKind is the closed set of syntax shapes the extractor understands.
// The walker switches exhaustively over these; adding a kind here without
// handling it in the extractor is a compile-time reviewable change, not a
// silent runtime skip.
type NodeKind int

const (
	KindSourceFile NodeKind = iota

	// Declarations
	KindImportDecl // Text holds the dotted import path
	KindStructDecl
	KindClassDecl
	KindEnumDecl
	KindProtocolDecl
	KindActorDecl
	KindExtensionDecl
	KindTypeAliasDecl
	KindAssociatedTypeDecl
	KindMacroDecl
	KindFuncDecl
	KindInitDecl
	KindVarDecl
	KindEnumCaseDecl

	// Declaration parts
	KindGenericParamList
	KindGenericParam // Text holds the parameter name
	KindInheritanceClause
	KindWhereClause
	KindParam // field "type" holds the parameter type, Text the label
	KindAttribute
	KindCodeBlock

	// Types
	KindTypeIdentifier // Text holds the bare type name
	KindMemberType     // fields "base", "member"
	KindOptionalType
	KindArrayType
	KindDictionaryType
	KindTupleType
	KindFunctionType
	KindCompositionType
	KindOpaqueType      // "some X"
	KindExistentialType // "any X"
	KindGenericArgList

	// Expressions and statements
	KindCallExpr // fields "callee", optional "generic_args", "args"
	KindMemberAccessExpr
	KindIdentifierExpr // Text holds the identifier
	KindCastExpr       // field "type"
	KindReturnStmt
	KindThrowStmt
	KindKeyPathExpr // field "root" holds the root type

	// Anything the adapter cannot classify; walked structurally.
	KindOther
)

// Node is one position-annotated syntax tree node. Children carry an
// optional Field naming their role within the parent ("name", "type",
// "body", ...), mirroring tree-sitter field names.
type Node struct {
	Kind     NodeKind
	Field    string
	Text     string
	Line     int // 1-based
	Col      int // 1-based
	Children []*Node
}

// Tree is the parse result for one source file.
type Tree struct {
	Path string
	Root *Node
}

// Child returns the first child with the given field name, or nil.
func (n *Node) Child(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildrenOf returns all children with the given field name.
func (n *Node) ChildrenOf(field string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

// FirstOfKind returns the first child of the given kind, or nil.
func (n *Node) FirstOfKind(kind NodeKind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}
