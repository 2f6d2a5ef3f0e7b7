package extract

import (
	"strings"

	"swiftsight/internal/syntax"
	"swiftsight/internal/util"
)

// Extractor walks one parsed tree and produces the occurrence and import
// sets. It holds no state between calls and is safe to share across files.
type Extractor struct {
	// DefinitionsOnly skips usage recording; the interface index uses this
	// when extracting published interface text.
	DefinitionsOnly bool
}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract produces every symbol occurrence and raw import name in the file.
// Pure function of the tree; all accumulators are reset on entry.
func (e *Extractor) Extract(tree *syntax.Tree, fileName string) (OccurrenceSet, map[string]bool) {
	t := newTraversal(e.DefinitionsOnly)
	if tree != nil && tree.Root != nil {
		t.pushBlock()
		e.visit(t, tree.Root)
		t.popBlock()
	}
	return t.occurrences, t.imports
}

func (e *Extractor) visit(t *traversal, n *syntax.Node) {
	if n == nil {
		return
	}

	switch n.Kind {
	case syntax.KindSourceFile, syntax.KindOther:
		e.visitChildren(t, n)

	case syntax.KindImportDecl:
		if n.Text != "" {
			t.imports[n.Text] = true
		}

	case syntax.KindStructDecl:
		e.visitNominal(t, n, DefStruct)
	case syntax.KindClassDecl:
		e.visitNominal(t, n, DefClass)
	case syntax.KindEnumDecl:
		e.visitNominal(t, n, DefEnum)
	case syntax.KindProtocolDecl:
		e.visitNominal(t, n, DefProtocol)
	case syntax.KindActorDecl:
		e.visitNominal(t, n, DefActor)
	case syntax.KindMacroDecl:
		e.visitNominal(t, n, DefMacro)
	case syntax.KindExtensionDecl:
		e.visitExtension(t, n)
	case syntax.KindTypeAliasDecl:
		e.visitTypeAlias(t, n)
	case syntax.KindAssociatedTypeDecl:
		e.visitAssociatedType(t, n)
	case syntax.KindFuncDecl:
		e.visitCallable(t, n, false)
	case syntax.KindInitDecl:
		e.visitCallable(t, n, true)
	case syntax.KindVarDecl:
		e.visitBinding(t, n)
	case syntax.KindEnumCaseDecl:
		e.visitTypeFields(t, n)

	case syntax.KindGenericParamList:
		// Constraint lists on generic parameters (<T: Codable>) are usages;
		// the parameter names themselves were collected by the parent.
		for _, p := range n.Children {
			if p.Kind == syntax.KindGenericParam {
				e.visitTypeFields(t, p)
			}
		}
	case syntax.KindGenericParam:
		e.visitTypeFields(t, n)
	case syntax.KindInheritanceClause, syntax.KindWhereClause:
		e.visitTypeFields(t, n)
	case syntax.KindParam:
		e.visitType(t, n.Child("type"))

	case syntax.KindAttribute:
		e.recordAttribute(t, n)

	case syntax.KindCodeBlock:
		t.pushBlock()
		e.visitChildren(t, n)
		t.popBlock()

	case syntax.KindTypeIdentifier,
		syntax.KindMemberType,
		syntax.KindOptionalType,
		syntax.KindArrayType,
		syntax.KindDictionaryType,
		syntax.KindTupleType,
		syntax.KindFunctionType,
		syntax.KindCompositionType,
		syntax.KindOpaqueType,
		syntax.KindExistentialType,
		syntax.KindGenericArgList:
		e.visitType(t, n)

	case syntax.KindCallExpr:
		e.visitCall(t, n)
	case syntax.KindMemberAccessExpr:
		e.visitMemberAccess(t, n)
	case syntax.KindIdentifierExpr:
		e.recordUsage(t, n.Text, "", false, n.Line, n.Col)
	case syntax.KindCastExpr:
		e.visitType(t, n.Child("type"))
		e.visitChildren(t, n)
	case syntax.KindReturnStmt, syntax.KindThrowStmt:
		e.visitChildren(t, n)
	case syntax.KindKeyPathExpr:
		// The root is visited structurally, not parsed out of raw text.
		e.visitType(t, n.Child("root"))
		e.visitChildren(t, n)
	}
}

func (e *Extractor) visitChildren(t *traversal, n *syntax.Node) {
	for _, c := range n.Children {
		e.visit(t, c)
	}
}

// visitNominal handles struct/class/enum/protocol/actor/macro declarations.
func (e *Extractor) visitNominal(t *traversal, n *syntax.Node, kind DefinitionKind) {
	name := declaredName(n)
	if name == "" {
		e.visitChildren(t, n)
		return
	}
	pos := namePosition(n)

	t.occurrences.Add(Occurrence{
		Name:     name,
		FullName: t.qualified(name),
		Kind:     OccDefinition,
		DefKind:  kind,
		Line:     pos.Line,
		Col:      pos.Col,
		Scope:    t.scopeChain(),
	})

	t.pushGenerics(genericNames(n))
	t.pushScope(name)
	for _, c := range n.Children {
		if c.Field == "name" {
			continue
		}
		e.visit(t, c)
	}
	t.popScope()
	t.popGenerics()
}

// visitExtension records the extended type as a usage and scopes members
// under its name, so members qualify the same way as in the original
// declaration.
func (e *Extractor) visitExtension(t *traversal, n *syntax.Node) {
	name := declaredName(n)
	if name == "" {
		e.visitChildren(t, n)
		return
	}
	pos := namePosition(n)
	e.recordUsage(t, name, "", false, pos.Line, pos.Col)

	t.pushGenerics(genericNames(n))
	t.pushScope(name)
	for _, c := range n.Children {
		if c.Field == "name" {
			continue
		}
		e.visit(t, c)
	}
	t.popScope()
	t.popGenerics()
}

func (e *Extractor) visitTypeAlias(t *traversal, n *syntax.Node) {
	name := declaredName(n)
	if name == "" {
		return
	}
	pos := namePosition(n)

	t.occurrences.Add(Occurrence{
		Name:     name,
		FullName: t.qualified(name),
		Kind:     OccDefinition,
		DefKind:  DefTypeAlias,
		Line:     pos.Line,
		Col:      pos.Col,
		Scope:    t.scopeChain(),
	})

	t.pushGenerics(genericNames(n))
	e.visitType(t, n.Child("value"))
	e.visitType(t, n.Child("type"))
	t.popGenerics()
}

func (e *Extractor) visitAssociatedType(t *traversal, n *syntax.Node) {
	name := declaredName(n)
	if name == "" {
		return
	}
	pos := namePosition(n)

	t.occurrences.Add(Occurrence{
		Name:     name,
		FullName: t.qualified(name),
		Kind:     OccDefinition,
		DefKind:  DefAssociatedType,
		Line:     pos.Line,
		Col:      pos.Col,
		Scope:    t.scopeChain(),
	})

	// Default value type and constraint list are plain usages.
	e.visitType(t, n.Child("default_value"))
	for _, c := range n.Children {
		if c.Kind == syntax.KindInheritanceClause || c.Kind == syntax.KindWhereClause {
			e.visitTypeFields(t, c)
		}
	}
}

// visitCallable handles functions and initializers. The signature types
// belong to the enclosing scope, so they are visited before the new scope
// identifier is pushed; the function's generic parameters are excluded
// throughout, including inside the signature.
func (e *Extractor) visitCallable(t *traversal, n *syntax.Node, isInit bool) {
	t.pushGenerics(genericNames(n))

	for _, c := range n.Children {
		switch {
		case c.Kind == syntax.KindAttribute:
			e.recordAttribute(t, c)
		case c.Kind == syntax.KindParam:
			e.visitType(t, c.Child("type"))
		case c.Field == "return_type" || c.Field == "throws_type":
			e.visitType(t, c)
		case c.Kind == syntax.KindWhereClause:
			e.visitTypeFields(t, c)
		case c.Kind == syntax.KindGenericParamList:
			e.visit(t, c)
		}
	}

	t.pushScope(callableScopeID(n, isInit))
	t.pushBlock()
	for _, c := range n.Children {
		if c.Kind == syntax.KindParam {
			if internal := paramInternalName(c); internal != "" {
				t.addLocal(internal)
			}
		}
	}
	if body := bodyNode(n); body != nil {
		e.visitChildren(t, body)
	}
	t.popBlock()
	t.popScope()
	t.popGenerics()
}

// visitBinding handles variable/constant declarations: the annotation and
// initializer contribute usages, then the bound name shadows later
// references within the current lexical block.
func (e *Extractor) visitBinding(t *traversal, n *syntax.Node) {
	e.visitType(t, n.Child("type"))
	if value := n.Child("value"); value != nil {
		e.visit(t, value)
	}
	if name := n.Child("name"); name != nil && name.Text != "" {
		t.addLocal(name.Text)
	}
}

// visitTypeFields visits every type-shaped child of n as a usage.
func (e *Extractor) visitTypeFields(t *traversal, n *syntax.Node) {
	for _, c := range n.Children {
		switch c.Kind {
		case syntax.KindTypeIdentifier, syntax.KindMemberType,
			syntax.KindOptionalType, syntax.KindArrayType,
			syntax.KindDictionaryType, syntax.KindTupleType,
			syntax.KindFunctionType, syntax.KindCompositionType,
			syntax.KindOpaqueType, syntax.KindExistentialType:
			e.visitType(t, c)
		case syntax.KindInheritanceClause, syntax.KindWhereClause:
			e.visitTypeFields(t, c)
		case syntax.KindOther:
			// Grammars wrap individual constraints ("T: Codable", "T == U")
			// in nodes the adapter cannot classify; the types sit below.
			e.visitTypeFields(t, c)
		}
	}
}

// visitType unwraps compound type shapes recursively down to their leaf
// nominal references, each contributing its own usage.
func (e *Extractor) visitType(t *traversal, n *syntax.Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case syntax.KindTypeIdentifier:
		e.recordUsage(t, n.Text, "", false, n.Line, n.Col)
		if args := n.FirstOfKind(syntax.KindGenericArgList); args != nil {
			e.visitType(t, args)
		}
	case syntax.KindMemberType:
		e.visitMemberType(t, n)
	case syntax.KindOptionalType, syntax.KindArrayType,
		syntax.KindOpaqueType, syntax.KindExistentialType:
		// The wrapper itself is never an occurrence, only what it wraps.
		for _, c := range n.Children {
			e.visitType(t, c)
		}
	case syntax.KindDictionaryType, syntax.KindTupleType,
		syntax.KindCompositionType, syntax.KindGenericArgList:
		for _, c := range n.Children {
			e.visitType(t, c)
		}
	case syntax.KindFunctionType:
		for _, c := range n.Children {
			e.visitType(t, c)
		}
	}
}

// visitMemberType handles dotted type references. When the leftmost
// identifier is a declared import, only the rightmost member is recorded,
// fully qualified; otherwise the base may name an unrelated nested type and
// is descended as well.
func (e *Extractor) visitMemberType(t *traversal, n *syntax.Node) {
	base := n.Child("base")
	member := n.Child("member")
	if member == nil {
		e.visitChildren(t, n)
		return
	}

	if left := leftmostName(n); left != "" && t.imports[left] {
		e.recordUsage(t, member.Text, dottedText(n), true, n.Line, n.Col)
		if args := member.FirstOfKind(syntax.KindGenericArgList); args != nil {
			e.visitType(t, args)
		}
		return
	}

	e.visitType(t, base)
	e.recordUsage(t, member.Text, dottedText(n), false, member.Line, member.Col)
	if args := member.FirstOfKind(syntax.KindGenericArgList); args != nil {
		e.visitType(t, args)
	}
}

// visitCall records a usage for the callee and descends into any explicit
// generic-argument list and the call arguments.
func (e *Extractor) visitCall(t *traversal, n *syntax.Node) {
	callee := n.Child("callee")
	switch {
	case callee == nil:
	case callee.Kind == syntax.KindIdentifierExpr:
		e.recordUsage(t, callee.Text, "", false, callee.Line, callee.Col)
	case callee.Kind == syntax.KindMemberAccessExpr:
		e.visitMemberAccess(t, callee)
	default:
		e.visit(t, callee)
	}

	if args := n.Child("generic_args"); args != nil {
		e.visitType(t, args)
	}
	for _, c := range n.Children {
		if c.Field == "args" {
			e.visit(t, c)
		}
	}
}

// visitMemberAccess records `base.member` as an import-qualified usage when
// the base names a declared import; otherwise only the base is descended,
// since value members are not type usages.
func (e *Extractor) visitMemberAccess(t *traversal, n *syntax.Node) {
	base := n.Child("base")
	member := n.Child("member")
	if base != nil && base.Kind == syntax.KindIdentifierExpr &&
		member != nil && t.imports[base.Text] && !t.isLocal(base.Text) {
		e.recordUsage(t, member.Text, base.Text+"."+member.Text, true, n.Line, n.Col)
		return
	}
	if base != nil {
		e.visit(t, base)
	}
}

func (e *Extractor) recordAttribute(t *traversal, n *syntax.Node) {
	name := strings.TrimPrefix(n.Text, "@")
	e.recordUsage(t, name, "", false, n.Line, n.Col)
}

// recordUsage applies the exclusion policy: builtins, generic parameters in
// scope, shadowed locals, and bare lower-case value identifiers are never
// recorded. Import-qualified usages skip the case check, since the
// cross-module intent is explicit.
func (e *Extractor) recordUsage(t *traversal, name, fullName string, importQualified bool, line, col int) {
	if e.DefinitionsOnly || name == "" {
		return
	}
	if IsBuiltinType(name) {
		return
	}
	if t.isGenericParam(name) {
		return
	}
	if t.isLocal(name) {
		return
	}
	if !importQualified && !util.IsTypeLikeName(name) {
		return
	}

	t.occurrences.Add(Occurrence{
		Name:            name,
		FullName:        fullName,
		Kind:            OccUsage,
		Line:            line,
		Col:             col,
		Scope:           t.scopeChain(),
		ImportQualified: importQualified,
	})
}
