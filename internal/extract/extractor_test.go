package extract

import (
	"testing"

	"swiftsight/internal/syntax"
)

func ident(kind syntax.NodeKind, field, text string, line, col int) *syntax.Node {
	return &syntax.Node{Kind: kind, Field: field, Text: text, Line: line, Col: col}
}

func typeRef(name string, line, col int, args ...*syntax.Node) *syntax.Node {
	n := &syntax.Node{Kind: syntax.KindTypeIdentifier, Text: name, Line: line, Col: col}
	if len(args) > 0 {
		n.Children = append(n.Children, &syntax.Node{
			Kind:     syntax.KindGenericArgList,
			Children: args,
		})
	}
	return n
}

func withField(field string, n *syntax.Node) *syntax.Node {
	n.Field = field
	return n
}

func sourceFile(children ...*syntax.Node) *syntax.Tree {
	return &syntax.Tree{
		Path: "test.swift",
		Root: &syntax.Node{Kind: syntax.KindSourceFile, Line: 1, Col: 1, Children: children},
	}
}

func findOccurrence(set OccurrenceSet, name string, kind OccurrenceKind) (Occurrence, bool) {
	for _, o := range set.Values() {
		if o.Name == name && o.Kind == kind {
			return o, true
		}
	}
	return Occurrence{}, false
}

func TestTypeAliasWithBuiltinTarget(t *testing.T) {
	// typealias ID = String
	tree := sourceFile(&syntax.Node{
		Kind: syntax.KindTypeAliasDecl,
		Line: 1, Col: 1,
		Children: []*syntax.Node{
			ident(syntax.KindIdentifierExpr, "name", "ID", 1, 1),
			withField("value", typeRef("String", 1, 16)),
		},
	})

	occurrences, imports := NewExtractor().Extract(tree, "test.swift")

	if len(imports) != 0 {
		t.Errorf("expected no imports, got %d", len(imports))
	}
	if len(occurrences) != 1 {
		t.Fatalf("expected exactly 1 occurrence, got %d: %v", len(occurrences), occurrences.Values())
	}

	def, ok := findOccurrence(occurrences, "ID", OccDefinition)
	if !ok {
		t.Fatal("ID definition not found")
	}
	if def.DefKind != DefTypeAlias {
		t.Errorf("expected typealias kind, got %s", def.DefKind)
	}
	if def.Line != 1 || def.Col != 1 {
		t.Errorf("expected position 1:1, got %d:%d", def.Line, def.Col)
	}
	if _, found := findOccurrence(occurrences, "String", OccUsage); found {
		t.Error("String is a builtin and must not be recorded")
	}
}

func TestNestedStructDefinitions(t *testing.T) {
	// struct Outer { struct Inner {} }
	tree := sourceFile(&syntax.Node{
		Kind: syntax.KindStructDecl,
		Line: 1, Col: 1,
		Children: []*syntax.Node{
			ident(syntax.KindIdentifierExpr, "name", "Outer", 1, 8),
			{
				Kind: syntax.KindStructDecl,
				Line: 1, Col: 15,
				Children: []*syntax.Node{
					ident(syntax.KindIdentifierExpr, "name", "Inner", 1, 22),
				},
			},
		},
	})

	occurrences, _ := NewExtractor().Extract(tree, "test.swift")

	outer, ok := findOccurrence(occurrences, "Outer", OccDefinition)
	if !ok {
		t.Fatal("Outer definition not found")
	}
	if len(outer.Scope) != 0 {
		t.Errorf("Outer must have empty scope chain, got %v", outer.Scope)
	}
	if outer.FullName != "Outer" {
		t.Errorf("expected FullName Outer, got %s", outer.FullName)
	}

	inner, ok := findOccurrence(occurrences, "Inner", OccDefinition)
	if !ok {
		t.Fatal("Inner definition not found")
	}
	if inner.FullName != "Outer.Inner" {
		t.Errorf("expected FullName Outer.Inner, got %s", inner.FullName)
	}
	if len(inner.Scope) != 1 || inner.Scope[0] != "Outer" {
		t.Errorf("expected scope [Outer], got %v", inner.Scope)
	}
}

func TestGenericParameterShadowing(t *testing.T) {
	// func wrap<T>(value: Optional<Array<T>>) {}
	tree := sourceFile(&syntax.Node{
		Kind: syntax.KindFuncDecl,
		Line: 1, Col: 1,
		Children: []*syntax.Node{
			ident(syntax.KindIdentifierExpr, "name", "wrap", 1, 6),
			{
				Kind: syntax.KindGenericParamList,
				Children: []*syntax.Node{
					ident(syntax.KindGenericParam, "", "T", 1, 11),
				},
			},
			{
				Kind: syntax.KindParam,
				Text: "value",
				Children: []*syntax.Node{
					ident(syntax.KindIdentifierExpr, "name", "value", 1, 14),
					withField("type", typeRef("Optional", 1, 21,
						typeRef("Array", 1, 30, typeRef("T", 1, 36)))),
				},
			},
			{Kind: syntax.KindCodeBlock, Line: 1, Col: 41},
		},
	})

	occurrences, _ := NewExtractor().Extract(tree, "test.swift")

	if _, ok := findOccurrence(occurrences, "Optional", OccUsage); !ok {
		t.Error("Optional usage not found")
	}
	if _, ok := findOccurrence(occurrences, "Array", OccUsage); !ok {
		t.Error("Array usage not found")
	}
	if _, ok := findOccurrence(occurrences, "T", OccUsage); ok {
		t.Error("generic parameter T must never be recorded as a usage")
	}
}

func TestOverloadScopeDisambiguation(t *testing.T) {
	makeFunc := func(label string) *syntax.Node {
		return &syntax.Node{
			Kind: syntax.KindFuncDecl,
			Children: []*syntax.Node{
				ident(syntax.KindIdentifierExpr, "name", "make", 1, 6),
				{
					Kind: syntax.KindParam,
					Text: label,
					Children: []*syntax.Node{
						withField("type", typeRef("Int", 1, 20)),
					},
				},
				{
					Kind: syntax.KindCodeBlock,
					Children: []*syntax.Node{
						{
							Kind: syntax.KindCallExpr,
							Line: 2, Col: 5,
							Children: []*syntax.Node{
								ident(syntax.KindIdentifierExpr, "callee", "Widget", 2, 5),
							},
						},
					},
				},
			},
		}
	}

	tree := sourceFile(makeFunc("from"), makeFunc("with"))
	occurrences, _ := NewExtractor().Extract(tree, "test.swift")

	chains := make(map[string]bool)
	for _, o := range occurrences.Values() {
		if o.Name == "Widget" && o.Kind == OccUsage {
			if len(o.Scope) != 1 {
				t.Fatalf("expected scope depth 1, got %v", o.Scope)
			}
			chains[o.Scope[0]] = true
		}
	}

	if len(chains) != 2 {
		t.Fatalf("expected 2 distinct scope identifiers, got %v", chains)
	}
	if !chains["make(from:)->Void"] || !chains["make(with:)->Void"] {
		t.Errorf("unexpected scope identifiers: %v", chains)
	}
}

func TestOverloadsWithSingleIdentifierParams(t *testing.T) {
	// func make(from: Int) {} — the label token doubles as the internal
	// name, so Param.Text stays empty and only the name child is set.
	makeFunc := func(param string) *syntax.Node {
		return &syntax.Node{
			Kind: syntax.KindFuncDecl,
			Children: []*syntax.Node{
				ident(syntax.KindIdentifierExpr, "name", "make", 1, 6),
				{
					Kind: syntax.KindParam,
					Children: []*syntax.Node{
						ident(syntax.KindIdentifierExpr, "name", param, 1, 11),
						withField("type", typeRef("Int", 1, 17)),
					},
				},
				{
					Kind: syntax.KindCodeBlock,
					Children: []*syntax.Node{
						{
							Kind: syntax.KindCallExpr,
							Line: 2, Col: 5,
							Children: []*syntax.Node{
								ident(syntax.KindIdentifierExpr, "callee", "Widget", 2, 5),
							},
						},
					},
				},
			},
		}
	}

	tree := sourceFile(makeFunc("from"), makeFunc("with"))
	occurrences, _ := NewExtractor().Extract(tree, "test.swift")

	chains := make(map[string]bool)
	for _, o := range occurrences.Values() {
		if o.Name == "Widget" && o.Kind == OccUsage {
			chains[o.Scope[0]] = true
		}
	}

	if len(chains) != 2 {
		t.Fatalf("overloads must keep distinct scope identifiers, got %v", chains)
	}
	if !chains["make(from:)->Void"] || !chains["make(with:)->Void"] {
		t.Errorf("unexpected scope identifiers: %v", chains)
	}
}

func TestWhereClauseConstraintUsages(t *testing.T) {
	// func sort<T>(items: Array<T>) where T: Codable {} — each constraint
	// arrives wrapped in a node the adapter leaves unclassified.
	tree := sourceFile(&syntax.Node{
		Kind: syntax.KindFuncDecl,
		Children: []*syntax.Node{
			ident(syntax.KindIdentifierExpr, "name", "sort", 1, 6),
			{
				Kind: syntax.KindGenericParamList,
				Children: []*syntax.Node{
					ident(syntax.KindGenericParam, "", "T", 1, 11),
				},
			},
			{
				Kind: syntax.KindWhereClause,
				Children: []*syntax.Node{
					{
						Kind: syntax.KindOther,
						Children: []*syntax.Node{
							typeRef("T", 1, 36),
							typeRef("Codable", 1, 39),
						},
					},
				},
			},
			{Kind: syntax.KindCodeBlock, Line: 1, Col: 48},
		},
	})

	occurrences, _ := NewExtractor().Extract(tree, "test.swift")

	if _, ok := findOccurrence(occurrences, "Codable", OccUsage); !ok {
		t.Error("where-clause constraint must be recorded as a usage")
	}
	if _, found := findOccurrence(occurrences, "T", OccUsage); found {
		t.Error("constrained generic parameter must stay excluded")
	}
}

func TestImportQualifiedMemberAccess(t *testing.T) {
	tree := sourceFile(
		ident(syntax.KindImportDecl, "", "Lib", 1, 1),
		&syntax.Node{
			Kind: syntax.KindVarDecl,
			Line: 2, Col: 1,
			Children: []*syntax.Node{
				ident(syntax.KindIdentifierExpr, "name", "w", 2, 5),
				withField("value", &syntax.Node{
					Kind: syntax.KindMemberAccessExpr,
					Line: 2, Col: 9,
					Children: []*syntax.Node{
						ident(syntax.KindIdentifierExpr, "base", "Lib", 2, 9),
						ident(syntax.KindIdentifierExpr, "member", "Widget", 2, 13),
					},
				}),
			},
		},
	)

	occurrences, imports := NewExtractor().Extract(tree, "test.swift")

	if !imports["Lib"] {
		t.Fatalf("expected import Lib, got %v", imports)
	}

	usage, ok := findOccurrence(occurrences, "Widget", OccUsage)
	if !ok {
		t.Fatal("Widget usage not found")
	}
	if usage.FullName != "Lib.Widget" {
		t.Errorf("expected FullName Lib.Widget, got %s", usage.FullName)
	}
	if !usage.ImportQualified {
		t.Error("usage must be marked import-qualified")
	}
	if _, found := findOccurrence(occurrences, "Lib", OccUsage); found {
		t.Error("import base must not be its own usage")
	}
}

func TestLocalBindingShadowsLaterReference(t *testing.T) {
	tree := sourceFile(&syntax.Node{
		Kind: syntax.KindCodeBlock,
		Children: []*syntax.Node{
			&syntax.Node{
				Kind: syntax.KindVarDecl,
				Children: []*syntax.Node{
					ident(syntax.KindIdentifierExpr, "name", "Widget", 1, 5),
				},
			},
			ident(syntax.KindIdentifierExpr, "", "Widget", 2, 1),
		},
	})

	occurrences, _ := NewExtractor().Extract(tree, "test.swift")
	if _, found := findOccurrence(occurrences, "Widget", OccUsage); found {
		t.Error("shadowed local binding must not be recorded as a usage")
	}
}

func TestLowerCaseIdentifiersNotTypeUsages(t *testing.T) {
	tree := sourceFile(
		&syntax.Node{
			Kind: syntax.KindCallExpr,
			Children: []*syntax.Node{
				ident(syntax.KindIdentifierExpr, "callee", "doWork", 1, 1),
			},
		},
	)

	occurrences, _ := NewExtractor().Extract(tree, "test.swift")
	if len(occurrences) != 0 {
		t.Errorf("expected no occurrences, got %v", occurrences.Values())
	}
}

func TestAttributeUsage(t *testing.T) {
	tree := sourceFile(ident(syntax.KindAttribute, "", "@MainActor", 1, 1))

	occurrences, _ := NewExtractor().Extract(tree, "test.swift")
	usage, ok := findOccurrence(occurrences, "MainActor", OccUsage)
	if !ok {
		t.Fatal("MainActor attribute usage not found")
	}
	if usage.Line != 1 || usage.Col != 1 {
		t.Errorf("expected attribute position 1:1, got %d:%d", usage.Line, usage.Col)
	}
}

func TestProtocolAssociatedType(t *testing.T) {
	tree := sourceFile(&syntax.Node{
		Kind: syntax.KindProtocolDecl,
		Children: []*syntax.Node{
			ident(syntax.KindIdentifierExpr, "name", "Repository", 1, 10),
			&syntax.Node{
				Kind: syntax.KindAssociatedTypeDecl,
				Line: 2, Col: 5,
				Children: []*syntax.Node{
					ident(syntax.KindIdentifierExpr, "name", "Entity", 2, 20),
					{
						Kind: syntax.KindInheritanceClause,
						Children: []*syntax.Node{
							typeRef("Codable", 2, 28),
						},
					},
				},
			},
		},
	})

	occurrences, _ := NewExtractor().Extract(tree, "test.swift")

	def, ok := findOccurrence(occurrences, "Entity", OccDefinition)
	if !ok {
		t.Fatal("associated type definition not found")
	}
	if def.DefKind != DefAssociatedType {
		t.Errorf("expected associatedtype kind, got %s", def.DefKind)
	}
	if len(def.Scope) != 1 || def.Scope[0] != "Repository" {
		t.Errorf("expected scope [Repository], got %v", def.Scope)
	}
	if _, ok := findOccurrence(occurrences, "Codable", OccUsage); !ok {
		t.Error("constraint Codable must be a usage")
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	tree := sourceFile(
		ident(syntax.KindImportDecl, "", "LibA", 1, 1),
		&syntax.Node{
			Kind: syntax.KindStructDecl,
			Children: []*syntax.Node{
				ident(syntax.KindIdentifierExpr, "name", "Box", 2, 8),
				&syntax.Node{
					Kind: syntax.KindVarDecl,
					Children: []*syntax.Node{
						ident(syntax.KindIdentifierExpr, "name", "payload", 3, 9),
						withField("type", typeRef("Payload", 3, 18)),
					},
				},
			},
		},
	)

	e := NewExtractor()
	first, firstImports := e.Extract(tree, "test.swift")
	second, secondImports := e.Extract(tree, "test.swift")

	if len(first) != len(second) {
		t.Fatalf("occurrence counts differ: %d vs %d", len(first), len(second))
	}
	for key := range first {
		if _, ok := second[key]; !ok {
			t.Errorf("occurrence %q missing from second run", key)
		}
	}
	if len(firstImports) != len(secondImports) {
		t.Errorf("import counts differ: %d vs %d", len(firstImports), len(secondImports))
	}
}

func TestDefinitionsOnlyMode(t *testing.T) {
	tree := sourceFile(&syntax.Node{
		Kind: syntax.KindStructDecl,
		Children: []*syntax.Node{
			ident(syntax.KindIdentifierExpr, "name", "Box", 1, 8),
			&syntax.Node{
				Kind: syntax.KindVarDecl,
				Children: []*syntax.Node{
					ident(syntax.KindIdentifierExpr, "name", "payload", 2, 9),
					withField("type", typeRef("Payload", 2, 18)),
				},
			},
		},
	})

	e := &Extractor{DefinitionsOnly: true}
	occurrences, _ := e.Extract(tree, "Lib.swiftinterface")

	if _, ok := findOccurrence(occurrences, "Box", OccDefinition); !ok {
		t.Error("definition must still be recorded in definitions-only mode")
	}
	if _, found := findOccurrence(occurrences, "Payload", OccUsage); found {
		t.Error("usages must be skipped in definitions-only mode")
	}
}

func TestCompoundTypeUnwrapping(t *testing.T) {
	// let handler: [Key: (Request) -> Response?]
	tree := sourceFile(&syntax.Node{
		Kind: syntax.KindVarDecl,
		Children: []*syntax.Node{
			ident(syntax.KindIdentifierExpr, "name", "handler", 1, 5),
			withField("type", &syntax.Node{
				Kind: syntax.KindDictionaryType,
				Children: []*syntax.Node{
					typeRef("Key", 1, 15),
					{
						Kind: syntax.KindFunctionType,
						Children: []*syntax.Node{
							typeRef("Request", 1, 21),
							{
								Kind: syntax.KindOptionalType,
								Children: []*syntax.Node{
									typeRef("Response", 1, 33),
								},
							},
						},
					},
				},
			}),
		},
	})

	occurrences, _ := NewExtractor().Extract(tree, "test.swift")
	for _, want := range []string{"Key", "Request", "Response"} {
		if _, ok := findOccurrence(occurrences, want, OccUsage); !ok {
			t.Errorf("%s usage not found", want)
		}
	}
}
