package syntax

import "testing"

func TestMemberChain(t *testing.T) {
	dotted := &Node{
		Kind:  KindTypeIdentifier,
		Field: "type",
		Text:  "Lib.Widget",
		Line:  1, Col: 10,
		Children: []*Node{
			{Kind: KindTypeIdentifier, Text: "Lib", Line: 1, Col: 10},
			{Kind: KindTypeIdentifier, Text: "Widget", Line: 1, Col: 14},
			{Kind: KindGenericArgList, Children: []*Node{
				{Kind: KindTypeIdentifier, Text: "Int", Line: 1, Col: 21},
			}},
		},
	}

	chain := memberChain(dotted)
	if chain == nil {
		t.Fatal("dotted type must rebuild into a member chain")
	}
	if chain.Kind != KindMemberType || chain.Field != "type" {
		t.Errorf("unexpected chain root: kind=%d field=%q", chain.Kind, chain.Field)
	}

	base := chain.Child("base")
	member := chain.Child("member")
	if base == nil || base.Text != "Lib" {
		t.Errorf("unexpected base: %+v", base)
	}
	if member == nil || member.Text != "Widget" {
		t.Errorf("unexpected member: %+v", member)
	}
	if member.FirstOfKind(KindGenericArgList) == nil {
		t.Error("generic arguments must move onto the rightmost member")
	}
}

func TestMemberChainSimpleTypeUntouched(t *testing.T) {
	simple := &Node{
		Kind: KindTypeIdentifier,
		Text: "Widget",
		Children: []*Node{
			{Kind: KindTypeIdentifier, Text: "Widget"},
		},
	}
	if memberChain(simple) != nil {
		t.Error("single-identifier type must not become a member chain")
	}
}

func TestNodeHelpers(t *testing.T) {
	n := &Node{
		Kind: KindFuncDecl,
		Children: []*Node{
			{Kind: KindIdentifierExpr, Field: "name", Text: "run"},
			{Kind: KindParam, Text: "with"},
			{Kind: KindParam, Text: "from"},
			{Kind: KindCodeBlock},
		},
	}

	if got := n.Child("name"); got == nil || got.Text != "run" {
		t.Errorf("Child(name) = %+v", got)
	}
	if got := n.Child("absent"); got != nil {
		t.Errorf("Child(absent) = %+v", got)
	}
	if got := n.FirstOfKind(KindCodeBlock); got == nil {
		t.Error("FirstOfKind(KindCodeBlock) = nil")
	}

	params := 0
	for _, c := range n.Children {
		if c.Kind == KindParam {
			params++
		}
	}
	if params != 2 {
		t.Errorf("expected 2 params, got %d", params)
	}
}
