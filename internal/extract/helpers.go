package extract

import (
	"strings"

	"swiftsight/internal/syntax"
	"swiftsight/internal/util"
)

type position struct {
	Line int
	Col  int
}

// declaredName returns the declaration's name token text.
func declaredName(n *syntax.Node) string {
	if name := n.Child("name"); name != nil {
		return name.Text
	}
	return ""
}

// namePosition prefers the name token's position over the declaration's.
func namePosition(n *syntax.Node) position {
	if name := n.Child("name"); name != nil {
		return position{Line: name.Line, Col: name.Col}
	}
	return position{Line: n.Line, Col: n.Col}
}

// genericNames collects the generic parameter names declared on n.
func genericNames(n *syntax.Node) []string {
	list := n.FirstOfKind(syntax.KindGenericParamList)
	if list == nil {
		return nil
	}
	var names []string
	for _, p := range list.Children {
		if p.Kind == syntax.KindGenericParam && p.Text != "" {
			names = append(names, p.Text)
		}
	}
	return names
}

// callableScopeID builds the disambiguating scope identifier for a callable:
// name, ordered parameter labels and return-type text. Two overloads of the
// same bare name must never collide in a scope chain.
func callableScopeID(n *syntax.Node, isInit bool) string {
	name := "init"
	if !isInit {
		name = declaredName(n)
	}

	var labels strings.Builder
	for _, c := range n.Children {
		if c.Kind != syntax.KindParam {
			continue
		}
		label := c.Text
		if label == "" {
			// Single-identifier parameters label themselves by their
			// internal name; only an explicit "_" is truly label-less.
			label = paramInternalName(c)
		}
		if label == "" {
			label = "_"
		}
		labels.WriteString(label)
		labels.WriteString(":")
	}

	ret := "Void"
	if r := n.Child("return_type"); r != nil {
		ret = typeText(r)
	}

	return name + "(" + labels.String() + ")->" + ret
}

// paramInternalName returns the name a parameter is bound to inside the
// body.
func paramInternalName(p *syntax.Node) string {
	if name := p.Child("name"); name != nil {
		return name.Text
	}
	return p.Text
}

func bodyNode(n *syntax.Node) *syntax.Node {
	if body := n.Child("body"); body != nil {
		return body
	}
	return n.FirstOfKind(syntax.KindCodeBlock)
}

// leftmostName finds the leftmost identifier of a dotted type reference.
func leftmostName(n *syntax.Node) string {
	for n != nil {
		switch n.Kind {
		case syntax.KindTypeIdentifier, syntax.KindIdentifierExpr:
			return n.Text
		case syntax.KindMemberType, syntax.KindMemberAccessExpr:
			n = n.Child("base")
		default:
			return ""
		}
	}
	return ""
}

// dottedText renders a dotted type reference back to "A.B.C" form.
func dottedText(n *syntax.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case syntax.KindTypeIdentifier, syntax.KindIdentifierExpr:
		return n.Text
	case syntax.KindMemberType, syntax.KindMemberAccessExpr:
		base := dottedText(n.Child("base"))
		member := ""
		if m := n.Child("member"); m != nil {
			member = m.Text
		}
		if base == "" {
			return member
		}
		return base + "." + member
	}
	return ""
}

// typeText renders a type node to normalized source text, used in callable
// scope identifiers.
func typeText(n *syntax.Node) string {
	if n == nil {
		return ""
	}
	switch n.Kind {
	case syntax.KindTypeIdentifier:
		text := n.Text
		if args := n.FirstOfKind(syntax.KindGenericArgList); args != nil {
			text += typeText(args)
		}
		return text
	case syntax.KindMemberType:
		return dottedText(n)
	case syntax.KindOptionalType:
		return childTypeText(n) + "?"
	case syntax.KindArrayType:
		return "[" + childTypeText(n) + "]"
	case syntax.KindDictionaryType:
		parts := childTypeTexts(n)
		if len(parts) == 2 {
			return "[" + parts[0] + ":" + parts[1] + "]"
		}
		return "[" + strings.Join(parts, ":") + "]"
	case syntax.KindTupleType:
		return "(" + strings.Join(childTypeTexts(n), ",") + ")"
	case syntax.KindFunctionType:
		parts := childTypeTexts(n)
		if len(parts) == 0 {
			return "()->Void"
		}
		ret := parts[len(parts)-1]
		return "(" + strings.Join(parts[:len(parts)-1], ",") + ")->" + ret
	case syntax.KindCompositionType:
		return strings.Join(childTypeTexts(n), "&")
	case syntax.KindOpaqueType:
		return "some " + childTypeText(n)
	case syntax.KindExistentialType:
		return "any " + childTypeText(n)
	case syntax.KindGenericArgList:
		return "<" + strings.Join(childTypeTexts(n), ",") + ">"
	}
	return util.NormalizeTypeText(n.Text)
}

func childTypeText(n *syntax.Node) string {
	for _, c := range n.Children {
		if text := typeText(c); text != "" {
			return text
		}
	}
	return ""
}

func childTypeTexts(n *syntax.Node) []string {
	var out []string
	for _, c := range n.Children {
		if text := typeText(c); text != "" {
			out = append(out, text)
		}
	}
	return out
}
