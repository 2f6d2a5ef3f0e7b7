package extract

// traversal carries the mutable walk state: the scope stack, per-frame
// generic-parameter exclusion sets and per-block local-binding shadows.
// It is created fresh for every Extract call, so extractor instances stay
// reusable and extraction stays a pure function of its input.
type traversal struct {
	occurrences OccurrenceSet
	imports     map[string]bool

	scope    []string
	generics []map[string]bool // one frame per declaration carrying generics
	locals   []map[string]bool // one frame per lexical block

	defsOnly bool
}

func newTraversal(defsOnly bool) *traversal {
	return &traversal{
		occurrences: NewOccurrenceSet(),
		imports:     make(map[string]bool),
		defsOnly:    defsOnly,
	}
}

func (t *traversal) pushScope(id string) {
	t.scope = append(t.scope, id)
}

func (t *traversal) popScope() {
	t.scope = t.scope[:len(t.scope)-1]
}

// scopeChain returns a copy; occurrences must not alias the live stack.
func (t *traversal) scopeChain() []string {
	if len(t.scope) == 0 {
		return nil
	}
	chain := make([]string, len(t.scope))
	copy(chain, t.scope)
	return chain
}

func (t *traversal) pushGenerics(names []string) {
	frame := make(map[string]bool, len(names))
	for _, n := range names {
		frame[n] = true
	}
	t.generics = append(t.generics, frame)
}

func (t *traversal) popGenerics() {
	t.generics = t.generics[:len(t.generics)-1]
}

func (t *traversal) isGenericParam(name string) bool {
	for i := len(t.generics) - 1; i >= 0; i-- {
		if t.generics[i][name] {
			return true
		}
	}
	return false
}

func (t *traversal) pushBlock() {
	t.locals = append(t.locals, make(map[string]bool))
}

func (t *traversal) popBlock() {
	t.locals = t.locals[:len(t.locals)-1]
}

func (t *traversal) addLocal(name string) {
	if name == "" || len(t.locals) == 0 {
		return
	}
	t.locals[len(t.locals)-1][name] = true
}

func (t *traversal) isLocal(name string) bool {
	for i := len(t.locals) - 1; i >= 0; i-- {
		if t.locals[i][name] {
			return true
		}
	}
	return false
}

// qualified builds the dotted path of name under the current scope chain.
func (t *traversal) qualified(name string) string {
	if len(t.scope) == 0 {
		return name
	}
	full := ""
	for _, s := range t.scope {
		full += s + "."
	}
	return full + name
}
