package extract

// FilterLocallyResolvable drops usages that are demonstrably satisfied by an
// in-file definition and returns the usages still needing resolution.
// A usage is locally satisfied when a definition of the same name sits in a
// scope whose chain is a prefix of the usage's chain. Import-qualified
// usages always survive: the cross-module intent is explicit.
func FilterLocallyResolvable(occurrences OccurrenceSet) []Occurrence {
	defsByName := make(map[string][][]string)
	for _, o := range occurrences {
		if o.Kind == OccDefinition {
			defsByName[o.Name] = append(defsByName[o.Name], o.Scope)
		}
	}

	var usages []Occurrence
	for _, o := range occurrences.Values() {
		if o.Kind != OccUsage {
			continue
		}
		if o.ImportQualified {
			usages = append(usages, o)
			continue
		}
		satisfied := false
		for _, defScope := range defsByName[o.Name] {
			if isScopePrefix(defScope, o.Scope) {
				satisfied = true
				break
			}
		}
		if !satisfied {
			usages = append(usages, o)
		}
	}
	return usages
}

func isScopePrefix(prefix, chain []string) bool {
	if len(prefix) > len(chain) {
		return false
	}
	for i := range prefix {
		if prefix[i] != chain[i] {
			return false
		}
	}
	return true
}
