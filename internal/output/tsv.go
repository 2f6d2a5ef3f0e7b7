package output

import (
	"fmt"
	"strings"

	"swiftsight/internal/analysis"
)

// TSVGenerator renders per-file analysis results as a tab-separated report.
type TSVGenerator struct{}

func NewTSVGenerator() *TSVGenerator {
	return &TSVGenerator{}
}

func (t *TSVGenerator) Generate(results []analysis.FileResult) (string, error) {
	var buf strings.Builder

	buf.WriteString("File\tSymbol\tQualified\tLine\tColumn\tScope\tOrigin\tModule\tKind\n")
	for _, result := range results {
		for _, res := range result.Resolutions {
			occ := res.Occurrence
			buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\n",
				result.Path,
				occ.Name,
				occ.FullName,
				occ.Line,
				occ.Col,
				strings.Join(occ.Scope, "."),
				res.Origin.Kind,
				res.Origin.Module,
				res.DefKind,
			))
		}
	}

	return buf.String(), nil
}
