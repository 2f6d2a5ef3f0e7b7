package output

import (
	"strings"
	"testing"

	"swiftsight/internal/analysis"
	"swiftsight/internal/extract"
	"swiftsight/internal/resolve"
)

func TestGenerate(t *testing.T) {
	results := []analysis.FileResult{
		{
			Path: "Sources/App/main.swift",
			Resolutions: []resolve.Resolution{
				{
					Occurrence: extract.Occurrence{
						Name:     "Widget",
						FullName: "LibA.Widget",
						Line:     3,
						Col:      8,
						Scope:    []string{"Outer", "run()->Void"},
					},
					Origin:  resolve.Origin{Kind: resolve.OriginExternal, Module: "LibA"},
					DefKind: extract.DefStruct,
				},
				{
					Occurrence: extract.Occurrence{Name: "Ghost", Line: 9, Col: 1},
					Origin:     resolve.Origin{Kind: resolve.OriginUnknown},
				},
			},
		},
	}

	report, err := NewTSVGenerator().Generate(results)
	if err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimRight(report, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "File\tSymbol\t") {
		t.Errorf("unexpected header: %q", lines[0])
	}

	first := strings.Split(lines[1], "\t")
	if first[1] != "Widget" || first[2] != "LibA.Widget" || first[5] != "Outer.run()->Void" {
		t.Errorf("unexpected first row: %v", first)
	}
	if first[6] != "external" || first[7] != "LibA" || first[8] != "struct" {
		t.Errorf("unexpected resolution columns: %v", first)
	}

	second := strings.Split(lines[2], "\t")
	if second[6] != "unknown" || second[7] != "" {
		t.Errorf("unexpected unknown row: %v", second)
	}
}

func TestGenerateEmpty(t *testing.T) {
	report, err := NewTSVGenerator().Generate(nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(report, "\n") || !strings.HasPrefix(report, "File\t") {
		t.Errorf("empty input must still produce the header, got %q", report)
	}
}
