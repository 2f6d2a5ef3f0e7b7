//go:build windows

package syntax

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// LoadGrammar returns an error on Windows as dynamic grammar loading is not yet supported.
func LoadGrammar(path, langName string) (*sitter.Language, error) {
	return nil, fmt.Errorf("dynamic grammar loading is currently not supported on Windows")
}
