//go:build !windows

package syntax

/*
#include <dlfcn.h>
#include <stdlib.h>

static void* grammar_open(const char* path) {
    return dlopen(path, RTLD_NOW | RTLD_LOCAL);
}

static void* grammar_lookup(void* handle, const char* symbol) {
    return dlsym(handle, symbol);
}

static const char* grammar_error(void) {
    const char* msg = dlerror();
    return msg ? msg : "unknown dlopen error";
}
*/
import "C"
import (
	"fmt"
	"unsafe"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// LoadGrammar loads a tree-sitter language from a shared object. The symbol
// looked up is "tree_sitter_<langName>", the convention grammar builds
// export. The handle is never closed; the language lives as long as the
// process.
func LoadGrammar(path, langName string) (*sitter.Language, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	handle := C.grammar_open(cPath)
	if handle == nil {
		return nil, fmt.Errorf("open grammar %s: %s", path, C.GoString(C.grammar_error()))
	}

	symbol := "tree_sitter_" + langName
	cSymbol := C.CString(symbol)
	defer C.free(unsafe.Pointer(cSymbol))

	ptr := C.grammar_lookup(handle, cSymbol)
	if ptr == nil {
		return nil, fmt.Errorf("lookup %s in %s: %s", symbol, path, C.GoString(C.grammar_error()))
	}
	return sitter.NewLanguage(ptr), nil
}
