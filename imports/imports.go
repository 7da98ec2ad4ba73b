// Package imports extracts imported package paths from Go source files.
package imports

import (
	"iter"
	"strings"
)

// Extractor yields the externally addressable import paths of a source file.
// Implementations hold no state: iterating twice over the same input yields the same sequence.
type Extractor interface {
	Imports(src []byte) iter.Seq[string]
}

// IsExternal reports whether the import path looks like a module path: relative imports, cgo
// and standard library style paths with neither a dot nor a slash are rejected.
func IsExternal(importPath string) bool {
	if importPath == "" || importPath == "C" {
		return false
	}
	if strings.HasPrefix(importPath, ".") || strings.HasPrefix(importPath, "/") {
		return false
	}
	return strings.ContainsAny(importPath, "./")
}

// Collect drains a sequence into a slice
func Collect(seq iter.Seq[string]) []string {
	var ret []string
	for item := range seq {
		ret = append(ret, item)
	}
	return ret
}
