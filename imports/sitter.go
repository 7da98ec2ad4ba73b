package imports

import (
	"context"
	"iter"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

// Sitter extracts imports from a tree-sitter syntax tree; the parser recovers from syntax errors
// so broken files still report their well formed import specs.
type Sitter struct{}

// Imports returns a lazy sequence of external import paths
func (Sitter) Imports(src []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		parser := sitter.NewParser()
		parser.SetLanguage(golang.GetLanguage())
		tree, err := parser.ParseCtx(context.Background(), nil, src)
		if err != nil || tree == nil {
			return
		}
		root := tree.RootNode()
		for i := 0; i < int(root.ChildCount()); i++ {
			child := root.Child(i)
			if child == nil || child.Type() != "import_declaration" {
				continue
			}
			if !walkImportSpecs(child, src, yield) {
				return
			}
		}
	}
}

// walkImportSpecs visits import_spec nodes of a declaration, including grouped import_spec_list ones
func walkImportSpecs(node *sitter.Node, src []byte, yield func(string) bool) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import_spec":
			pathNode := child.ChildByFieldName("path")
			if pathNode == nil {
				continue
			}
			importPath := strings.Trim(pathNode.Content(src), "\"`")
			if !IsExternal(importPath) {
				continue
			}
			if !yield(importPath) {
				return false
			}
		case "import_spec_list":
			if !walkImportSpecs(child, src, yield) {
				return false
			}
		}
	}
	return true
}
