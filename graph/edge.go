// Package graph builds the workspace project dependency edges from source imports.
package graph

// DependencyType classifies an edge
type DependencyType string

// Static edges come from import statements
const Static DependencyType = "static"

// Edge states that Source depends on Target because SourceFile imports a package of Target
type Edge struct {
	Type       DependencyType `json:"type" yaml:"type"`
	Source     string         `json:"source" yaml:"source"`
	Target     string         `json:"target" yaml:"target"`
	SourceFile string         `json:"sourceFile" yaml:"sourceFile"`
}

// FileMap lists workspace relative source files per project name
type FileMap map[string][]string

// Targets returns the distinct targets of edges originating from the source project
func Targets(edges []*Edge, source string) []string {
	seen := map[string]bool{}
	var ret []string
	for _, edge := range edges {
		if edge.Source != source || seen[edge.Target] {
			continue
		}
		seen[edge.Target] = true
		ret = append(ret, edge.Target)
	}
	return ret
}
