package imports

import (
	"iter"
	"regexp"
	"strings"
)

var (
	singleImportExpr = regexp.MustCompile(`^\s*import\s+(?:[\w.]+\s+)?("[^"]*"|` + "`[^`]*`" + `)`)
	blockImportExpr  = regexp.MustCompile(`^\s*import\s*\(`)
	blockEndExpr     = regexp.MustCompile(`^\s*\)`)
	specExpr         = regexp.MustCompile(`(?:^|[;\s])(?:[\w.]+\s+)?("[^"]*"|` + "`[^`]*`" + `)`)
	declarationExpr  = regexp.MustCompile(`^\s*(func|type|var|const)\b`)
)

// Scanner is a line based extractor. It tolerates files that do not compile and stops at the first
// top level declaration since imports can only precede them.
type Scanner struct{}

// Imports returns a lazy sequence of external import paths
func (Scanner) Imports(src []byte) iter.Seq[string] {
	return func(yield func(string) bool) {
		inBlock := false
		inComment := false
		for _, line := range strings.Split(string(src), "\n") {
			line, inComment = stripComments(line, inComment)
			if strings.TrimSpace(line) == "" {
				continue
			}
			if inBlock {
				if blockEndExpr.MatchString(line) {
					inBlock = false
					continue
				}
				for _, matches := range specExpr.FindAllStringSubmatch(line, -1) {
					if !emit(matches[1], yield) {
						return
					}
				}
				continue
			}
			if blockImportExpr.MatchString(line) {
				inBlock = true
				rest := line[strings.Index(line, "(")+1:]
				if end := strings.Index(rest, ")"); end >= 0 {
					rest = rest[:end]
					inBlock = false
				}
				for _, matches := range specExpr.FindAllStringSubmatch(rest, -1) {
					if !emit(matches[1], yield) {
						return
					}
				}
				continue
			}
			if matches := singleImportExpr.FindStringSubmatch(line); matches != nil {
				if !emit(matches[1], yield) {
					return
				}
				continue
			}
			if declarationExpr.MatchString(line) {
				return
			}
		}
	}
}

func emit(literal string, yield func(string) bool) bool {
	importPath := strings.Trim(literal, "\"`")
	if !IsExternal(importPath) {
		return true
	}
	return yield(importPath)
}

// stripComments removes line and block comments outside string literals; inComment carries block comment state
func stripComments(line string, inComment bool) (string, bool) {
	var builder strings.Builder
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if inComment {
			if c == '*' && i+1 < len(line) && line[i+1] == '/' {
				inComment = false
				i++
			}
			continue
		}
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			builder.WriteByte(c)
			continue
		}
		switch {
		case c == '"' || c == '`':
			quote = c
		case c == '/' && i+1 < len(line) && line[i+1] == '/':
			return builder.String(), false
		case c == '/' && i+1 < len(line) && line[i+1] == '*':
			inComment = true
			i++
			continue
		}
		builder.WriteByte(c)
	}
	return builder.String(), inComment
}
