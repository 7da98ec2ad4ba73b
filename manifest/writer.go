package manifest

import (
	"regexp"
	"sort"
	"strings"

	"github.com/viant/gonx/metrics"
)

var (
	singleRequireExpr = regexp.MustCompile(`^(\s*require\s+)("[^"]+"|[^\s"]+)(\s+)("v[^"]*"|v\S*)`)
	blockRequireExpr  = regexp.MustCompile(`^(\s*)("[^"]+"|[^\s"]+)(\s+)("v[^"]*"|v\S*)`)
)

// Result describes a manifest rewrite
type Result struct {
	Text        string
	Substituted []string // module paths whose declaration was found and set to the new version
	Inserted    []string // module paths that received a new require entry
	Changed     bool
}

// UpdateVersions replaces the version token of every require declaration listed in updates
// (module path -> new version). Everything else on the line and in the file is kept as is.
// It returns the new text and the module paths that were found.
func UpdateVersions(text string, updates map[string]string) (string, []string) {
	if len(updates) == 0 {
		return text, nil
	}
	lines := Lines(text)
	found := map[string]bool{}
	block := ""
	for i, line := range lines {
		stripped := stripComment(line)
		if strings.TrimSpace(stripped) == "" {
			continue
		}
		if block != "" {
			if blockEndExpr.MatchString(stripped) {
				block = ""
				continue
			}
			if block == "require" {
				lines[i] = substitute(line, stripped, blockRequireExpr, updates, found)
			}
			continue
		}
		if matches := blockStartExpr.FindStringSubmatch(stripped); matches != nil {
			block = matches[1]
			continue
		}
		if singleRequireExpr.MatchString(stripped) {
			lines[i] = substitute(line, stripped, singleRequireExpr, updates, found)
		}
	}
	return strings.Join(lines, "\n"), sortedKeys(found)
}

func substitute(line, stripped string, expr *regexp.Regexp, updates map[string]string, found map[string]bool) string {
	loc := expr.FindStringSubmatchIndex(stripped)
	if loc == nil {
		return line
	}
	modulePath := unquote(stripped[loc[4]:loc[5]])
	version, ok := updates[modulePath]
	if !ok {
		return line
	}
	found[modulePath] = true
	current := stripped[loc[8]:loc[9]]
	if strings.HasPrefix(current, `"`) {
		version = `"` + version + `"`
	}
	if current == version {
		return line
	}
	return line[:loc[8]] + version + line[loc[9]:]
}

// InsertRequirements adds require entries: inside the first require block when present, otherwise
// as single line declarations right after the module line, otherwise at the end of the text.
func InsertRequirements(text string, requirements []*Requirement) string {
	if len(requirements) == 0 {
		return text
	}
	lines := Lines(text)
	if start, end := requireBlock(lines); start >= 0 && end > start {
		eol := lineEnding(lines[end])
		indent := blockIndent(lines[start+1 : end])
		var inserted []string
		for _, req := range requirements {
			inserted = append(inserted, indent+req.Path+" "+req.Version+eol)
		}
		return joinInserted(lines, end, inserted)
	}
	var declarations []string
	if index := moduleLine(lines); index >= 0 {
		eol := lineEnding(lines[index])
		for _, req := range requirements {
			declarations = append(declarations, "require "+req.Path+" "+req.Version+eol)
		}
		return joinInserted(lines, index+1, declarations)
	}
	for _, req := range requirements {
		declarations = append(declarations, "require "+req.Path+" "+req.Version)
	}
	if text != "" && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text + strings.Join(declarations, "\n") + "\n"
}

// Rewrite applies version updates and inserts entries for discovered workspace dependencies
// that have a pending update but no declaration yet.
func Rewrite(text string, updates map[string]string, discovered []string) *Result {
	updated, substituted := UpdateVersions(text, updates)
	parsed := Parse([]byte(updated))
	seen := map[string]bool{}
	var requirements []*Requirement
	for _, modulePath := range discovered {
		version, ok := updates[modulePath]
		if !ok || seen[modulePath] || modulePath == parsed.Module || parsed.Requirement(modulePath) != nil {
			continue
		}
		seen[modulePath] = true
		requirements = append(requirements, &Requirement{Path: modulePath, Version: version, Collection: Direct})
	}
	sort.Slice(requirements, func(i, j int) bool { return requirements[i].Path < requirements[j].Path })
	result := &Result{Text: InsertRequirements(updated, requirements), Substituted: substituted}
	for _, req := range requirements {
		result.Inserted = append(result.Inserted, req.Path)
	}
	result.Changed = Fingerprint([]byte(text)) != Fingerprint([]byte(result.Text))
	if result.Changed {
		metrics.ManifestRewrites.WithLabelValues("substituted").Add(float64(len(substituted)))
		metrics.ManifestRewrites.WithLabelValues("inserted").Add(float64(len(result.Inserted)))
	}
	return result
}

func requireBlock(lines []string) (int, int) {
	start := -1
	for i, line := range lines {
		stripped := stripComment(line)
		if start < 0 {
			if matches := blockStartExpr.FindStringSubmatch(stripped); matches != nil && matches[1] == "require" {
				start = i
			}
			continue
		}
		if blockEndExpr.MatchString(stripped) {
			return start, i
		}
	}
	return -1, -1
}

func moduleLine(lines []string) int {
	for i, line := range lines {
		if moduleLineExpr.MatchString(stripComment(line)) {
			return i
		}
	}
	return -1
}

func blockIndent(entries []string) string {
	for _, entry := range entries {
		if strings.TrimSpace(entry) == "" {
			continue
		}
		return entry[:len(entry)-len(strings.TrimLeft(entry, " \t"))]
	}
	return "\t"
}

func lineEnding(line string) string {
	if strings.HasSuffix(line, "\r") {
		return "\r"
	}
	return ""
}

func joinInserted(lines []string, at int, inserted []string) string {
	result := make([]string, 0, len(lines)+len(inserted))
	result = append(result, lines[:at]...)
	result = append(result, inserted...)
	result = append(result, lines[at:]...)
	return strings.Join(result, "\n")
}

func sortedKeys(values map[string]bool) []string {
	if len(values) == 0 {
		return nil
	}
	ret := make([]string, 0, len(values))
	for key := range values {
		ret = append(ret, key)
	}
	sort.Strings(ret)
	return ret
}
