package manifest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"
	"strings"

	"golang.org/x/mod/modfile"
)

// Filename is the manifest file name
const Filename = "go.mod"

// ErrManifestNotFound is returned when a requested manifest does not exist
var ErrManifestNotFound = errors.New("manifest not found")

// Source is the read side of the workspace tree
type Source interface {
	Read(ctx context.Context, relPath string) ([]byte, error)
	Exists(ctx context.Context, relPath string) bool
}

var (
	moduleExpr     = regexp.MustCompile(`module\s+([^\s]+)`)
	moduleLineExpr = regexp.MustCompile(`^\s*module\s+("[^"]+"|\S+)`)
	goLineExpr     = regexp.MustCompile(`^\s*go\s+(\S+)`)
	blockStartExpr = regexp.MustCompile(`^\s*(\w+)\s*\(\s*(//.*)?$`)
	blockEndExpr   = regexp.MustCompile(`^\s*\)`)
	requireExpr    = regexp.MustCompile(`^\s*require\s+(.+)$`)
	replaceExpr    = regexp.MustCompile(`^\s*replace\s+(.+)$`)
	useExpr        = regexp.MustCompile(`^\s*use\s+(.+)$`)
	entryExpr      = regexp.MustCompile(`^\s*("[^"]+"|[^\s"]+)\s+("v[^"]*"|v\S*)`)
)

// Load reads and parses the manifest in the project root
func Load(ctx context.Context, source Source, projectRoot string) (*Manifest, []byte, error) {
	location := path.Join(projectRoot, Filename)
	if !source.Exists(ctx, location) {
		return nil, nil, fmt.Errorf("%w: %s", ErrManifestNotFound, location)
	}
	content, err := source.Read(ctx, location)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrManifestNotFound, location, err)
	}
	return Parse(content), content, nil
}

// ModulePath returns the declared module path, or empty string when none is found
func ModulePath(content []byte) string {
	if modulePath := modfile.ModulePath(content); modulePath != "" {
		return modulePath
	}
	matches := moduleExpr.FindSubmatch(content)
	if len(matches) < 2 {
		return ""
	}
	return unquote(string(matches[1]))
}

// Parse extracts module identity, requirements and replacements. Unrecognised lines are skipped.
func Parse(content []byte) *Manifest {
	ret := &Manifest{}
	block := ""
	for i, line := range Lines(string(content)) {
		text := stripComment(line)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if block != "" {
			if blockEndExpr.MatchString(text) {
				block = ""
				continue
			}
			switch block {
			case "require":
				ret.addRequirement(line, text, i)
			case "replace":
				ret.addReplacement(text, i)
			}
			continue
		}
		if matches := blockStartExpr.FindStringSubmatch(text); matches != nil {
			block = matches[1]
			continue
		}
		if matches := moduleLineExpr.FindStringSubmatch(text); matches != nil && ret.Module == "" {
			ret.Module = unquote(matches[1])
			continue
		}
		if matches := goLineExpr.FindStringSubmatch(text); matches != nil {
			ret.Go = matches[1]
			continue
		}
		if matches := requireExpr.FindStringSubmatch(text); matches != nil {
			ret.addRequirement(line, matches[1], i)
			continue
		}
		if matches := replaceExpr.FindStringSubmatch(text); matches != nil {
			ret.addReplacement(matches[1], i)
		}
	}
	return ret
}

func (m *Manifest) addRequirement(line, spec string, index int) {
	matches := entryExpr.FindStringSubmatch(spec)
	if matches == nil {
		return
	}
	collection := Direct
	if isIndirect(line) {
		collection = Indirect
	}
	m.Requires = append(m.Requires, &Requirement{
		Path:       unquote(matches[1]),
		Version:    unquote(matches[2]),
		Collection: collection,
		Line:       index,
	})
}

func (m *Manifest) addReplacement(spec string, index int) {
	left, right, ok := strings.Cut(spec, "=>")
	if !ok {
		return
	}
	oldFields := strings.Fields(left)
	newFields := strings.Fields(right)
	if len(oldFields) == 0 || len(oldFields) > 2 || len(newFields) == 0 || len(newFields) > 2 {
		return
	}
	rep := &Replacement{Old: unquote(oldFields[0]), New: unquote(newFields[0]), Line: index}
	if len(oldFields) == 2 {
		rep.OldVersion = unquote(oldFields[1])
	}
	if len(newFields) == 2 {
		rep.NewVersion = unquote(newFields[1])
	}
	m.Replaces = append(m.Replaces, rep)
}

// ParseWork returns the module directories listed by use directives of a go.work file
func ParseWork(content []byte) []string {
	var dirs []string
	inUse := false
	for _, line := range Lines(string(content)) {
		text := strings.TrimSpace(stripComment(line))
		if text == "" {
			continue
		}
		if inUse {
			if blockEndExpr.MatchString(text) {
				inUse = false
				continue
			}
			dirs = append(dirs, unquote(strings.Fields(text)[0]))
			continue
		}
		if matches := blockStartExpr.FindStringSubmatch(text); matches != nil {
			inUse = matches[1] == "use"
			continue
		}
		if matches := useExpr.FindStringSubmatch(text); matches != nil {
			dirs = append(dirs, unquote(strings.Fields(matches[1])[0]))
		}
	}
	return dirs
}

// Lines splits text on "\n"; a trailing "\r" stays with its line so joins are lossless
func Lines(text string) []string {
	return strings.Split(text, "\n")
}

func isIndirect(line string) bool {
	_, comment, ok := strings.Cut(line, "//")
	return ok && strings.HasPrefix(strings.TrimSpace(comment), "indirect")
}

func stripComment(line string) string {
	if index := commentIndex(line); index >= 0 {
		return line[:index]
	}
	return line
}

// commentIndex returns the position of a "//" outside quotes
func commentIndex(line string) int {
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			inQuote = !inQuote
		case '/':
			if !inQuote && i+1 < len(line) && line[i+1] == '/' {
				return i
			}
		}
	}
	return -1
}

func unquote(value string) string {
	if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
		return value[1 : len(value)-1]
	}
	return value
}
