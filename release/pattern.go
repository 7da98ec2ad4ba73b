package release

import (
	"regexp"
	"strings"
)

const (
	// ProjectNamePlaceholder is replaced by the project name
	ProjectNamePlaceholder = "{projectName}"
	// VersionPlaceholder is replaced by the version
	VersionPlaceholder = "{version}"
)

var semverExpr = regexp.MustCompile(`\d+\.\d+\.\d+(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?`)

// MatchGlob turns a tag pattern into a tag glob for the project
func MatchGlob(pattern, project string) string {
	ret := strings.ReplaceAll(pattern, ProjectNamePlaceholder, project)
	return strings.ReplaceAll(ret, VersionPlaceholder, "*")
}

// FormatTag renders the tag for a project version
func FormatTag(pattern, project, version string) string {
	ret := strings.ReplaceAll(pattern, ProjectNamePlaceholder, project)
	return strings.ReplaceAll(ret, VersionPlaceholder, version)
}

// ExtractVersion recovers the version from a tag created with the pattern. Unknown shapes fall back to
// the first semantic version found in the tag, and to the tag itself when there is none.
func ExtractVersion(pattern, tag string) string {
	switch {
	case !strings.Contains(pattern, ProjectNamePlaceholder) && strings.HasSuffix(pattern, VersionPlaceholder):
		prefix := strings.TrimSuffix(pattern, VersionPlaceholder)
		if !strings.Contains(prefix, "{") && strings.HasPrefix(tag, prefix) && len(tag) > len(prefix) {
			return tag[len(prefix):]
		}
	case pattern == ProjectNamePlaceholder+"@"+VersionPlaceholder:
		if index := strings.LastIndex(tag, "@"); index >= 0 && index < len(tag)-1 {
			return tag[index+1:]
		}
	case pattern == ProjectNamePlaceholder+"@v"+VersionPlaceholder:
		if index := strings.LastIndex(tag, "@"); index >= 0 && index < len(tag)-1 {
			return strings.TrimPrefix(tag[index+1:], "v")
		}
	}
	if found := semverExpr.FindString(tag); found != "" {
		return found
	}
	return tag
}
