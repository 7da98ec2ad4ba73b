package registry

import (
	"sort"
	"strings"
	"unicode"

	mm "github.com/Masterminds/semver/v3"
)

// Max returns the highest release version. Pre-releases and unparsable versions are only
// considered when the list holds no release; empty string for an empty list.
func Max(versions []string) string {
	if len(versions) == 0 {
		return ""
	}
	var releases []string
	for _, version := range versions {
		if IsRelease(version) {
			releases = append(releases, version)
		}
	}
	if len(releases) > 0 {
		versions = releases
	}
	sorted := Sort(versions)
	return sorted[len(sorted)-1]
}

// IsRelease reports whether the version is a semantic version without a pre-release part
func IsRelease(version string) bool {
	parsed, err := mm.NewVersion(version)
	return err == nil && parsed.Prerelease() == ""
}

// Sort orders versions ascending: semantic versions by precedence, anything unparsable sorts below
// them using a natural (digit aware) comparison.
func Sort(versions []string) []string {
	ret := make([]string, len(versions))
	copy(ret, versions)
	sort.SliceStable(ret, func(i, j int) bool {
		return Compare(ret[i], ret[j]) < 0
	})
	return ret
}

// Compare compares two version strings
func Compare(a, b string) int {
	va, errA := mm.NewVersion(a)
	vb, errB := mm.NewVersion(b)
	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	}
	return naturalCompare(a, b)
}

func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		chunkA, restA := chunk(a)
		chunkB, restB := chunk(b)
		if chunkA != chunkB {
			if isNumber(chunkA) && isNumber(chunkB) {
				numA := strings.TrimLeft(chunkA, "0")
				numB := strings.TrimLeft(chunkB, "0")
				if len(numA) != len(numB) {
					return sign(len(numA) - len(numB))
				}
				if numA != numB {
					return strings.Compare(numA, numB)
				}
			} else {
				return strings.Compare(chunkA, chunkB)
			}
		}
		a, b = restA, restB
	}
	return sign(len(a) - len(b))
}

// chunk splits off the leading run of digits or non digits
func chunk(value string) (string, string) {
	digit := unicode.IsDigit(rune(value[0]))
	i := 1
	for i < len(value) && unicode.IsDigit(rune(value[i])) == digit {
		i++
	}
	return value[:i], value[i:]
}

func isNumber(value string) bool {
	return value != "" && unicode.IsDigit(rune(value[0]))
}

func sign(value int) int {
	switch {
	case value < 0:
		return -1
	case value > 0:
		return 1
	}
	return 0
}
