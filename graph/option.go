package graph

import (
	"path"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/viant/gonx/imports"
)

// Option customises the builder
type Option func(b *Builder)

// MatcherFn decides whether a workspace file takes part in import scanning
type MatcherFn func(relPath string) bool

// WithExtractor sets the import extractor, Scanner by default
func WithExtractor(extractor imports.Extractor) Option {
	return func(b *Builder) {
		b.extractor = extractor
	}
}

// WithMatcher sets the source file matcher, GolangFiles by default
func WithMatcher(matcher MatcherFn) Option {
	return func(b *Builder) {
		b.match = matcher
	}
}

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// GolangFiles matches Go sources, test files included since they contribute dependencies too
func GolangFiles(relPath string) bool {
	return path.Ext(relPath) == ".go"
}

// GolangSources matches Go sources without tests
func GolangSources(relPath string) bool {
	return GolangFiles(relPath) && !strings.HasSuffix(relPath, "_test.go")
}
