package workspace

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"
)

// WalkFunc is called for every entry below the walked location. The path is workspace relative
// and slash separated. Returning false for a directory skips its content.
type WalkFunc func(relPath string, isDir bool) (bool, error)

// Tree is a read/write view over the workspace files, addressed by workspace relative paths
type Tree interface {
	// Root returns the location the tree is anchored at
	Root() string
	Read(ctx context.Context, relPath string) ([]byte, error)
	Write(ctx context.Context, relPath string, data []byte) error
	Exists(ctx context.Context, relPath string) bool
	Walk(ctx context.Context, relPath string, fn WalkFunc) error
}

type afsTree struct {
	root string
	fs   afs.Service
}

// NewTree creates an afs backed tree rooted at the supplied location (local path or afs URL)
func NewTree(root string) Tree {
	ret := &afsTree{root: strings.TrimRight(root, "/"), fs: afs.New()}
	if ret.root == "" {
		ret.root = "/"
	}
	return ret
}

func (t *afsTree) Root() string {
	return t.root
}

func (t *afsTree) location(relPath string) string {
	relPath = Clean(relPath)
	if relPath == "." {
		return t.root
	}
	return url.Join(t.root, relPath)
}

func (t *afsTree) Read(ctx context.Context, relPath string) ([]byte, error) {
	data, err := t.fs.DownloadWithURL(ctx, t.location(relPath))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", relPath, err)
	}
	return data, nil
}

func (t *afsTree) Write(ctx context.Context, relPath string, data []byte) error {
	if err := t.fs.Upload(ctx, t.location(relPath), os.FileMode(0644), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	return nil
}

func (t *afsTree) Exists(ctx context.Context, relPath string) bool {
	ok, err := t.fs.Exists(ctx, t.location(relPath))
	return err == nil && ok
}

func (t *afsTree) Walk(ctx context.Context, relPath string, fn WalkFunc) error {
	base := Clean(relPath)
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if closer, ok := reader.(io.Closer); ok && closer != nil {
			_ = closer.Close()
		}
		entry := Clean(path.Join(base, parent, info.Name()))
		return fn(entry, info.IsDir())
	}
	if err := t.fs.Walk(ctx, t.location(base), visitor); err != nil {
		return fmt.Errorf("failed to walk %s: %w", relPath, err)
	}
	return nil
}

// Clean normalises a workspace relative path: slash separated, no leading "./" or "/", "." for the root
func Clean(relPath string) string {
	relPath = strings.ReplaceAll(relPath, "\\", "/")
	relPath = strings.TrimLeft(relPath, "/")
	if relPath == "" {
		return "."
	}
	return path.Clean(relPath)
}
