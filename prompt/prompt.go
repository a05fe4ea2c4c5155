// Package prompt builds a system prompt from a directory of text fragments.
// Each regular file under the root is one fragment; fragments are joined in
// lexical path order, so numbering files ("00-persona.md", "10-style.md")
// controls the layout. Hidden files and directories are ignored.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Sentinel errors for fragment loading.
var (
	ErrFragmentNotFound = errors.New("prompt fragment not found")
	ErrLoadFailed       = errors.New("prompt load failed")
)

// Fragment is one named piece of a system prompt. Name is the /-separated
// path relative to the source root.
type Fragment struct {
	Name string
	Text string
}

// Source lists and reads prompt fragments.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, names ...string) ([]Fragment, error)
}

type dirSource struct {
	root string
}

// NewDirSource creates a Source over the files under root. A missing root
// yields no fragments.
func NewDirSource(root string) Source {
	return &dirSource{root: root}
}

func (s *dirSource) List(ctx context.Context) ([]string, error) {
	var names []string

	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) && path == s.root {
				return fs.SkipAll
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if path != s.root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadFailed, err)
	}

	slices.Sort(names)
	return names, nil
}

func (s *dirSource) Load(_ context.Context, names ...string) ([]Fragment, error) {
	fragments := make([]Fragment, 0, len(names))

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(name)))
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: %s", ErrFragmentNotFound, name)
			}
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, name, err)
		}
		fragments = append(fragments, Fragment{Name: name, Text: string(data)})
	}

	return fragments, nil
}

// Compose loads every fragment from src and joins the non-blank ones with a
// blank line. Extra text, when non-empty, is appended as a final fragment.
func Compose(ctx context.Context, src Source, extra string) (string, error) {
	names, err := src.List(ctx)
	if err != nil {
		return "", err
	}

	fragments, err := src.Load(ctx, names...)
	if err != nil {
		return "", err
	}

	parts := make([]string, 0, len(fragments)+1)
	for _, f := range fragments {
		if text := strings.TrimSpace(f.Text); text != "" {
			parts = append(parts, text)
		}
	}
	if text := strings.TrimSpace(extra); text != "" {
		parts = append(parts, text)
	}

	return strings.Join(parts, "\n\n"), nil
}
