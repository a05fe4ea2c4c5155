package credential

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Env reads the key from a process environment variable, falling back to
// dotenv files. Missing files are skipped.
type Env struct {
	Name  string
	Files []string

	lookup func(string) (string, bool)
}

// NewEnv creates an Env resolver for the variable name.
func NewEnv(name string, files ...string) *Env {
	return &Env{Name: name, Files: files, lookup: os.LookupEnv}
}

func (e *Env) Resolve(_ context.Context) (string, error) {
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(e.Name); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v), nil
	}

	for _, file := range e.Files {
		values, err := godotenv.Read(file)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		if v := strings.TrimSpace(values[e.Name]); v != "" {
			return v, nil
		}
	}

	return "", fmt.Errorf("%w: %s not set", ErrNotFound, e.Name)
}
