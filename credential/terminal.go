package credential

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Terminal prompts for the key on an interactive terminal without echoing
// it. On a non-terminal input it resolves to ErrNotFound.
type Terminal struct {
	Prompt string
	In     *os.File
	Out    io.Writer
}

// NewTerminal creates a Terminal resolver reading from in and prompting on out.
func NewTerminal(in *os.File, out io.Writer) *Terminal {
	return &Terminal{Prompt: "API key: ", In: in, Out: out}
}

func (t *Terminal) Resolve(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fd := int(t.In.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("%w: %s is not a terminal", ErrNotFound, t.In.Name())
	}

	fmt.Fprint(t.Out, t.Prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(t.Out)
	if err != nil {
		return "", fmt.Errorf("read key: %w", err)
	}

	key := strings.TrimSpace(string(raw))
	if key == "" {
		return "", fmt.Errorf("%w: empty key entered", ErrNotFound)
	}
	return key, nil
}
