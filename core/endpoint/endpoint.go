// Package endpoint implements the model/provider pair that names a hosted
// inference target. The canonical form is the compound string
// "<model>@<provider>".
package endpoint

import (
	"errors"
	"fmt"
	"strings"
)

// Separator joins the model and provider halves of an endpoint string.
const Separator = "@"

// ErrMalformed is returned by Parse when a string is not of the form
// "<model>@<provider>".
var ErrMalformed = errors.New("malformed endpoint")

// IncompleteError reports an operation that needs both halves of the pair
// while one of them is unset.
type IncompleteError struct {
	Missing string // "model" or "provider"
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete endpoint: %s is not set", e.Missing)
}

// Selector is an immutable model/provider pair. The zero value selects
// nothing. Update methods return a new Selector and leave the receiver
// untouched.
type Selector struct {
	model    string
	provider string
}

// New builds a Selector from its parts. Either part may be empty; use
// Validate before issuing a generation request.
func New(model, provider string) Selector {
	return Selector{model: model, provider: provider}
}

// Parse splits a compound "<model>@<provider>" string. Only the structure is
// checked: both halves must be non-empty and the separator must appear
// exactly once. Whether the model or provider exists is left to the backend.
func Parse(s string) (Selector, error) {
	model, provider, ok := strings.Cut(s, Separator)
	if !ok || model == "" || provider == "" || strings.Contains(provider, Separator) {
		return Selector{}, fmt.Errorf("%w: %q (want <model>%s<provider>)", ErrMalformed, s, Separator)
	}
	return Selector{model: model, provider: provider}, nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) Selector {
	sel, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return sel
}

func (s Selector) Model() string    { return s.model }
func (s Selector) Provider() string { return s.provider }

// IsZero reports whether neither half is set.
func (s Selector) IsZero() bool {
	return s.model == "" && s.provider == ""
}

// IsComplete reports whether both halves are set.
func (s Selector) IsComplete() bool {
	return s.model != "" && s.provider != ""
}

// Validate returns an *IncompleteError naming the first missing half.
func (s Selector) Validate() error {
	if s.model == "" {
		return &IncompleteError{Missing: "model"}
	}
	if s.provider == "" {
		return &IncompleteError{Missing: "provider"}
	}
	return nil
}

// WithModel returns a copy of s targeting model on the current provider.
// Fails with *IncompleteError when no provider is set or model is empty; s
// is returned unchanged in that case.
func (s Selector) WithModel(model string) (Selector, error) {
	if s.provider == "" {
		return s, &IncompleteError{Missing: "provider"}
	}
	if model == "" {
		return s, &IncompleteError{Missing: "model"}
	}
	return Selector{model: model, provider: s.provider}, nil
}

// WithProvider returns a copy of s routing the current model to provider.
// Fails with *IncompleteError when no model is set or provider is empty.
func (s Selector) WithProvider(provider string) (Selector, error) {
	if s.model == "" {
		return s, &IncompleteError{Missing: "model"}
	}
	if provider == "" {
		return s, &IncompleteError{Missing: "provider"}
	}
	return Selector{model: s.model, provider: provider}, nil
}

// String returns the canonical compound form. An incomplete selector renders
// whichever half is set, with the separator kept on the side of the gap.
func (s Selector) String() string {
	switch {
	case s.IsZero():
		return ""
	case s.provider == "":
		return s.model + Separator
	default:
		return s.model + Separator + s.provider
	}
}
