package observability

import (
	"fmt"
	"log/slog"
	"sync"
)

var (
	observers = map[string]Observer{
		"noop": NoOpObserver{},
	}
	mutex sync.RWMutex
)

// GetObserver returns a registered observer by name. "noop" is always
// registered; "slog" resolves to the current slog.Default logger at call time.
func GetObserver(name string) (Observer, error) {
	mutex.RLock()
	defer mutex.RUnlock()

	if obs, exists := observers[name]; exists {
		return obs, nil
	}
	if name == "slog" {
		return NewSlogObserver(slog.Default()), nil
	}
	return nil, fmt.Errorf("unknown observer: %s", name)
}

// RegisterObserver adds or replaces a named observer.
func RegisterObserver(name string, observer Observer) {
	mutex.Lock()
	defer mutex.Unlock()

	observers[name] = observer
}
