package source

import (
	"fmt"
	"sort"
	"sync"
)

// Transports are external to this module and register themselves here, the
// way database/sql drivers do. The CLI and server run whatever is registered.

// Factory constructs a Source. Called once per run setup.
type Factory func() (Source, error)

var (
	factoriesMu sync.Mutex
	factories   = map[string]Factory{}
)

// channels the record schema accepts; a transport registered under any other
// name would have every row it produces rejected at insert time.
var validChannels = map[string]bool{"email": true, "message": true}

// Register makes a transport available under its channel name. Panics on an
// unknown or duplicate name, matching driver-registration convention.
func Register(name string, f Factory) {
	if !validChannels[name] {
		panic(fmt.Sprintf("source: unknown channel %q (want email or message)", name))
	}
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("source: Register called twice for %q", name))
	}
	factories[name] = f
}

// Open constructs the registered transport for a channel name.
func Open(name string) (Source, error) {
	factoriesMu.Lock()
	f, ok := factories[name]
	factoriesMu.Unlock()
	if !ok {
		return nil, fmt.Errorf("source: no transport registered for %q", name)
	}
	return f()
}

// Registered returns the registered channel names, sorted.
func Registered() []string {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
