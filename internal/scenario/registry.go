// Package scenario provides named traffic scenarios for the simulate
// command. A scenario drives host-side traffic against a simulated
// controller while exercising the driver on the device side.
package scenario

import (
	"sort"
	"strings"
	"sync"
)

// Registration describes a named scenario.
type Registration interface {
	// Description is a one-line summary for listings.
	Description() string
	// Run drives the scenario to completion against env.
	Run(env *Env) error
}

var (
	registry   = make(map[string]Registration)
	registryMu sync.RWMutex
)

// Register adds a scenario under a case-insensitive name. Scenarios call
// it from their init functions.
func Register(name string, reg Registration) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(name)] = reg
}

// Get retrieves a scenario by name, nil when unknown. Lookup is
// case-insensitive.
func Get(name string) Registration {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return registry[strings.ToLower(name)]
}

// Names returns the registered scenario names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
