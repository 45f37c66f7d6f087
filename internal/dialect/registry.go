package dialect

import (
	"fmt"
	"sort"
	"sync"

	"github.com/koustreak/dbsnap/internal/catalog"
	"github.com/koustreak/dbsnap/internal/database"
	"github.com/koustreak/dbsnap/internal/errs"
)

// Factory builds the dialect and catalog of one product over db.
type Factory func(db database.DB, opts Options) (Dialect, catalog.Catalog)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{}
)

// Register adds a product factory under name. Product packages call it
// from init.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := registry[name]
	if !ok {
		return nil, errs.New(errs.ErrKindInvalidInput, fmt.Sprintf("no dialect registered for %q", name))
	}
	return f, nil
}

// Names lists the registered products in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
