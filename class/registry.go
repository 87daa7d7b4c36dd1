package class

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/gdbind/errors"
)

// ClassID is an interned class name.
type ClassID uint32

// Registry maps class names to descriptors and answers hierarchy queries.
//
// Registry is guarded by a mutex so that registration from init functions
// and lookups from tests never race, but the handle layer above it assumes
// the engine's single main thread.
type Registry struct {
	classes  map[string]*Descriptor
	children map[string][]string
	ids      map[string]ClassID
	names    []string
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes:  make(map[string]*Descriptor),
		children: make(map[string][]string),
		ids:      make(map[string]ClassID),
		names:    []string{""},
	}
}

var (
	defaultRegistry   *Registry
	defaultRegistryMu sync.Mutex
)

// Default returns the process-wide registry.
func Default() *Registry {
	defaultRegistryMu.Lock()
	defer defaultRegistryMu.Unlock()
	if defaultRegistry == nil {
		defaultRegistry = NewRegistry()
	}
	return defaultRegistry
}

// ResetDefault discards the process-wide registry. Mainly for tests.
func ResetDefault() {
	defaultRegistryMu.Lock()
	defer defaultRegistryMu.Unlock()
	defaultRegistry = nil
}

// Register adds a descriptor. Host classes without a memory category get
// the category of their base chain, written into d itself: d is usually the
// value returned by ClassDescriptor, and handles read the category from it.
// A host descriptor that is already resolved, for example by another
// registry, must agree with this registry's base chain. Registering an
// identical descriptor twice is a no-op.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.Name == "" {
		return errors.InvalidInput(errors.PhaseRegistry, "class descriptor without a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.classes[d.Name]; ok {
		if existing == d || sameShape(existing, d) {
			return nil
		}
		return errors.Duplicate("class", d.Name)
	}

	if d.Name == RootObject {
		if d.Base != "" {
			return errors.Registration(d.Name, fmt.Errorf("root class cannot have base %q", d.Base))
		}
		if d.Memory == memoryUnresolved {
			d.Memory = MemoryDynamic
		}
		if d.Memory != MemoryDynamic {
			return errors.Registration(d.Name, fmt.Errorf("root class must be dynamic, got %s", d.Memory))
		}
	} else {
		if d.Base == "" {
			return errors.Registration(d.Name, fmt.Errorf("missing base class"))
		}
		if _, ok := r.classes[d.Base]; !ok {
			return errors.Registration(d.Name, errors.NotFound(errors.PhaseRegistry, "base class", d.Base))
		}
		if d.Memory == MemoryDynamic {
			return errors.Registration(d.Name, fmt.Errorf("only %s may use the dynamic memory category", RootObject))
		}
		switch {
		case d.Memory == memoryUnresolved && d.Name == RootRefCounted:
			d.Memory = MemoryRefCounted
		case d.Memory == memoryUnresolved:
			d.Memory = r.resolveMemory(d.Base)
		case d.Domain == DomainHost:
			if want := r.resolveMemory(d.Base); d.Memory != want {
				return errors.Registration(d.Name, fmt.Errorf("memory category %s does not match base chain (%s)", d.Memory, want))
			}
		}
	}

	r.classes[d.Name] = d
	r.children[d.Base] = append(r.children[d.Base], d.Name)
	r.internLocked(d.Name)

	Logger().Debug("class registered",
		zap.String("class", d.Name),
		zap.String("base", d.Base),
		zap.Stringer("memory", d.Memory),
		zap.Stringer("domain", d.Domain))
	return nil
}

// resolveMemory must be called with the lock held.
func (r *Registry) resolveMemory(base string) MemoryCategory {
	for name := base; name != ""; {
		if name == RootRefCounted {
			return MemoryRefCounted
		}
		d, ok := r.classes[name]
		if !ok {
			break
		}
		name = d.Base
	}
	return MemoryManual
}

func sameShape(a, b *Descriptor) bool {
	if a.Name != b.Name || a.Base != b.Base || a.Domain != b.Domain {
		return false
	}
	return b.Memory == memoryUnresolved || a.Memory == b.Memory
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (*Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.classes[name]
	return d, ok
}

// MustLookup is Lookup that panics for unknown classes.
func (r *Registry) MustLookup(name string) *Descriptor {
	d, ok := r.Lookup(name)
	if !ok {
		panic(errors.NotFound(errors.PhaseRegistry, "class", name))
	}
	return d
}

// Intern returns the id of name, assigning one on first use. Ids are
// stable for the registry's lifetime; 0 is never assigned.
func (r *Registry) Intern(name string) ClassID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.internLocked(name)
}

func (r *Registry) internLocked(name string) ClassID {
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := ClassID(len(r.names))
	r.ids[name] = id
	r.names = append(r.names, name)
	return id
}

// NameOf returns the name interned as id.
func (r *Registry) NameOf(id ClassID) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id == 0 || int(id) >= len(r.names) {
		return "", false
	}
	return r.names[id], true
}

// Inherits reports whether derived is base or one of its subclasses.
func (r *Registry) Inherits(derived, base string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for name := derived; name != ""; {
		if name == base {
			return true
		}
		d, ok := r.classes[name]
		if !ok {
			return false
		}
		name = d.Base
	}
	return false
}

// IsRefCounted reports whether instances of name are reference counted.
func (r *Registry) IsRefCounted(name string) bool {
	return r.Inherits(name, RootRefCounted)
}

// Chain returns name followed by its ancestors up to the root.
func (r *Registry) Chain(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var chain []string
	for name != "" {
		d, ok := r.classes[name]
		if !ok {
			break
		}
		chain = append(chain, name)
		name = d.Base
	}
	return chain
}

// Children returns the direct subclasses of name, sorted.
func (r *Registry) Children(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := append([]string(nil), r.children[name]...)
	sort.Strings(out)
	return out
}

// Classes returns all descriptors sorted by name.
func (r *Registry) Classes() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Descriptor, 0, len(r.classes))
	for _, d := range r.classes {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}
