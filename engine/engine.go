package engine

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/gdbind/class"
	"github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/sys"
)

// Notifications sent to host instances.
const (
	NotificationPostInitialize int32 = 0
	NotificationPredelete      int32 = 1
)

// DefaultVersion is reported by the Engine singleton when Config.Version
// is empty.
const DefaultVersion = "gdbind-engine 1.0"

// Config holds configuration for engine creation
type Config struct {
	// Logger overrides the package logger for this engine.
	Logger *zap.Logger

	// Version is reported by the Engine singleton.
	Version string

	// MaxObjects caps the number of live objects. Construction past the cap
	// returns null. 0 means unlimited.
	MaxObjects int

	// FailOnLeak makes Close return an error when objects other than
	// singletons are still alive.
	FailOnLeak bool
}

// Engine is an in-process implementation of sys.Interface: an object
// database with instance ids, reference counts, instance bindings,
// singletons and a handful of built-in methods.
type Engine struct {
	reg        *class.Registry
	log        *zap.Logger
	extensions map[string]sys.ExtensionClassInfo
	singletons map[string]sys.ObjectPtr
	byID       map[sys.InstanceID]sys.ObjectPtr
	slots      []slot
	freeList   []uint32
	observers  []Observer
	cfg        Config
	nextID     sys.InstanceID
	live       int
	obsMu      sync.RWMutex
	mu         sync.Mutex
	closed     bool
}

var _ sys.Interface = (*Engine)(nil)

// New creates an engine over reg.
func New(reg *class.Registry) *Engine {
	return NewWithConfig(reg, nil)
}

// NewWithConfig creates an engine with custom configuration. Every class
// marked as a singleton in reg gets its instance constructed here.
func NewWithConfig(reg *class.Registry, cfg *Config) *Engine {
	e := &Engine{
		reg:        reg,
		extensions: make(map[string]sys.ExtensionClassInfo),
		singletons: make(map[string]sys.ObjectPtr),
		byID:       make(map[sys.InstanceID]sys.ObjectPtr),
		slots:      make([]slot, 0, 64),
		freeList:   make([]uint32, 0, 16),
	}
	if cfg != nil {
		e.cfg = *cfg
	}
	if e.cfg.Version == "" {
		e.cfg.Version = DefaultVersion
	}
	e.log = e.cfg.Logger
	if e.log == nil {
		e.log = Logger()
	}

	for _, d := range reg.Classes() {
		if !d.Singleton {
			continue
		}
		obj := e.construct(d.Name)
		if obj.IsNull() {
			e.log.Warn("singleton construction failed", zap.String("class", d.Name))
			continue
		}
		e.singletons[d.Name] = obj
	}
	return e
}

// Registry returns the class registry the engine answers casts with.
func (e *Engine) Registry() *class.Registry {
	return e.reg
}

// Version returns the configured engine version string.
func (e *Engine) Version() string {
	return e.cfg.Version
}

// ClassdbRegisterExtensionClass makes a host class constructible by name.
func (e *Engine) ClassdbRegisterExtensionClass(info sys.ExtensionClassInfo) error {
	d, ok := e.reg.Lookup(info.Name)
	if !ok {
		return errors.Registration(info.Name, errors.NotFound(errors.PhaseRegistry, "class", info.Name))
	}
	if d.Base != info.Parent {
		return errors.Registration(info.Name, fmt.Errorf("parent %q does not match registered base %q", info.Parent, d.Base))
	}
	if info.Create == nil {
		return errors.Registration(info.Name, fmt.Errorf("missing create callback"))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, dup := e.extensions[info.Name]; dup {
		return errors.Duplicate("extension class", info.Name)
	}
	e.extensions[info.Name] = info
	e.log.Debug("extension class registered", zap.String("class", info.Name), zap.String("parent", info.Parent))
	return nil
}

// GlobalGetSingleton returns the singleton instance of name, or null.
func (e *Engine) GlobalGetSingleton(name string) sys.ObjectPtr {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.singletons[name]
}

// ObjectInfo is a snapshot of one live object.
type ObjectInfo struct {
	Class      string
	Ptr        sys.ObjectPtr
	ID         sys.InstanceID
	RefCount   int32
	RefCounted bool
	Singleton  bool
}

func (o ObjectInfo) String() string {
	if o.RefCounted {
		return fmt.Sprintf("%s#%d (refcount %d)", o.Class, o.ID, o.RefCount)
	}
	return fmt.Sprintf("%s#%d", o.Class, o.ID)
}

// LiveObjects returns the number of live objects, singletons included.
func (e *Engine) LiveObjects() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live
}

// Objects returns a snapshot of all live objects ordered by instance id.
func (e *Engine) Objects() []ObjectInfo {
	e.mu.Lock()
	defer e.mu.Unlock()

	singleton := make(map[sys.ObjectPtr]bool, len(e.singletons))
	for _, p := range e.singletons {
		singleton[p] = true
	}

	out := make([]ObjectInfo, 0, e.live)
	for i := range e.slots {
		s := &e.slots[i]
		if !s.valid {
			continue
		}
		ptr := encodePtr(uint32(i), s.gen)
		out = append(out, ObjectInfo{
			Class:      s.class,
			Ptr:        ptr,
			ID:         s.id,
			RefCount:   s.refCount,
			RefCounted: s.refCounted,
			Singleton:  singleton[ptr],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Close destroys every remaining object. Objects other than singletons
// that are still alive are reported as leaks.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	var leaks []string
	for _, info := range e.Objects() {
		if info.Singleton {
			continue
		}
		leaks = append(leaks, info.String())
		e.log.Warn("object leaked",
			zap.String("class", info.Class),
			zap.Uint64("instance_id", uint64(info.ID)),
			zap.Int32("refcount", info.RefCount))
	}

	// Parents destroy their children, so re-snapshot after each destroy.
	for {
		objs := e.Objects()
		if len(objs) == 0 {
			break
		}
		if err := e.ObjectDestroy(objs[0].Ptr); err != nil {
			e.log.Warn("destroy on close failed", zap.String("class", objs[0].Class), zap.Error(err))
			e.forget(objs[0].Ptr)
		}
	}

	e.mu.Lock()
	e.singletons = make(map[string]sys.ObjectPtr)
	e.mu.Unlock()

	if len(leaks) > 0 && e.cfg.FailOnLeak {
		return errors.New(errors.PhaseLifetime, errors.KindDeadObject).
			Detail("%d object(s) leaked: %s", len(leaks), strings.Join(leaks, ", ")).
			Value(len(leaks)).
			Build()
	}
	return nil
}
