package class

// Root class names every hierarchy hangs off.
const (
	RootObject     = "Object"
	RootRefCounted = "RefCounted"
)

// MemoryCategory selects how handles to a class manage the object's lifetime.
type MemoryCategory uint8

const (
	// memoryUnresolved is only valid before registration; host classes
	// inherit their category from the base chain.
	memoryUnresolved MemoryCategory = iota
	// MemoryRefCounted objects are destroyed when the last reference drops.
	MemoryRefCounted
	// MemoryManual objects live until freed explicitly.
	MemoryManual
	// MemoryDynamic is the root Object's category; each instance decides at
	// runtime by checking whether its class inherits RefCounted.
	MemoryDynamic
)

func (m MemoryCategory) String() string {
	switch m {
	case MemoryRefCounted:
		return "refcounted"
	case MemoryManual:
		return "manual"
	case MemoryDynamic:
		return "dynamic"
	default:
		return "unresolved"
	}
}

// Domain tells whether a class is declared by the engine or by host code.
type Domain uint8

const (
	// DomainEngine classes are plain engine types; a handle reinterprets
	// directly as the class value.
	DomainEngine Domain = iota
	// DomainHost classes carry a host payload stored through a cell.
	DomainHost
)

func (d Domain) String() string {
	if d == DomainHost {
		return "host"
	}
	return "engine"
}

// Descriptor is the static metadata of a class.
type Descriptor struct {
	Name   string
	Base   string // empty only for RootObject
	Memory MemoryCategory
	Domain Domain

	// Instantiable reports whether the engine can construct the class
	// without arguments.
	Instantiable bool
	// BaseField marks host classes whose payload needs its base object at
	// construction time; they cannot be built from a finished payload.
	BaseField bool
	// Singleton marks engine classes with a single global instance.
	Singleton bool
}
