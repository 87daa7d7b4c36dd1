// Package classes declares the engine classes the binding ships with.
//
// Each class is a struct wrapping one object pointer, embedding its base
// class so base methods are promoted. Values are obtained from a handle
// with Deref:
//
//	node := gd.NewDefault[classes.Node2D]()
//	node.Deref().SetName("Player")
//	node.Deref().SetPosition(variant.Vec2{X: 10, Y: 4})
//
// Methods panic when the engine reports an error, like calling a method on
// a freed object.
package classes

import (
	"github.com/wippyai/gdbind/class"
	"github.com/wippyai/gdbind/gd"
	"github.com/wippyai/gdbind/sys"
	"github.com/wippyai/gdbind/variant"
)

var (
	objectDesc = &class.Descriptor{
		Name:         class.RootObject,
		Memory:       class.MemoryDynamic,
		Domain:       class.DomainEngine,
		Instantiable: true,
	}
	refCountedDesc = &class.Descriptor{
		Name:         class.RootRefCounted,
		Base:         class.RootObject,
		Memory:       class.MemoryRefCounted,
		Domain:       class.DomainEngine,
		Instantiable: true,
	}
	resourceDesc = &class.Descriptor{
		Name:         "Resource",
		Base:         class.RootRefCounted,
		Memory:       class.MemoryRefCounted,
		Domain:       class.DomainEngine,
		Instantiable: true,
	}
	nodeDesc = &class.Descriptor{
		Name:         "Node",
		Base:         class.RootObject,
		Memory:       class.MemoryManual,
		Domain:       class.DomainEngine,
		Instantiable: true,
	}
	node2DDesc = &class.Descriptor{
		Name:         "Node2D",
		Base:         "Node",
		Memory:       class.MemoryManual,
		Domain:       class.DomainEngine,
		Instantiable: true,
	}
	engineDesc = &class.Descriptor{
		Name:      "Engine",
		Base:      class.RootObject,
		Memory:    class.MemoryManual,
		Domain:    class.DomainEngine,
		Singleton: true,
	}
)

// Descriptors returns the descriptors of all classes in this package,
// bases first.
func Descriptors() []*class.Descriptor {
	return []*class.Descriptor{objectDesc, refCountedDesc, resourceDesc, nodeDesc, node2DDesc, engineDesc}
}

// Register adds every class in this package to reg.
func Register(reg *class.Registry) error {
	for _, d := range Descriptors() {
		if err := reg.Register(d); err != nil {
			return err
		}
	}
	return nil
}

func call(obj sys.ObjectPtr, method string, args ...any) any {
	v, err := sys.Get().ObjectCall(obj, method, args...)
	if err != nil {
		panic(err)
	}
	return v
}

// Object is the root of the class hierarchy.
type Object struct {
	obj sys.ObjectPtr
}

func (Object) ClassDescriptor() *class.Descriptor { return objectDesc }

func (o Object) GetClass() string { return call(o.obj, "get_class").(string) }

func (o Object) IsClass(name string) bool { return call(o.obj, "is_class", name).(bool) }

func (o Object) GetInstanceID() sys.InstanceID {
	return call(o.obj, "get_instance_id").(sys.InstanceID)
}

// Get returns a copy of a property. The caller owns it and must Destroy it.
func (o Object) Get(property string) variant.Variant {
	return call(o.obj, "get", property).(variant.Variant)
}

// Set stores a copy of value; the caller keeps ownership of value.
func (o Object) Set(property string, value variant.Variant) {
	call(o.obj, "set", property, value)
}

func (o Object) GetPropertyList() []string { return call(o.obj, "get_property_list").([]string) }

func (o Object) Notification(what int32) { call(o.obj, "notification", what) }

// RefCounted is the base of all reference-counted classes.
type RefCounted struct {
	Object
}

func (RefCounted) ClassDescriptor() *class.Descriptor { return refCountedDesc }

func (r RefCounted) GetReferenceCount() int32 {
	return sys.Get().RefGetReferenceCount(r.obj)
}

// Resource is a reference-counted asset.
type Resource struct {
	RefCounted
}

func (Resource) ClassDescriptor() *class.Descriptor { return resourceDesc }

func (r Resource) SetPath(path string) { call(r.obj, "set_path", path) }

func (r Resource) GetPath() string { return call(r.obj, "get_path").(string) }

// Node is a manually managed scene tree node. Destroying a node destroys
// its children.
type Node struct {
	Object
}

func (Node) ClassDescriptor() *class.Descriptor { return nodeDesc }

func (n Node) SetName(name string) { call(n.obj, "set_name", name) }

func (n Node) GetName() string { return call(n.obj, "get_name").(string) }

// AddChild attaches child. The parent takes over destroying it.
func (n Node) AddChild(child gd.Gd[Node]) { call(n.obj, "add_child", child.Ptr()) }

func (n Node) RemoveChild(child gd.Gd[Node]) { call(n.obj, "remove_child", child.Ptr()) }

func (n Node) GetChildCount() int { return call(n.obj, "get_child_count").(int) }

// GetChild returns the i-th child, or a null handle if out of range.
func (n Node) GetChild(i int) gd.Gd[Node] {
	p := call(n.obj, "get_child", i).(sys.ObjectPtr)
	if p.IsNull() {
		return gd.Gd[Node]{}
	}
	g, _ := gd.FromPtr[Node](p)
	return g
}

// GetParent returns the parent node, or a null handle.
func (n Node) GetParent() gd.Gd[Node] {
	p := call(n.obj, "get_parent").(sys.ObjectPtr)
	if p.IsNull() {
		return gd.Gd[Node]{}
	}
	g, _ := gd.FromPtr[Node](p)
	return g
}

// Node2D is a node with a 2D position.
type Node2D struct {
	Node
}

func (Node2D) ClassDescriptor() *class.Descriptor { return node2DDesc }

func (n Node2D) SetPosition(pos variant.Vec2) { call(n.obj, "set_position", pos) }

func (n Node2D) GetPosition() variant.Vec2 { return call(n.obj, "get_position").(variant.Vec2) }

// Engine is the engine singleton.
type Engine struct {
	Object
}

func (Engine) ClassDescriptor() *class.Descriptor { return engineDesc }

func (e Engine) GetVersion() string { return call(e.obj, "get_version").(string) }

func (e Engine) GetObjectCount() int { return call(e.obj, "get_object_count").(int) }
