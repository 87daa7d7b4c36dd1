package engine

import (
	"sort"

	"go.uber.org/zap"

	"github.com/wippyai/gdbind/class"
	"github.com/wippyai/gdbind/errors"
	"github.com/wippyai/gdbind/sys"
	"github.com/wippyai/gdbind/variant"
)

type methodFunc func(e *Engine, obj sys.ObjectPtr, args []any) (any, error)

var builtins = map[string]map[string]methodFunc{
	class.RootObject: {
		"get_class":         callGetClass,
		"is_class":          callIsClass,
		"get_instance_id":   callGetInstanceID,
		"get":               callGet,
		"set":               callSet,
		"get_property_list": callGetPropertyList,
		"notification":      callNotification,
	},
	"Node": {
		"set_name":        callSetName,
		"get_name":        callGetName,
		"add_child":       callAddChild,
		"remove_child":    callRemoveChild,
		"get_child_count": callGetChildCount,
		"get_child":       callGetChild,
		"get_parent":      callGetParent,
	},
	"Node2D": {
		"set_position": callSetProp("position", variant.Vector2),
		"get_position": callGetPosition,
	},
	"Resource": {
		"set_path": callSetProp("resource_path", variant.String),
		"get_path": callGetPath,
	},
	"Engine": {
		"get_version":      callGetVersion,
		"get_object_count": callGetObjectCount,
	},
}

// ObjectCall invokes a built-in method, searching obj's class chain from
// the most derived class upward.
func (e *Engine) ObjectCall(obj sys.ObjectPtr, method string, args ...any) (any, error) {
	className, ok := e.ObjectGetClassName(obj)
	if !ok {
		return nil, errors.New(errors.PhaseCall, errors.KindDeadObject).
			Detail("call %s on invalid object %s", method, obj).
			Build()
	}
	for _, c := range e.reg.Chain(className) {
		if fn, ok := builtins[c][method]; ok {
			return fn(e, obj, args)
		}
	}
	return nil, errors.New(errors.PhaseCall, errors.KindNotFound).
		Class(className).
		Detail("method %q not found", method).
		Build()
}

func arg[T any](args []any, i int, method string) (T, error) {
	var zero T
	if i >= len(args) {
		return zero, errors.InvalidInput(errors.PhaseCall, method+": missing argument")
	}
	v, ok := args[i].(T)
	if !ok {
		return zero, errors.New(errors.PhaseCall, errors.KindTypeMismatch).
			Value(args[i]).
			Detail("%s: argument %d has type %T", method, i, args[i]).
			Build()
	}
	return v, nil
}

// withSlot runs fn on obj's live slot under the engine lock.
func (e *Engine) withSlot(obj sys.ObjectPtr, fn func(s *slot) (any, error)) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.resolve(obj)
	if !ok {
		return nil, errors.DeadObject("", 0)
	}
	return fn(s)
}

func callGetClass(e *Engine, obj sys.ObjectPtr, _ []any) (any, error) {
	return e.withSlot(obj, func(s *slot) (any, error) { return s.class, nil })
}

func callIsClass(e *Engine, obj sys.ObjectPtr, args []any) (any, error) {
	name, err := arg[string](args, 0, "is_class")
	if err != nil {
		return nil, err
	}
	dyn, _ := e.ObjectGetClassName(obj)
	return e.reg.Inherits(dyn, name), nil
}

func callGetInstanceID(e *Engine, obj sys.ObjectPtr, _ []any) (any, error) {
	return e.ObjectGetInstanceID(obj), nil
}

// callGet returns a copy of the property the caller must Destroy.
func callGet(e *Engine, obj sys.ObjectPtr, args []any) (any, error) {
	name, err := arg[string](args, 0, "get")
	if err != nil {
		return nil, err
	}
	v, err := e.withSlot(obj, func(s *slot) (any, error) {
		return s.props[name], nil
	})
	if err != nil {
		return nil, err
	}
	// Clone calls back into the engine, so it runs unlocked.
	return v.(variant.Variant).Clone(), nil
}

// callSet stores a copy of the value. The previous value is released.
func callSet(e *Engine, obj sys.ObjectPtr, args []any) (any, error) {
	name, err := arg[string](args, 0, "set")
	if err != nil {
		return nil, err
	}
	v, err := arg[variant.Variant](args, 1, "set")
	if err != nil {
		return nil, err
	}
	return nil, e.storeProp(obj, name, v.Clone())
}

func (e *Engine) storeProp(obj sys.ObjectPtr, name string, v variant.Variant) error {
	old, err := e.withSlot(obj, func(s *slot) (any, error) {
		if s.props == nil {
			s.props = make(map[string]variant.Variant)
		}
		old := s.props[name]
		if v.IsNil() {
			delete(s.props, name)
		} else {
			s.props[name] = v
		}
		return old, nil
	})
	if err != nil {
		if derr := v.Destroy(); derr != nil {
			e.log.Warn("releasing rejected property failed", zap.String("property", name), zap.Error(derr))
		}
		return err
	}
	if derr := old.(variant.Variant).Destroy(); derr != nil {
		e.log.Warn("releasing replaced property failed", zap.String("property", name), zap.Error(derr))
	}
	return nil
}

func callGetPropertyList(e *Engine, obj sys.ObjectPtr, _ []any) (any, error) {
	return e.withSlot(obj, func(s *slot) (any, error) {
		names := make([]string, 0, len(s.props))
		for n := range s.props {
			names = append(names, n)
		}
		sort.Strings(names)
		return names, nil
	})
}

func callNotification(e *Engine, obj sys.ObjectPtr, args []any) (any, error) {
	what, err := arg[int32](args, 0, "notification")
	if err != nil {
		return nil, err
	}
	return nil, e.ObjectNotification(obj, what)
}

func callSetName(e *Engine, obj sys.ObjectPtr, args []any) (any, error) {
	name, err := arg[string](args, 0, "set_name")
	if err != nil {
		return nil, err
	}
	return e.withSlot(obj, func(s *slot) (any, error) {
		s.name = name
		return nil, nil
	})
}

func callGetName(e *Engine, obj sys.ObjectPtr, _ []any) (any, error) {
	return e.withSlot(obj, func(s *slot) (any, error) { return s.name, nil })
}

func callAddChild(e *Engine, obj sys.ObjectPtr, args []any) (any, error) {
	child, err := arg[sys.ObjectPtr](args, 0, "add_child")
	if err != nil {
		return nil, err
	}
	if child == obj {
		return nil, errors.InvalidInput(errors.PhaseCall, "add_child: node cannot be its own child")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	parent, ok := e.resolve(obj)
	if !ok {
		return nil, errors.DeadObject("Node", 0)
	}
	cs, ok := e.resolve(child)
	if !ok {
		return nil, errors.DeadObject("Node", 0)
	}
	if !e.reg.Inherits(cs.class, "Node") {
		return nil, errors.TypeMismatch(errors.PhaseCall, "Node", cs.class)
	}
	if !cs.parent.IsNull() {
		return nil, errors.InvalidInput(errors.PhaseCall, "add_child: node already has a parent")
	}
	for anc := parent.parent; !anc.IsNull(); {
		if anc == child {
			return nil, errors.InvalidInput(errors.PhaseCall, "add_child: would create a cycle")
		}
		as, ok := e.resolve(anc)
		if !ok {
			break
		}
		anc = as.parent
	}
	cs.parent = obj
	parent.children = append(parent.children, child)
	return nil, nil
}

func callRemoveChild(e *Engine, obj sys.ObjectPtr, args []any) (any, error) {
	child, err := arg[sys.ObjectPtr](args, 0, "remove_child")
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	parent, ok := e.resolve(obj)
	if !ok {
		return nil, errors.DeadObject("Node", 0)
	}
	cs, ok := e.resolve(child)
	if !ok || cs.parent != obj {
		return nil, errors.NotFound(errors.PhaseCall, "child", child.String())
	}
	cs.parent = 0
	parent.children = removePtr(parent.children, child)
	return nil, nil
}

func callGetChildCount(e *Engine, obj sys.ObjectPtr, _ []any) (any, error) {
	return e.withSlot(obj, func(s *slot) (any, error) { return len(s.children), nil })
}

func callGetChild(e *Engine, obj sys.ObjectPtr, args []any) (any, error) {
	i, err := arg[int](args, 0, "get_child")
	if err != nil {
		return nil, err
	}
	return e.withSlot(obj, func(s *slot) (any, error) {
		if i < 0 || i >= len(s.children) {
			return sys.ObjectPtr(0), nil
		}
		return s.children[i], nil
	})
}

func callGetParent(e *Engine, obj sys.ObjectPtr, _ []any) (any, error) {
	return e.withSlot(obj, func(s *slot) (any, error) { return s.parent, nil })
}

// callSetProp stores a typed value under a fixed property name. The
// argument may be a Variant or the matching Go value.
func callSetProp(name string, want variant.Type) methodFunc {
	return func(e *Engine, obj sys.ObjectPtr, args []any) (any, error) {
		if len(args) == 0 {
			return nil, errors.InvalidInput(errors.PhaseCall, "missing argument")
		}
		var v variant.Variant
		switch a := args[0].(type) {
		case variant.Variant:
			v = a
		case variant.Vec2:
			v = variant.FromVector2(a.X, a.Y)
		case string:
			v = variant.FromString(a)
		}
		if v.Type() != want {
			return nil, errors.New(errors.PhaseCall, errors.KindTypeMismatch).
				Value(args[0]).
				Detail("%s expects %s", name, want).
				Build()
		}
		return nil, e.storeProp(obj, name, v)
	}
}

func callGetPosition(e *Engine, obj sys.ObjectPtr, _ []any) (any, error) {
	return e.withSlot(obj, func(s *slot) (any, error) {
		pos, _ := s.props["position"].AsVector2()
		return pos, nil
	})
}

func callGetPath(e *Engine, obj sys.ObjectPtr, _ []any) (any, error) {
	return e.withSlot(obj, func(s *slot) (any, error) {
		path, _ := s.props["resource_path"].AsString()
		return path, nil
	})
}

func callGetVersion(e *Engine, _ sys.ObjectPtr, _ []any) (any, error) {
	return e.cfg.Version, nil
}

func callGetObjectCount(e *Engine, _ sys.ObjectPtr, _ []any) (any, error) {
	return e.LiveObjects(), nil
}
