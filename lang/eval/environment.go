package eval

import "github.com/mna/monkey/lang/object"

// Handle is a non-owning reference to an environment node living in an
// Arena. Using a freed Handle is a programming bug and panics rather than
// silently returning stale or zero data.
type Handle int

const noOuter Handle = -1

type envNode struct {
	vars  map[string]object.Object
	outer Handle
	alive bool
}

// Arena owns every environment node created while evaluating a program.
// Closures only ever hold a Handle into the arena, never the node itself,
// so the arena is the single point of truth for an environment's lifetime.
//
// Environments naturally form a DAG (and, through user-constructed
// recursive closures, cycles): a function literal can return a closure
// whose captured environment outlives the call that created it, and a
// closure can be stored inside the very environment it was captured from.
// Rather than track this with Go's GC (which would keep every environment
// alive for the lifetime of the process, since object.Function embeds an
// Environment interface, not a real pointer graph the collector can reason
// about across the handle indirection) the arena performs its own
// mark-and-sweep at the end of each top-level Evaluate call.
type Arena struct {
	nodes []*envNode
}

// NewArena returns an empty Arena.
func NewArena() *Arena { return &Arena{} }

// New allocates a fresh environment node chained to outer (or noOuter for a
// root environment) and returns its Handle.
func (a *Arena) New(outer Handle) Handle {
	a.nodes = append(a.nodes, &envNode{vars: map[string]object.Object{}, outer: outer, alive: true})
	return Handle(len(a.nodes) - 1)
}

func (a *Arena) node(h Handle) *envNode {
	if h < 0 || int(h) >= len(a.nodes) || !a.nodes[h].alive {
		panic("eval: use of freed or invalid environment handle")
	}
	return a.nodes[h]
}

// Get resolves name in h, then its outer chain.
func (a *Arena) Get(h Handle, name string) (object.Object, bool) {
	n := a.node(h)
	if v, ok := n.vars[name]; ok {
		return v, true
	}
	if n.outer != noOuter {
		return a.Get(n.outer, name)
	}
	return nil, false
}

// Set binds name to val directly in h (never in an outer environment).
func (a *Arena) Set(h Handle, name string, val object.Object) object.Object {
	a.node(h).vars[name] = val
	return val
}

// Bind returns an object.Environment backed by (a, h), suitable for storing
// in an object.Function.
func (a *Arena) Bind(h Handle) object.Environment { return boundEnv{a: a, h: h} }

// boundEnv adapts an (Arena, Handle) pair to the object.Environment
// interface expected by object.Function, without object needing to know
// about the arena or its Handle type.
type boundEnv struct {
	a *Arena
	h Handle
}

func (b boundEnv) Get(name string) (object.Object, bool)    { return b.a.Get(b.h, name) }
func (b boundEnv) Set(name string, val object.Object) object.Object { return b.a.Set(b.h, name, val) }

// MarkSweep marks every environment reachable from root -- by outer chain
// and by scanning every bound value for Function captures, Array/Hash
// elements and ReturnValue payloads -- and releases (frees the var map of)
// every node that was not reached.
func (a *Arena) MarkSweep(root Handle) {
	marked := make([]bool, len(a.nodes))
	var mark func(h Handle)
	mark = func(h Handle) {
		if h < 0 || int(h) >= len(a.nodes) || marked[h] {
			return
		}
		marked[h] = true
		n := a.nodes[h]
		if !n.alive {
			return
		}
		if n.outer != noOuter {
			mark(n.outer)
		}
		for _, v := range n.vars {
			markValue(v, mark)
		}
	}
	mark(root)

	for i, n := range a.nodes {
		if n.alive && !marked[i] {
			n.alive = false
			n.vars = nil
		}
	}
}

func markValue(v object.Object, mark func(Handle)) {
	switch val := v.(type) {
	case *object.Function:
		if be, ok := val.Env.(boundEnv); ok {
			mark(be.h)
		}
	case *object.ReturnValue:
		markValue(val.Value, mark)
	case *object.Array:
		for _, e := range val.Elements {
			markValue(e, mark)
		}
	case *object.Hash:
		val.Each(func(p object.HashPair) { markValue(p.Value, mark) })
	}
}
