// Package relationship classifies the structural relationship between two
// units in the dependency graph. Classification drives the access policy
// engine: the closer the relationship, the more a policy may permit.
package relationship

import (
	"sync"

	"github.com/conneroisu/modkit/internal/interfaces"
)

// Relationship is the structural distance between two units. The numeric
// order matters: access levels compare against it directly.
type Relationship int

const (
	// Self: source and target are the same unit.
	Self Relationship = iota
	// DirectDependency: target is in the source's direct dependency set.
	DirectDependency
	// TransitivelyReachable: target is reachable from the source through
	// one or more dependency edges.
	TransitivelyReachable
	// Unrelated: target is not reachable from the source, or either unit
	// is unknown to the registry.
	Unrelated
)

// String returns the string representation of the Relationship
func (r Relationship) String() string {
	switch r {
	case Self:
		return "self"
	case DirectDependency:
		return "direct_dependency"
	case TransitivelyReachable:
		return "transitively_reachable"
	case Unrelated:
		return "unrelated"
	default:
		return "unknown"
	}
}

// Resolver classifies unit relationships against a registry-backed
// dependency graph, memoizing each (from, to) pair.
//
// The cache is append-only for the lifetime of the resolver. If the
// dependency graph mutates, the owner must call Invalidate; the resolver
// does not watch the registry itself.
type Resolver struct {
	registry interfaces.UnitRegistry
	cache    map[string]Relationship
	mutex    sync.Mutex
}

// NewResolver creates a resolver over the given registry. A nil registry
// yields a null resolver: every query answers Unrelated without traversal
// and the identity is empty.
func NewResolver(registry interfaces.UnitRegistry) *Resolver {
	return &Resolver{
		registry: registry,
		cache:    make(map[string]Relationship),
	}
}

// Identity returns the structural name of the currently active unit.
func (r *Resolver) Identity() string {
	if r.registry == nil {
		return ""
	}
	return r.registry.CurrentIdentity()
}

// Between classifies the relationship from one unit to another. Unknown
// units are Unrelated; absence is not a failure condition.
func (r *Resolver) Between(from, to string) Relationship {
	if r.registry == nil {
		return Unrelated
	}

	if from == to {
		return Self
	}

	key := from + "\x00" + to

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if rel, ok := r.cache[key]; ok {
		return rel
	}

	rel := r.classify(from, to)
	r.cache[key] = rel
	return rel
}

// Invalidate clears the memoization cache. Owners must call this after the
// dependency graph mutates.
func (r *Resolver) Invalidate() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.cache = make(map[string]Relationship)
}

// CacheSize returns the number of memoized pairs.
func (r *Resolver) CacheSize() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return len(r.cache)
}

// classify walks the dependency graph. Direct dependencies short-circuit;
// otherwise a breadth-first traversal with a visited set guarantees
// termination on cyclic graphs.
func (r *Resolver) classify(from, to string) Relationship {
	direct := r.registry.DependenciesOf(from)
	for _, dep := range direct {
		if dep == to {
			return DirectDependency
		}
	}

	visited := map[string]bool{from: true}
	queue := make([]string, 0, len(direct))
	for _, dep := range direct {
		if !visited[dep] {
			visited[dep] = true
			queue = append(queue, dep)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, dep := range r.registry.DependenciesOf(current) {
			if dep == to {
				return TransitivelyReachable
			}
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	return Unrelated
}
