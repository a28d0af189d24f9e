// Package policy implements the event access policy engine. Policies are
// declarative: an ordered access level per direction, a permitted action
// kind set, and a path scope with per-prefix overrides. The engine decides
// allow or deny from the structural relationship between sender and
// receiver; denial is a soft outcome surfaced through a violation callback.
package policy

import (
	"github.com/conneroisu/modkit/internal/relationship"
)

// ActionKind is the kind of cross-unit communication being authorized.
type ActionKind string

const (
	KindEmit           ActionKind = "emit"
	KindListen         ActionKind = "listen"
	KindRetain         ActionKind = "retain"
	KindClearRetained  ActionKind = "clearRetained"
	KindCreateChannels ActionKind = "createChannels"
)

// AllKinds returns every action kind, in declaration order.
func AllKinds() []ActionKind {
	return []ActionKind{KindEmit, KindListen, KindRetain, KindClearRetained, KindCreateChannels}
}

// ParseKind converts a kind name to an ActionKind.
func ParseKind(name string) (ActionKind, bool) {
	switch ActionKind(name) {
	case KindEmit, KindListen, KindRetain, KindClearRetained, KindCreateChannels:
		return ActionKind(name), true
	default:
		return "", false
	}
}

// AccessLevel is an ordered permission tier: lower values are stricter. A
// relationship is permitted iff its numeric classification does not exceed
// the level's ceiling.
type AccessLevel int

const (
	// LevelInternal permits only the unit itself.
	LevelInternal AccessLevel = iota
	// LevelDependencies additionally permits direct dependencies.
	LevelDependencies
	// LevelGraph additionally permits transitively reachable units.
	LevelGraph
	// LevelPublic permits every unit, related or not.
	LevelPublic
)

// String returns the string representation of the AccessLevel
func (l AccessLevel) String() string {
	switch l {
	case LevelInternal:
		return "internal"
	case LevelDependencies:
		return "dependencies"
	case LevelGraph:
		return "graph"
	case LevelPublic:
		return "public"
	default:
		return "unknown"
	}
}

// ParseLevel converts a level name to an AccessLevel.
func ParseLevel(name string) (AccessLevel, bool) {
	switch name {
	case "internal":
		return LevelInternal, true
	case "dependencies":
		return LevelDependencies, true
	case "graph":
		return LevelGraph, true
	case "public":
		return LevelPublic, true
	default:
		return 0, false
	}
}

// Permits reports whether the level's ceiling covers the relationship.
func (l AccessLevel) Permits(rel relationship.Relationship) bool {
	return int(rel) <= int(l)
}

// Scope restricts a policy to a region of the action path space. A path
// inside Excludes is denied unless a more specific override matches it; a
// non-empty Includes list confines the policy to the listed prefixes.
type Scope struct {
	Includes  []string
	Excludes  []string
	Overrides map[string]*Policy
}

// Violation is the context handed to the violation callback on deny.
type Violation struct {
	Path         string
	Kind         ActionKind
	Sender       string
	Receiver     string
	Relationship relationship.Relationship
	Reason       string
}

// ViolationFunc is invoked synchronously on every denied decision. Its
// behavior never alters the deny outcome; it is a telemetry side channel.
type ViolationFunc func(v Violation)

// Policy is the declarative permission model for a communication path.
type Policy struct {
	EmitLevel    AccessLevel
	ReceiveLevel AccessLevel
	Permissions  map[ActionKind]bool
	Scope        Scope
	OnViolation  ViolationFunc
	Reason       string
}

// DefaultPolicy returns the permissive policy used when no explicit policy
// is configured: every action kind at the most permissive level.
func DefaultPolicy() *Policy {
	permissions := make(map[ActionKind]bool, len(AllKinds()))
	for _, kind := range AllKinds() {
		permissions[kind] = true
	}

	return &Policy{
		EmitLevel:    LevelPublic,
		ReceiveLevel: LevelPublic,
		Permissions:  permissions,
	}
}

// levelFor returns the access level governing the direction implied by the
// action kind: listen is the receive direction, everything else emits.
func (p *Policy) levelFor(kind ActionKind) AccessLevel {
	if kind == KindListen {
		return p.ReceiveLevel
	}
	return p.EmitLevel
}
