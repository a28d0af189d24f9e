// Package dispatch implements the hierarchical action dispatcher: a tree of
// named path segments where each node optionally carries a handler. Calling
// a dotted path executes every handler along the path in order, giving
// prefix registrations middleware semantics over their subtrees.
//
// The tree is not internally synchronized. The contract is a
// register-then-call phase separation; embedders that must mutate the tree
// concurrently with dispatch need external locking.
package dispatch

import (
	"strings"

	"github.com/conneroisu/modkit/internal/errors"
)

// DefaultSeparator splits action paths when no custom separator is set.
const DefaultSeparator = "."

// node is one path segment in the arena. Children are indexed by segment
// name into the arena slice, avoiding ownership cycles between nodes.
type node struct {
	name     string
	children map[string]int
	handler  Handler
}

// Tree is the action dispatcher.
type Tree struct {
	separator string
	nodes     []node
}

// Option configures a Tree.
type Option func(*Tree)

// WithSeparator sets a custom path separator.
func WithSeparator(sep string) Option {
	return func(t *Tree) {
		if sep != "" {
			t.separator = sep
		}
	}
}

// NewTree creates an empty dispatcher. nodes[0] is the unnamed root; it can
// never carry a handler because the empty path is invalid.
func NewTree(opts ...Option) *Tree {
	t := &Tree{
		separator: DefaultSeparator,
		nodes:     []node{{children: make(map[string]int)}},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Separator returns the configured path separator.
func (t *Tree) Separator() string {
	return t.separator
}

// Len returns the number of nodes in the tree, excluding the root.
func (t *Tree) Len() int {
	return len(t.nodes) - 1
}

// split validates a path and returns its ordered segments.
func (t *Tree) split(path string) ([]string, error) {
	if path == "" {
		return nil, errors.NewInvalidActionPath(path)
	}

	segments := strings.Split(path, t.separator)
	for _, segment := range segments {
		if segment == "" {
			return nil, errors.NewInvalidActionPath(path)
		}
	}

	return segments, nil
}

// Register walks or lazily creates nodes for each segment of path and binds
// the handler to the terminal node. Registering the exact same path twice
// fails; registering a prefix of an existing path afterward is legal, the
// prefix node simply gains a handler.
func (t *Tree) Register(path string, handler Handler) error {
	segments, err := t.split(path)
	if err != nil {
		return err
	}
	if handler == nil {
		return errors.NewInvalidActionPath(path).WithContext("reason", "nil handler")
	}

	current := 0
	for _, segment := range segments {
		child, ok := t.nodes[current].children[segment]
		if !ok {
			t.nodes = append(t.nodes, node{
				name:     segment,
				children: make(map[string]int),
			})
			child = len(t.nodes) - 1
			t.nodes[current].children[segment] = child
		}
		current = child
	}

	if t.nodes[current].handler != nil {
		return errors.NewDuplicateAction(path)
	}
	t.nodes[current].handler = handler

	return nil
}

// Call walks the tree from the root along path, executing the handler of
// every visited node in order. Each handler observes the shared Context;
// its return value becomes LastResult for the handlers after it. A handler
// error halts the chain and propagates. The LastResult after the final
// segment is returned.
func (t *Tree) Call(path string, payload interface{}) (interface{}, error) {
	segments, err := t.split(path)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		Payload: payload,
		Path:    segments,
	}

	current := 0
	for i, segment := range segments {
		ctx.Cursor = i

		child, ok := t.nodes[current].children[segment]
		if !ok {
			suggestion := t.suggest(current, segment)
			return nil, errors.NewActionNotFound(path, segment, suggestion)
		}
		current = child

		if handler := t.nodes[current].handler; handler != nil {
			result, err := handler(ctx)
			if err != nil {
				return nil, err
			}
			ctx.LastResult = result
		}
	}

	return ctx.LastResult, nil
}

// Registered reports whether an exact path has a handler bound to it.
func (t *Tree) Registered(path string) bool {
	segments, err := t.split(path)
	if err != nil {
		return false
	}

	current := 0
	for _, segment := range segments {
		child, ok := t.nodes[current].children[segment]
		if !ok {
			return false
		}
		current = child
	}

	return t.nodes[current].handler != nil
}
