//go:build property

package dispatch

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/conneroisu/modkit/internal/errors"
)

// TestTreeProperties validates critical properties of the action tree
func TestTreeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.Rng.Seed(9876)
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	segment := gen.RegexMatch(`[a-z][a-z0-9]{0,7}`)
	path := gen.SliceOfN(3, segment).Map(func(segments []string) string {
		return strings.Join(segments, ".")
	})

	// Property: register then call round-trips the handler result
	properties.Property("registered paths are callable", prop.ForAll(
		func(p string, payload int) bool {
			tree := NewTree()
			if err := tree.Register(p, func(ctx *Context) (interface{}, error) {
				return ctx.Payload, nil
			}); err != nil {
				return false
			}

			result, err := tree.Call(p, payload)
			return err == nil && result == payload
		},
		path,
		gen.Int(),
	))

	// Property: repeated calls execute the identical handler sequence
	properties.Property("dispatch is deterministic", prop.ForAll(
		func(p string) bool {
			tree := NewTree()

			var firstOrder, secondOrder []int
			order := &firstOrder

			segments := strings.Split(p, ".")
			for i := 1; i <= len(segments); i++ {
				index := i
				prefix := strings.Join(segments[:i], ".")
				if err := tree.Register(prefix, func(ctx *Context) (interface{}, error) {
					*order = append(*order, index)
					return index, nil
				}); err != nil {
					// Generated prefixes can collide (repeated segments);
					// duplicates are outside this property's scope
					if errors.IsDuplicateAction(err) {
						return true
					}
					return false
				}
			}

			if _, err := tree.Call(p, nil); err != nil {
				return false
			}
			order = &secondOrder
			if _, err := tree.Call(p, nil); err != nil {
				return false
			}

			if len(firstOrder) != len(secondOrder) {
				return false
			}
			for i := range firstOrder {
				if firstOrder[i] != secondOrder[i] {
					return false
				}
			}
			return true
		},
		path,
	))

	// Property: re-registering an exact path always fails and never
	// clobbers the original handler
	properties.Property("duplicate registration is rejected", prop.ForAll(
		func(p string) bool {
			tree := NewTree()
			if err := tree.Register(p, func(ctx *Context) (interface{}, error) {
				return "original", nil
			}); err != nil {
				return false
			}

			err := tree.Register(p, func(ctx *Context) (interface{}, error) {
				return "overwrite", nil
			})
			if !errors.IsDuplicateAction(err) {
				return false
			}

			result, callErr := tree.Call(p, nil)
			return callErr == nil && result == "original"
		},
		path,
	))

	// Property: a suggestion, when present, is always a real child of the
	// failing node
	properties.Property("suggestions name registered siblings", prop.ForAll(
		func(registered []string, missing string) bool {
			tree := NewTree()
			valid := make(map[string]bool)
			for _, name := range registered {
				if err := tree.Register(name, func(ctx *Context) (interface{}, error) {
					return nil, nil
				}); err == nil {
					valid[name] = true
				}
			}
			if valid[missing] {
				return true
			}

			_, err := tree.Call(missing, nil)
			if !errors.IsActionNotFound(err) {
				return false
			}

			suggestion := errors.Suggestion(err)
			if len(valid) == 0 {
				return suggestion == ""
			}
			return valid[suggestion]
		},
		gen.SliceOfN(4, segment),
		segment,
	))

	properties.TestingRun(t)
}
