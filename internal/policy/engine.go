package policy

import (
	"context"
	"strings"
	"time"

	"github.com/conneroisu/modkit/internal/errors"
	"github.com/conneroisu/modkit/internal/interfaces"
	"github.com/conneroisu/modkit/internal/logging"
	"github.com/conneroisu/modkit/internal/relationship"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string

	// Violation carries the deny context; zero-valued on allow.
	Violation Violation
}

// Err converts a denied decision into a policy violation error for callers
// that treat denial as fatal. Allowed decisions yield nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return errors.NewPolicyViolation(
		d.Violation.Path,
		d.Violation.Sender,
		d.Violation.Receiver,
		d.Reason,
	)
}

// Engine evaluates authorization requests against configured policies.
type Engine struct {
	logger    logging.Logger
	publisher interfaces.Publisher
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(logger logging.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger.WithComponent("policy-engine")
		}
	}
}

// WithPublisher sets the event publisher that receives violation events.
func WithPublisher(publisher interfaces.Publisher) EngineOption {
	return func(e *Engine) {
		e.publisher = publisher
	}
}

// NewEngine creates a policy engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request describes one authorization check.
type Request struct {
	Kind         ActionKind
	Relationship relationship.Relationship
	Path         string
	Sender       string
	Receiver     string
}

// Authorize decides whether the request is permitted under the policy. A
// nil policy means the permissive default. On deny, the policy's violation
// callback runs synchronously exactly once before Authorize returns; its
// result does not alter the decision.
func (e *Engine) Authorize(req Request, pol *Policy) Decision {
	if pol == nil {
		pol = DefaultPolicy()
	}

	effective, excluded := pol.resolve(req.Path)
	switch {
	case excluded:
		return e.deny(req, pol, "path is excluded from the policy scope")
	case !effective.Permissions[req.Kind]:
		return e.deny(req, effective, "action kind is not permitted")
	case !effective.levelFor(req.Kind).Permits(req.Relationship):
		return e.deny(req, effective, "relationship exceeds the "+effective.levelFor(req.Kind).String()+" access level")
	}

	return Decision{Allowed: true}
}

// deny builds the deny decision, fires the callback, and publishes a
// violation event.
func (e *Engine) deny(req Request, pol *Policy, reason string) Decision {
	if pol.Reason != "" {
		reason = reason + " (" + pol.Reason + ")"
	}

	violation := Violation{
		Path:         req.Path,
		Kind:         req.Kind,
		Sender:       req.Sender,
		Receiver:     req.Receiver,
		Relationship: req.Relationship,
		Reason:       reason,
	}

	if pol.OnViolation != nil {
		pol.OnViolation(violation)
	}

	e.logger.Warn(context.Background(), nil, "communication denied",
		"path", req.Path,
		"kind", string(req.Kind),
		"sender", req.Sender,
		"receiver", req.Receiver,
		"relationship", req.Relationship.String(),
		"reason", reason,
	)

	if e.publisher != nil {
		e.publisher.Publish(interfaces.Event{
			Type:         interfaces.EventTypeViolation,
			Timestamp:    time.Now(),
			From:         req.Sender,
			To:           req.Receiver,
			Path:         req.Path,
			Relationship: req.Relationship.String(),
			Reason:       reason,
		})
	}

	return Decision{Reason: reason, Violation: violation}
}

// resolve walks the scope for the given path. It returns the effective
// policy (an override when one matches) and whether the path is excluded
// without a more specific override rescuing it.
func (p *Policy) resolve(path string) (*Policy, bool) {
	if override := p.override(path); override != nil {
		return override, false
	}

	if p.excluded(path) {
		return p, true
	}

	if len(p.Scope.Includes) > 0 && !matchesAnyPrefix(path, p.Scope.Includes) {
		return p, true
	}

	return p, false
}

// override returns the longest-prefix override matching the path, so the
// most specific configuration wins.
func (p *Policy) override(path string) *Policy {
	var best *Policy
	bestLen := -1
	for prefix, nested := range p.Scope.Overrides {
		if matchesPrefix(path, prefix) && len(prefix) > bestLen {
			best = nested
			bestLen = len(prefix)
		}
	}
	return best
}

func (p *Policy) excluded(path string) bool {
	return matchesAnyPrefix(path, p.Scope.Excludes)
}

func matchesAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if matchesPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// matchesPrefix matches whole path segments: prefix "users" covers "users"
// and "users.list" but not "users2".
func matchesPrefix(path, prefix string) bool {
	if prefix == "" {
		return false
	}
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix) && path[len(prefix)] == '.'
}
