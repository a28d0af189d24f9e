package dispatch

// Context is the ephemeral execution context shared by every handler in a
// single Call. It is owned exclusively by the dispatch call that created it
// and discarded on completion.
type Context struct {
	// Payload is the caller-supplied value. Handlers may reassign it; the
	// new value is observed by every handler later in the chain.
	Payload interface{}

	// LastResult holds the return value of the most recently executed
	// handler. It is what Call ultimately returns.
	LastResult interface{}

	// Path is the ordered sequence of segment names being dispatched.
	Path []string

	// Cursor is the index of the segment currently being visited.
	Cursor int
}

// Segment returns the segment name under the cursor, or "" when the cursor
// has advanced past the end of the path.
func (c *Context) Segment() string {
	if c.Cursor < 0 || c.Cursor >= len(c.Path) {
		return ""
	}
	return c.Path[c.Cursor]
}

// Handler processes one node of an action path. Its return value becomes
// the context's LastResult; a non-nil error halts the chain.
type Handler func(ctx *Context) (interface{}, error)
