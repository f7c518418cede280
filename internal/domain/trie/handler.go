package trie

// EmitHandler receives every match found during a scan. Returning true
// accepts the emit; with StopOnHit configured, the first accepted emit ends
// the scan.
type EmitHandler interface {
	Emit(emit Emit) bool
}

// EmitHandlerFunc adapts a function to EmitHandler.
type EmitHandlerFunc func(emit Emit) bool

// Emit calls f(emit).
func (f EmitHandlerFunc) Emit(emit Emit) bool {
	return f(emit)
}

// StatefulEmitHandler is an EmitHandler that accumulates the emits it
// accepts. ParseText post-processes the accumulated list.
type StatefulEmitHandler interface {
	EmitHandler
	Emits() []Emit
}

// EmitCollector is the accumulator shared by stateful handlers. Embed it and
// call AddEmit from the Emit method for the emits to keep.
type EmitCollector struct {
	emits []Emit
}

// AddEmit appends emit to the collected list.
func (c *EmitCollector) AddEmit(emit Emit) {
	c.emits = append(c.emits, emit)
}

// Emits returns the collected emits in the order they were added.
func (c *EmitCollector) Emits() []Emit {
	return c.emits
}

// DefaultEmitHandler accepts and collects every emit.
type DefaultEmitHandler struct {
	EmitCollector
}

// NewDefaultEmitHandler returns an empty DefaultEmitHandler.
func NewDefaultEmitHandler() *DefaultEmitHandler {
	return &DefaultEmitHandler{}
}

// Emit collects emit and accepts it.
func (h *DefaultEmitHandler) Emit(emit Emit) bool {
	h.AddEmit(emit)
	return true
}
