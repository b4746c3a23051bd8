package engine

// Framer produces frames on demand. The interactive and batch loops drive
// one; tests substitute their own.
type Framer interface {
	Frame(sink Sink) error
	Apply(c Command) error
	Base() *Engine
}

// Base returns itself for the default engine framer.
func (e *Engine) Base() *Engine {
	return e
}
