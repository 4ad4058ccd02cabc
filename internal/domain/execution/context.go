package execution

// Context is the capability an execution needs from its environment. Exactly
// one Context is bound per execution and it owns that execution's Memory.
//
// Implementations must tolerate Emit and Read being called from whichever
// goroutine drives the engine, while transport events that feed Read arrive on
// a different goroutine.
type Context interface {
	// Memory returns the variable bindings currently in scope.
	Memory() *Memory
	// SetMemory replaces the bindings in scope, e.g. when entering or leaving a block.
	SetMemory(memory *Memory)
	// Emit writes one line of program output. It never blocks on the engine's behalf.
	Emit(text string)
	// Read returns the next input value. Adapters decide whether it blocks,
	// fails, or falls back to def when nothing is available.
	Read(def string) (string, error)
}
