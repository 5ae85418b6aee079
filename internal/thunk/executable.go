package thunk

// ExecutableKind discriminates the tagged variant Design Notes §9
// recommends for dispatch in exec and _collect: Thunk | Function | Chunk |
// Literal.
type ExecutableKind int

const (
	KindThunk ExecutableKind = iota
	KindFunction
	KindChunk
	KindLiteral
)

// Executable is the tagged variant exec and collect dispatch on. Only one
// of the typed fields is valid, selected by Kind.
type Executable struct {
	Kind ExecutableKind

	Thunk    *Thunk
	Function Func
	Chunk    Chunk
	Literal  any
}

// FromThunk wraps a Thunk as an Executable.
func FromThunk(t *Thunk) Executable { return Executable{Kind: KindThunk, Thunk: t} }

// FromFunction wraps a plain, input-less Function as an Executable (spec.md
// §4.5 step 2: "For a plain function executable, invoke with no
// arguments.").
func FromFunction(f Func) Executable { return Executable{Kind: KindFunction, Function: f} }

// FromChunk wraps an already-materialized Chunk as an Executable.
func FromChunk(c Chunk) Executable { return Executable{Kind: KindChunk, Chunk: c} }

// FromLiteral wraps a plain value as an Executable.
func FromLiteral(v any) Executable { return Executable{Kind: KindLiteral, Literal: v} }
