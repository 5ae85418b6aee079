package thunk

// Func is a pure user function a Thunk wraps. It receives the collected
// values of its inputs or, when Meta is true, any Chunk-valued input as
// its uncollected Chunk handle (spec.md §4.5 step 2).
type Func func(args []any) (any, error)

// InputKind discriminates what an Input actually refers to.
type InputKind int

const (
	// InputThunk refers to another Thunk by TaskId; it must be resolved
	// through the metadata store before use.
	InputThunk InputKind = iota
	// InputChunk is a literal, already-materialized Chunk handed in
	// directly (e.g. a root-level argument), not produced by a Thunk in
	// this DAG.
	InputChunk
	// InputLiteral is a plain Go value that passes through exec
	// unchanged.
	InputLiteral
)

// Input is one element of a Thunk's ordered input list (spec.md §3).
type Input struct {
	Kind    InputKind
	TaskId  TaskId // valid iff Kind == InputThunk
	Chunk   Chunk  // valid iff Kind == InputChunk
	Literal any    // valid iff Kind == InputLiteral
}

// ThunkInput builds an Input referencing another Thunk's result.
func ThunkInput(id TaskId) Input { return Input{Kind: InputThunk, TaskId: id} }

// ChunkInput builds an Input wrapping an already-materialized Chunk.
func ChunkInput(c Chunk) Input { return Input{Kind: InputChunk, Chunk: c} }

// LiteralInput builds an Input wrapping a plain value.
func LiteralInput(v any) Input { return Input{Kind: InputLiteral, Literal: v} }

// Thunk is an immutable DAG node: a pure function, ordered inputs, and the
// four behavior flags from spec.md §3.
type Thunk struct {
	Id TaskId

	F      Func
	Inputs []Input

	// Meta, if true, means F receives Chunk-valued inputs as Chunk handles
	// rather than their collected (materialized) values.
	Meta bool
	// GetResult, if false, means the scheduler wraps F's result into a
	// Chunk before publishing it.
	GetResult bool
	// Persist and Cache influence chunk retention (spec.md §4.5).
	Persist bool
	Cache   bool
}

// ThunkInputs returns the TaskIds of this thunk's Thunk-kind inputs, in
// order. Chunk and Literal inputs are skipped, matching keep's "literals
// and Chunks are skipped" recursion rule (spec.md §4.2).
func (t *Thunk) ThunkInputs() []TaskId {
	out := make([]TaskId, 0, len(t.Inputs))
	for _, in := range t.Inputs {
		if in.Kind == InputThunk {
			out = append(out, in.TaskId)
		}
	}
	return out
}
