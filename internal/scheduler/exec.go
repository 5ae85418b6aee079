package scheduler

import (
	"errors"

	"shardflow/internal/store"
	"shardflow/internal/thunk"
	"shardflow/internal/trace"
)

// Exec implements spec.md §4.5. Preconditions: task is runnable (checked by
// the caller via Reserve/runnable). wasStolen tells result placement
// whether the result must become cluster-visible.
func (s *Scheduler) Exec(task thunk.TaskId, wasStolen bool) (bool, error) {
	if s.meta.HasResult(task) {
		return true, nil
	}

	t, isThunk := s.graph.Node(task)
	if !isThunk {
		return false, thunkFailuref(task, "not a registered thunk")
	}

	value, cleanup, err := s.executeExecutable(thunk.FromThunk(t))
	if err != nil {
		return false, err
	}

	if !t.GetResult {
		cache := t.Cache
		if t.Persist {
			cache = true
		}
		c, err := s.pool.ToChunk(value, t.Persist, cache)
		if err != nil {
			return false, err
		}
		value = c
	}

	if err := s.placeResult(task, value, wasStolen); err != nil {
		return false, err
	}

	for _, fn := range cleanup {
		if err := fn(); err != nil {
			return false, err
		}
	}

	trace.SafeRecord(s.trace, trace.TraceEvent{Kind: trace.EventExecuted, TaskID: task.String()})
	return true, nil
}

// executeExecutable dispatches on the tagged Executable variant (Design
// Notes §9). Only KindThunk arises through Exec's graph-driven call site
// (every task reaching the scheduler has a TaskId, hence a Thunk); the
// Function, Chunk and Literal branches have no caller in this package.
//
// It returns the raw (unboxed) value plus a list of deferred cleanups for
// non-persistent Chunk inputs (spec.md §4.5 step 5), which the caller runs
// only after the result has been placed.
func (s *Scheduler) executeExecutable(exe thunk.Executable) (any, []func() error, error) {
	switch exe.Kind {
	case thunk.KindFunction:
		v, err := exe.Function(nil)
		if err != nil {
			return nil, nil, thunkFailuref("", "%s", err)
		}
		return v, nil, nil

	case thunk.KindChunk:
		v, err := s.pool.Collect(exe.Chunk)
		return v, nil, err

	case thunk.KindLiteral:
		return exe.Literal, nil, nil

	default: // KindThunk
		return s.execThunk(exe.Thunk)
	}
}

// execThunk builds the argument vector for t and invokes its function,
// collecting cleanup actions for its Thunk inputs along the way.
func (s *Scheduler) execThunk(t *thunk.Thunk) (any, []func() error, error) {
	args := make([]any, len(t.Inputs))
	var cleanup []func() error

	for i, in := range t.Inputs {
		switch in.Kind {
		case thunk.InputChunk:
			if t.Meta {
				args[i] = in.Chunk
				continue
			}
			v, err := s.pool.Collect(in.Chunk)
			if err != nil {
				return nil, nil, err
			}
			args[i] = v

		case thunk.InputLiteral:
			args[i] = in.Literal

		default: // InputThunk
			v, fn := s.collectThunkInput(t, in.TaskId)
			if fn != nil {
				cleanup = append(cleanup, fn)
			}
			args[i] = v
		}
	}

	v, err := t.F(args)
	if err != nil {
		return nil, nil, thunkFailuref(t.Id, "%s", err)
	}
	return v, cleanup, nil
}

// collectThunkInput resolves a Thunk-kind input's stored value, honoring
// Meta (pass Chunks through uncollected), and returns a cleanup closure for
// §4.5 step 5 when the collected value is a non-persistent Chunk.
func (s *Scheduler) collectThunkInput(parent *thunk.Thunk, inputId thunk.TaskId) (any, func() error) {
	stored, ok := s.meta.GetResult(inputId)
	if !ok {
		return nil, nil
	}

	c, isChunk := stored.(thunk.Chunk)
	if !isChunk {
		return stored, nil
	}
	if parent.Meta {
		return c, nil
	}

	value, err := s.pool.Collect(c)
	if err != nil {
		return nil, nil
	}
	if c.Persist {
		return value, nil
	}

	ndeps := s.graph.DependentCount(inputId)
	return value, func() error { return s.releaseInputChunk(inputId, c, ndeps) }
}

// releaseInputChunk implements spec.md §4.5 step 5: a single-dependent
// input's chunk is deleted immediately; a multi-dependent input decrements
// its stored refcount and deletes only on the transition to zero. A
// multi-dependent input published locally via SetResult (rather than
// exported with an initial refcount) has no stored refcount at all; that
// absence means every consumer is local and none of the others has claimed
// a share of cleanup, so it is treated the same as the single-dependent
// case rather than as store corruption.
func (s *Scheduler) releaseInputChunk(inputId thunk.TaskId, c thunk.Chunk, ndeps int) error {
	if ndeps > 1 {
		n, err := s.meta.DecrResultRefcount(inputId)
		if err != nil && !errors.Is(err, store.ErrMetaMissing) {
			return err
		}
		if err == nil && n > 0 {
			return nil
		}
	}
	if err := s.pool.PoolDelete(c.Handle); err != nil {
		return err
	}
	trace.SafeRecord(s.trace, trace.TraceEvent{Kind: trace.EventChunkDeleted, TaskID: inputId.String()})
	return nil
}

// placeResult implements spec.md §4.5 step 4: a stolen task's result must
// become cluster-visible (migrating an in-process chunk to disk first);
// otherwise it is published local-only.
func (s *Scheduler) placeResult(task thunk.TaskId, value any, wasStolen bool) error {
	if !wasStolen {
		return s.meta.SetResult(task, value)
	}

	if c, isChunk := value.(thunk.Chunk); isChunk && c.Location == thunk.InProcess {
		migrated, err := s.pool.ChunkToDisk(c)
		if err != nil {
			return err
		}
		value = migrated
	}
	return s.meta.ExportResult(task, value, s.graph.DependentCount(task))
}
