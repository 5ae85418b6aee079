// Command executor runs a small in-process cluster of Scheduler instances
// against a hand-built demo DAG, cooperatively stepping each one (reserve,
// steal, expand, exec, release) until the root result is published, and
// serves a read-only status endpoint per executor over HTTP.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"shardflow/internal/config"
	"shardflow/internal/peer"
	"shardflow/internal/pool"
	"shardflow/internal/scheduler"
	"shardflow/internal/statusapi"
	"shardflow/internal/store"
	"shardflow/internal/thunk"
	"shardflow/internal/trace"
)

func main() {
	n := flag.Int("executors", 3, "number of in-process executors")
	chainLen := flag.Int("chain", 64, "length of the demo summation chain")
	statusHost := flag.String("status-host", "localhost", "status API bind host")
	statusPort := flag.Int("status-port", 8080, "base port for the first executor's status API (each subsequent executor binds port+i)")
	boltPath := flag.String("bolt", "", "if set, back the metadata store with a bbolt file at this path instead of memory")
	diskPool := flag.String("disk-pool", "", "if set, back the chunk pool with a disk directory instead of memory")
	shareLimit := flag.Int("share-limit", 64, "shared deque capacity per executor")
	helpThreshold := flag.Int("help-threshold", 32, "shared deque occupancy above which an executor stops offering new work")
	flag.Parse()

	meta, err := buildStore(*boltPath)
	if err != nil {
		log.Fatalf("building metadata store: %v", err)
	}
	pl, err := buildPool(*diskPool)
	if err != nil {
		log.Fatalf("building chunk pool: %v", err)
	}

	reg := peer.NewRegistry()
	root, nodes := buildChain(*chainLen)

	executors := make([]*scheduler.Scheduler, *n)
	recorders := make([]*trace.Recorder, *n)
	for i := range executors {
		rec := trace.NewRecorder()
		cfg := config.Config{
			Name:          fmt.Sprintf("executor%d", i),
			Role:          config.RoleExecutor,
			ShareLimit:    *shareLimit,
			HelpThreshold: *helpThreshold,
		}
		executors[i] = scheduler.New(cfg, meta, pl, reg, rec)
		recorders[i] = rec

		if err := executors[i].Init(root.Id, nodes); err != nil {
			log.Fatalf("%s: Init: %v", cfg.Name, err)
		}

		api := &statusapi.API{
			Address:   *statusHost,
			Port:      *statusPort + i,
			Scheduler: executors[i],
			Peers:     reg,
		}
		go func(name string, port int) {
			log.Printf("%s: status API listening on %s:%d", name, *statusHost, port)
			if err := api.Start(); err != nil {
				log.Printf("%s: status API stopped: %v", name, err)
			}
		}(cfg.Name, *statusPort+i)
	}

	executors[0].Keep(root.Id, *chainLen+2, true)

	log.Printf("running a %d-term summation chain across %d executors", *chainLen, *n)
	start := time.Now()
	for {
		if v, ok := meta.GetResult(root.Id); ok {
			log.Printf("root %q = %v (elapsed %s)", root.Id, v, time.Since(start))
			if hash, err := traceHash(executors[0].GraphHash(), recorders); err != nil {
				log.Printf("canonical trace hash: %v", err)
			} else {
				log.Printf("canonical trace hash: %s", hash)
			}
			return
		}
		progressed := false
		for _, e := range executors {
			did, err := step(e, reg.Names(), *chainLen+2)
			if err != nil {
				log.Fatalf("%s: thunk failed, aborting run: %v", e.Name, err)
			}
			if did {
				progressed = true
			}
		}
		if !progressed {
			time.Sleep(time.Millisecond)
		}
	}
}

// traceHash merges every executor's recorded events into one ExecutionTrace
// stamped with graphHash and returns its canonical sha256 hash.
// Canonicalize sorts events into a total order independent of which
// executor recorded them or in what wall-clock order; the set of events
// itself still depends on which executor stole which task, so two runs
// with several executors can hash differently.
func traceHash(graphHash string, recorders []*trace.Recorder) (string, error) {
	tr := trace.ExecutionTrace{GraphHash: graphHash}
	for _, rec := range recorders {
		tr.Events = append(tr.Events, rec.Snapshot()...)
	}
	return tr.Hash()
}

func buildStore(boltPath string) (store.Store, error) {
	if boltPath == "" {
		return store.NewMemoryStore(), nil
	}
	return store.NewBoltStore(boltPath, 0o600)
}

func buildPool(dir string) (pool.Pool, error) {
	if dir == "" {
		return pool.NewMemoryPool(), nil
	}
	return pool.NewDiskPool(dir)
}

// step performs one unit of cooperative scheduling work for e: reserve,
// fall back to stealing from a peer (including itself, since a lone
// executor must be able to reclaim work it offered to its own shared
// deque), expand an unexpanded task, or execute and release a runnable
// one. Mirrors spec.md §2's per-executor loop; the real production driver
// loop (process lifecycle, crash recovery) is out of scope (spec.md §1).
//
// It only calls Exec once IsRunnable confirms every input already has a
// result — Reserve's forced-progress fallback can otherwise hand back a
// task that is neither unexpanded nor runnable, and calling Exec on that
// would surface a spurious argument-type failure indistinguishable from a
// genuine user thunk error. With that precondition enforced here, any
// error Exec does return is a real, fatal spec.md §7 UserThunkFailure, and
// the caller must abort the run rather than retry.
func step(e *scheduler.Scheduler, peerNames []string, depth int) (bool, error) {
	task := e.Reserve()
	stolen := false
	actionable := task != scheduler.NoTask && (!e.IsExpanded(task) || e.IsRunnable(task))

	if !actionable {
		for _, name := range peerNames {
			if st := e.Steal(name); st != scheduler.NoTask {
				task = st
				stolen = true
				actionable = true
				break
			}
		}
	}
	if !actionable {
		return false, nil
	}

	if !e.IsExpanded(task) {
		e.Keep(task, depth, true)
		return true, nil
	}

	done, err := e.Exec(task, stolen)
	if err != nil {
		return false, err
	}
	if done {
		e.Release(task, true)
	}
	return true, nil
}

// buildChain builds a strictly linear summation chain of n literal ones,
// the demo shape used by the straight-chain scenario (spec.md §8.1).
func buildChain(n int) (*thunk.Thunk, []*thunk.Thunk) {
	acc := &thunk.Thunk{
		Id:        thunk.MustTaskId("demo-chain-leaf-0"),
		F:         func(args []any) (any, error) { return 1, nil },
		GetResult: true,
	}
	nodes := []*thunk.Thunk{acc}
	for i := 1; i < n; i++ {
		leaf := &thunk.Thunk{
			Id:        thunk.MustTaskId(fmt.Sprintf("demo-chain-leaf-%d", i)),
			F:         func(args []any) (any, error) { return 1, nil },
			GetResult: true,
		}
		prev := acc
		acc = &thunk.Thunk{
			Id: thunk.MustTaskId(fmt.Sprintf("demo-chain-acc-%d", i)),
			F: func(args []any) (any, error) {
				a, ok1 := args[0].(int)
				b, ok2 := args[1].(int)
				if !ok1 || !ok2 {
					return nil, fmt.Errorf("demo chain: non-int args %#v", args)
				}
				return a + b, nil
			},
			Inputs:    []thunk.Input{thunk.ThunkInput(prev.Id), thunk.ThunkInput(leaf.Id)},
			GetResult: true,
		}
		nodes = append(nodes, leaf, acc)
	}
	return acc, nodes
}
