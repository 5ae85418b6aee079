package scheduler

// Stats is a point-in-time, read-only snapshot of an executor's queue and
// run state, meant for an external debug/status surface (spec.md §1 keeps
// the driver/demo harness out of the core, but a snapshot type is cheap to
// expose alongside it).
type Stats struct {
	Name          string `json:"name"`
	Role          string `json:"role"`
	RootTask      string `json:"root_task,omitempty"`
	ReservedLen   int    `json:"reserved_len"`
	SharedLen     int    `json:"shared_len"`
	ShareLimit    int    `json:"share_limit"`
	HelpThreshold int    `json:"help_threshold"`
	StolenCount   int    `json:"stolen_count"`
	ExpandedCount int    `json:"expanded_count"`
	PeerCount     int    `json:"peer_count"`
}

// Stats takes a snapshot of the scheduler's current queues and counters.
// Safe to call concurrently with the cooperative loop only insofar as the
// loop itself is single-threaded per spec.md §5; callers driving this from
// a separate goroutine (e.g. the status HTTP handler) must not overlap it
// with Keep/Reserve/Steal/Exec/Release on the same Scheduler.
func (s *Scheduler) StatsSnapshot() Stats {
	return Stats{
		Name:          s.Name,
		Role:          string(s.Role),
		RootTask:      s.rootTask.String(),
		ReservedLen:   s.reserved.Len(),
		SharedLen:     s.shared.Len(),
		ShareLimit:    s.shareLimit,
		HelpThreshold: s.helpThreshold,
		StolenCount:   len(s.stolen),
		ExpandedCount: len(s.expanded),
		PeerCount:     len(s.peers.Names()),
	}
}
