// Package statusapi is a read-only debug surface over a running executor's
// Scheduler: queue depths, run state, registered peers. It never mutates
// scheduler state and never sits on the cooperative loop's hot path; it
// exists purely for operators poking at a running process (spec.md §1
// excludes the driver/process-management layer, but a status endpoint is
// orthogonal to that and a natural fit for the demo harness).
package statusapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shardflow/internal/peer"
	"shardflow/internal/scheduler"
)

// API wires a Scheduler (and the peer registry it shares) behind an HTTP
// router, addressed by a plain Address/Port pair.
type API struct {
	Address   string
	Port      int
	Scheduler *scheduler.Scheduler
	Peers     *peer.Registry
	Router    *chi.Mux
}

func (a *API) initRouter() {
	a.Router = chi.NewRouter()
	a.Router.Route("/status", func(r chi.Router) {
		r.Get("/", a.GetStatusHandler)
	})
	a.Router.Route("/peers", func(r chi.Router) {
		r.Get("/", a.GetPeersHandler)
	})
}

// Start builds the router and blocks serving it.
func (a *API) Start() error {
	a.initRouter()
	return http.ListenAndServe(fmt.Sprintf("%s:%d", a.Address, a.Port), a.Router)
}
