package statusapi

import (
	"encoding/json"
	"net/http"
)

// GetStatusHandler reports the scheduler's current queue depths and run
// state as JSON.
func (a *API) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(a.Scheduler.StatsSnapshot())
}

// GetPeersHandler reports the names currently registered in the shared
// peer registry, regardless of which executor this API instance fronts.
func (a *API) GetPeersHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(struct {
		Peers []string `json:"peers"`
	}{Peers: a.Peers.Names()})
}
