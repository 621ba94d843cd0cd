package rest

import (
	"encoding/json"
	"net/http"
)

// stateHandler - the current session snapshot as JSON.
func (that *Server) stateHandler(w http.ResponseWriter, _ *http.Request) {
	log := that.logger.With("method", "stateHandler")

	body, err := json.Marshal(that.session.Snapshot())
	if err != nil {
		log.Error("failed to marshal snapshot", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err = w.Write(body); err != nil {
		log.Error("failed to write snapshot", "error", err)
	}
}
