package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/gridironsim/playoff-odds/internal/api/respond"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origins are vetted by the CORS middleware ahead of the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	wsPollInterval = 500 * time.Millisecond
	wsWriteWait    = 10 * time.Second
)

// WatchSimulation streams job snapshots over a websocket until the job
// reaches a terminal state. The final frame carries the full result for
// completed jobs.
func (h *Handler) WatchSimulation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	job, err := h.jobs.Get(id)
	if err != nil {
		respond.WriteError(w, http.StatusNotFound, "JOB_NOT_FOUND", "No simulation job with that id")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "job_id", id, "error", err)
		return
	}
	defer conn.Close()

	// Drain client frames so close messages are processed.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPollInterval)
	defer ticker.Stop()

	lastProgress := -1
	for {
		snap := job.Snapshot()
		if snap.Progress != lastProgress || snap.Status.Terminal() {
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(snap); err != nil {
				return
			}
			lastProgress = snap.Progress
		}
		if snap.Status.Terminal() {
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(snap.Status)))
			return
		}

		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}
