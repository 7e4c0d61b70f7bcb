package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/colonyops/roost/internal/core/scan"
)

// progressBuffer is the per-client queue depth for the push transports.
// Slow consumers drop intermediate snapshots instead of blocking the
// tracker; the final snapshot always reflects current state.
const progressBuffer = 16

// subscribeProgress bridges tracker callbacks into a channel the handler
// can select on. The returned cleanup must be called on disconnect.
func (s *Server) subscribeProgress() (<-chan scan.Progress, func()) {
	ch := make(chan scan.Progress, progressBuffer)
	unsubscribe := s.app.Service.SubscribeProgress(func(p scan.Progress) {
		select {
		case ch <- p:
		default:
		}
	})
	return ch, unsubscribe
}

// handleProgressSSE streams scan progress as server-sent events. Each
// event's data field is one complete progress snapshot in JSON.
func (s *Server) handleProgressSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsubscribe := s.subscribeProgress()
	defer unsubscribe()

	// Send the current snapshot first so clients do not wait for the
	// next transition.
	if err := writeSSE(w, s.app.Service.Progress()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case p := <-ch:
			if err := writeSSE(w, p); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, p scan.Progress) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: progress\ndata: %s\n\n", payload)
	return err
}
