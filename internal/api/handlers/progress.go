package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// The API is meant for local tooling, not browsers on foreign origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressFrame is one message on the progress websocket. Type is
// "progress" for per-repetition updates, then "result" or "error".
type ProgressFrame struct {
	Type       string             `json:"type"`
	Repetition int                `json:"repetition,omitempty"`
	SafeF      float64            `json:"safe_f,omitempty"`
	CAR25      float64            `json:"car25,omitempty"`
	Response   *NormalizeResponse `json:"response,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// NormalizeStream handles GET /api/normalize/ws. The client sends one
// NormalizeRequest as JSON; the server streams a progress frame per
// completed repetition and a final result (or error) frame, then closes.
func (h *NormalizeHandler) NormalizeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Error("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	var req NormalizeRequest
	if err := conn.ReadJSON(&req); err != nil {
		conn.WriteJSON(ProgressFrame{Type: "error", Error: "invalid request: " + err.Error()})
		return
	}

	// Progress callbacks are serialized by the engine, and the final
	// frame is written only after the run returns, so no two writes
	// race on the connection.
	progress := func(repetition int, safeF, car25 float64) {
		frame := ProgressFrame{
			Type:       "progress",
			Repetition: repetition,
			SafeF:      safeF,
			CAR25:      car25,
		}
		if err := conn.WriteJSON(frame); err != nil {
			h.log.WithError(err).Warn("Failed to write progress frame")
		}
	}

	resp, err := h.run(&req, progress)
	if err != nil {
		conn.WriteJSON(ProgressFrame{Type: "error", Error: err.Error()})
		return
	}

	conn.WriteJSON(ProgressFrame{Type: "result", Response: resp})
}
