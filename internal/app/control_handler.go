// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/relabs-tech/glove_computer/internal/telemetry"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // dashboard is served from the same box, often by IP
	},
}

// WSMessage is a request from the dashboard's control socket.
type WSMessage struct {
	Action string `json:"action"` // reset
}

type WSResponse struct {
	Type    string `json:"type"` // ack, error
	Action  string `json:"action,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleControlWS serves /ws/control. Each message is answered with an
// ack or an error; the connection stays open until the client leaves.
func (s *webServer) handleControlWS(w http.ResponseWriter, r *http.Request) {
	log := s.log.With("remote", r.RemoteAddr)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("control: websocket upgrade error", "error", err)
		return
	}
	defer conn.Close()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("control: websocket read error", "error", err)
			}
			return
		}

		var resp WSResponse
		switch msg.Action {
		case telemetry.CommandReset:
			if err := s.reset(); err != nil {
				log.Warn("control: reset failed", "error", err)
				resp = WSResponse{Type: "error", Action: msg.Action, Message: err.Error()}
				break
			}
			log.Info("control: reset requested")
			resp = WSResponse{Type: "ack", Action: msg.Action}
		default:
			resp = WSResponse{Type: "error", Action: msg.Action, Message: "unknown action"}
		}

		if err := conn.WriteJSON(resp); err != nil {
			log.Debug("control: websocket write error", "error", err)
			return
		}
	}
}
