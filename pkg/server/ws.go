package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/gridboard/pkg/adapter"
	"github.com/matzehuels/gridboard/pkg/autocycle"
	"github.com/matzehuels/gridboard/pkg/board"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage is one frame on the update stream. The server sends "snapshot"
// once, then "layout" for every board update and "preferences" for changes
// made by the user's other sessions. Clients may send "input" to report
// host input and "layout" to forward engine notifications.
type wsMessage struct {
	Type        string               `json:"type"`
	Session     string               `json:"session,omitempty"`
	Update      *board.Update        `json:"update,omitempty"`
	Preferences map[string]any       `json:"preferences,omitempty"`
	Version     int64                `json:"version,omitempty"`
	Kind        autocycle.InputKind  `json:"kind,omitempty"`
	Layout      []adapter.EngineItem `json:"layout,omitempty"`
	Error       string               `json:"error,omitempty"`
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	log := loggerFromContext(r.Context())
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	// gorilla/websocket forbids concurrent writes.
	var writeMu sync.Mutex
	writeMsg := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(msg)
	}

	ctx := r.Context()
	user, session := userFromContext(ctx), sessionFromContext(ctx)

	updates, unsubBoard := s.board.Subscribe()
	defer unsubBoard()
	changes, unsubPrefs := s.prefs.Hub().Subscribe(user, session)
	defer unsubPrefs()

	snap := s.snapshot()
	if err := writeMsg(wsMessage{
		Type:    "snapshot",
		Session: session,
		Update:  &board.Update{Widgets: snap.Widgets, Preset: snap.Preset},
	}); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				if err := writeMsg(wsMessage{Type: "layout", Update: &u}); err != nil {
					return
				}
			case c, ok := <-changes:
				if !ok {
					return
				}
				if err := writeMsg(wsMessage{Type: "preferences", Preferences: c.Preferences, Version: c.Version}); err != nil {
					return
				}
			}
		}
	}()
	defer close(done)

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			log.Debug("websocket closed", "session", session, "err", err)
			return
		}
		switch msg.Type {
		case "input":
			s.board.NotifyInput(msg.Kind)
		case "layout":
			if err := s.board.LayoutChanged(msg.Layout); err != nil {
				writeMsg(wsMessage{Type: "error", Error: err.Error()}) //nolint:errcheck
			}
		default:
			writeMsg(wsMessage{Type: "error", Error: "unknown message type " + msg.Type}) //nolint:errcheck
		}
	}
}
