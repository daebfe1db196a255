package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/matzehuels/gridboard/pkg/interaction"
)

func dialWS(t *testing.T, ts *httptest.Server, session string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/ws"
	header := http.Header{}
	header.Set(HeaderSessionID, session)
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until one of type typ arrives. Other frames are
// skipped since layout and preference messages interleave.
func readUntil(t *testing.T, conn *websocket.Conn, typ string) wsMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %q: %v", typ, err)
		}
		if msg.Type == typ {
			return msg
		}
	}
}

func post(t *testing.T, ts *httptest.Server, method, path, session, body string) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, ts.URL+path, bytes.NewBufferString(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set(HeaderSessionID, session)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		t.Fatalf("%s %s = %d", method, path, resp.StatusCode)
	}
}

func TestWebSocketStream(t *testing.T) {
	e := newTestEnv(t)
	ts := httptest.NewServer(e.srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts, "tab-1")

	snap := readUntil(t, conn, "snapshot")
	if snap.Session != "tab-1" {
		t.Errorf("snapshot session = %q, want tab-1", snap.Session)
	}
	if snap.Update == nil || len(snap.Update.Widgets) != 2 {
		t.Fatalf("snapshot update = %+v", snap.Update)
	}

	post(t, ts, http.MethodPost, "/api/dashboard/compact", "tab-2", "")
	msg := readUntil(t, conn, "layout")
	if msg.Update == nil || msg.Update.Source != interaction.SourceCompact {
		t.Errorf("layout update = %+v, want source %q", msg.Update, interaction.SourceCompact)
	}

	post(t, ts, http.MethodPatch, "/api/preferences", "tab-2", `{"updates":{"theme":"dark"}}`)
	for {
		msg = readUntil(t, conn, "preferences")
		if msg.Preferences["theme"] == "dark" {
			break
		}
	}
}

func TestWebSocketRejectsUnknownMessage(t *testing.T) {
	e := newTestEnv(t)
	ts := httptest.NewServer(e.srv.Handler())
	defer ts.Close()

	conn := dialWS(t, ts, "tab-1")
	readUntil(t, conn, "snapshot")

	if err := conn.WriteJSON(wsMessage{Type: "bogus"}); err != nil {
		t.Fatal(err)
	}
	msg := readUntil(t, conn, "error")
	if !strings.Contains(msg.Error, "bogus") {
		t.Errorf("error = %q, want mention of bogus", msg.Error)
	}

	if err := conn.WriteJSON(wsMessage{Type: "input", Kind: "keydown"}); err != nil {
		t.Fatal(err)
	}
	// Auto-cycle is disabled so input never pauses; the connection stays up.
	if err := conn.WriteJSON(wsMessage{Type: "bogus"}); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, "error")
}
