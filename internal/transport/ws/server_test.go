package ws

import (
	"encoding/json"
	"io"
	"log"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/skipyas0/cookenv-benchmark/internal/protocol"
	"github.com/skipyas0/cookenv-benchmark/internal/sim/level"
	"github.com/skipyas0/cookenv-benchmark/internal/sim/tuning"
)

const testMaze = `#####
#^..#
#.A.#
#1..#
#####`

const testRecipe = `1 -> A = 2 (2)
Goal: 2`

func testServer(t *testing.T, runsDir string) *httptest.Server {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "level1")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "maze.txt"), []byte(testMaze), 0o644); err != nil {
		t.Fatalf("write maze: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "recipe.txt"), []byte(testRecipe), 0o644); err != nil {
		t.Fatalf("write recipe: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	lvl, err := level.Load(dir, logger)
	if err != nil {
		t.Fatalf("load level: %v", err)
	}

	s := NewServer(map[string]*level.Level{"level1": lvl}, "level1", tuning.Defaults(), logger, nil, runsDir)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendJSON(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func readInto(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := json.Unmarshal(msg, v); err != nil {
		t.Fatalf("unmarshal %s: %v", msg, err)
	}
}

func hello(t *testing.T, conn *websocket.Conn) protocol.WelcomeMsg {
	t.Helper()
	sendJSON(t, conn, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       "test-driver",
	})
	var welcome protocol.WelcomeMsg
	readInto(t, conn, &welcome)
	if welcome.Type != protocol.TypeWelcome {
		t.Fatalf("expected WELCOME, got %q", welcome.Type)
	}
	return welcome
}

func act(t *testing.T, conn *websocket.Conn, seq uint64, command string) protocol.ObsMsg {
	t.Helper()
	sendJSON(t, conn, protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Seq:             seq,
		Command:         command,
	})
	var obs protocol.ObsMsg
	readInto(t, conn, &obs)
	return obs
}

func TestHandshake(t *testing.T) {
	srv := testServer(t, "")
	conn := dial(t, srv)

	welcome := hello(t, conn)
	if welcome.SessionID == "" {
		t.Fatalf("empty session id")
	}
	if welcome.Level != "level1" {
		t.Fatalf("level = %q", welcome.Level)
	}
	if welcome.BoardWidth != 5 || welcome.BoardHeight != 5 {
		t.Fatalf("board = %dx%d", welcome.BoardWidth, welcome.BoardHeight)
	}
	if welcome.Digests.Maze == "" || welcome.Digests.Recipe == "" {
		t.Fatalf("missing digests: %+v", welcome.Digests)
	}
	if len(welcome.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", welcome.Warnings)
	}
}

func TestPlayToGoal(t *testing.T) {
	runsDir := t.TempDir()
	srv := testServer(t, runsDir)
	conn := dial(t, srv)
	welcome := hello(t, conn)

	obs := act(t, conn, 1, "interact (1,3)")
	if obs.Type != protocol.TypeObs {
		t.Fatalf("expected OBS, got %q", obs.Type)
	}
	if obs.Code != "" {
		t.Fatalf("code = %q", obs.Code)
	}
	if obs.Inventory != 1 || obs.Tick != 2 {
		t.Fatalf("after take: inventory=%d tick=%d", obs.Inventory, obs.Tick)
	}

	obs = act(t, conn, 2, "interact (2,2)")
	if obs.Code != "" {
		t.Fatalf("code = %q", obs.Code)
	}
	if !obs.GoalReached {
		t.Fatalf("goal not reached: %+v", obs)
	}
	if obs.Inventory != 2 || obs.Tick != 6 {
		t.Fatalf("after cook: inventory=%d tick=%d", obs.Inventory, obs.Tick)
	}

	// Server closes the session once the goal is reached.
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close after goal")
	}

	path := filepath.Join(runsDir, welcome.SessionID+".jsonl.zst")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("run log: %v", err)
	}
}

func TestBadCommandKeepsSessionOpen(t *testing.T) {
	srv := testServer(t, "")
	conn := dial(t, srv)
	hello(t, conn)

	sendJSON(t, conn, protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Seq:             1,
		Command:         "teleport (1,2)",
	})
	var errMsg protocol.ErrorMsg
	readInto(t, conn, &errMsg)
	if errMsg.Type != protocol.TypeError || errMsg.Code != protocol.ErrBadCommand {
		t.Fatalf("got %+v", errMsg)
	}

	obs := act(t, conn, 2, "skip")
	if obs.Type != protocol.TypeObs || obs.Tick != 1 {
		t.Fatalf("session broken after bad command: %+v", obs)
	}
}

func TestInfoCostsNoTime(t *testing.T) {
	srv := testServer(t, "")
	conn := dial(t, srv)
	hello(t, conn)

	obs := act(t, conn, 1, "info")
	if obs.Tick != 0 {
		t.Fatalf("info advanced time to %d", obs.Tick)
	}
	if obs.Info == nil {
		t.Fatalf("missing info payload")
	}
}

func TestRejectsNonHelloFirstMessage(t *testing.T) {
	srv := testServer(t, "")
	conn := dial(t, srv)

	sendJSON(t, conn, protocol.ActMsg{
		Type:            protocol.TypeAct,
		ProtocolVersion: protocol.Version,
		Seq:             1,
		Command:         "skip",
	})
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected close")
	}
}
