// Scripted driver client: connects to a benchmark server, plays one
// session from a command script (or stdin) and prints each observation.
// Useful for smoke-testing levels and as a reference for the wire protocol
// an automated driver speaks.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skipyas0/cookenv-benchmark/internal/protocol"
)

func main() {
	var (
		url     = flag.String("url", "ws://127.0.0.1:8080/v1/ws", "server websocket url")
		agent   = flag.String("agent", "scripted-bot", "agent name")
		lvl     = flag.String("level", "", "level to request (empty = server default)")
		script  = flag.String("script", "", "command script file, one command per line (empty = stdin)")
		timeout = flag.Duration("timeout", 10*time.Second, "per-message read timeout")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "[bot] ", log.LstdFlags)

	var in io.Reader = os.Stdin
	if *script != "" {
		f, err := os.Open(*script)
		if err != nil {
			logger.Fatalf("open script: %v", err)
		}
		defer f.Close()
		in = f
	}

	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial %s: %v", *url, err)
	}
	defer conn.Close()

	send(conn, logger, protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		AgentName:       *agent,
		Level:           *lvl,
	})

	var welcome protocol.WelcomeMsg
	recv(conn, logger, *timeout, &welcome)
	logger.Printf("session %s on %s (%dx%d)", welcome.SessionID, welcome.Level, welcome.BoardWidth, welcome.BoardHeight)
	for _, w := range welcome.Warnings {
		logger.Printf("level warning: %s", w)
	}

	sc := bufio.NewScanner(in)
	var seq uint64
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seq++
		send(conn, logger, protocol.ActMsg{
			Type:            protocol.TypeAct,
			ProtocolVersion: protocol.Version,
			Seq:             seq,
			Command:         line,
		})

		var obs protocol.ObsMsg
		recv(conn, logger, *timeout, &obs)
		printObs(obs)
		if obs.GoalReached {
			logger.Printf("goal reached at time %d", obs.Tick)
			return
		}
	}
	if err := sc.Err(); err != nil {
		logger.Fatalf("read script: %v", err)
	}
}

func printObs(obs protocol.ObsMsg) {
	os.Stdout.WriteString(obs.Board + "\n")
	if obs.Code != "" {
		os.Stdout.WriteString("code: " + obs.Code + "\n")
	}
	if obs.Info != nil {
		os.Stdout.WriteString(obs.Info.Description + "\n")
	}
	b, _ := json.Marshal(struct {
		Tick      int  `json:"tick"`
		Inventory int  `json:"inventory"`
		Goal      bool `json:"goal"`
	}{obs.Tick, obs.Inventory, obs.GoalReached})
	os.Stdout.Write(append(b, '\n'))
}

func send(conn *websocket.Conn, logger *log.Logger, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		logger.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
		logger.Fatalf("write: %v", err)
	}
}

func recv(conn *websocket.Conn, logger *log.Logger, timeout time.Duration, v any) {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		logger.Fatalf("read: %v", err)
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		logger.Fatalf("decode: %v", err)
	}
	if base.Type == protocol.TypeError {
		var em protocol.ErrorMsg
		_ = json.Unmarshal(msg, &em)
		logger.Fatalf("server error %s: %s", em.Code, em.Message)
	}
	if err := json.Unmarshal(msg, v); err != nil {
		logger.Fatalf("decode %s: %v", base.Type, err)
	}
}
