// Package ws serves benchmark sessions over websocket. Each connection
// gets its own Game instance built fresh from an immutable level, so any
// number of driver sessions run in parallel with no shared simulation
// state; one command is processed to completion before the next is read.
package ws

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skipyas0/cookenv-benchmark/internal/persistence/indexdb"
	"github.com/skipyas0/cookenv-benchmark/internal/persistence/runlog"
	"github.com/skipyas0/cookenv-benchmark/internal/protocol"
	"github.com/skipyas0/cookenv-benchmark/internal/sim/game"
	"github.com/skipyas0/cookenv-benchmark/internal/sim/level"
	"github.com/skipyas0/cookenv-benchmark/internal/sim/tuning"
)

type Server struct {
	levels       map[string]*level.Level
	defaultLevel string
	tune         tuning.Tuning
	log          *log.Logger

	idx     *indexdb.SQLiteIndex // optional
	runsDir string               // "" disables run logs

	upgrader websocket.Upgrader
	seq      atomic.Uint64
	active   atomic.Int64
}

func NewServer(levels map[string]*level.Level, defaultLevel string, tune tuning.Tuning, logger *log.Logger, idx *indexdb.SQLiteIndex, runsDir string) *Server {
	return &Server{
		levels:       levels,
		defaultLevel: defaultLevel,
		tune:         tune,
		log:          logger,
		idx:          idx,
		runsDir:      runsDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if s.active.Add(1) > int64(s.tune.MaxSessions) {
			s.active.Add(-1)
			s.closeWith(conn, "session limit reached")
			return
		}
		defer s.active.Add(-1)

		s.serveSession(conn)
	}
}

func (s *Server) serveSession(conn *websocket.Conn) {
	sess, ok := s.handshake(conn)
	if !ok {
		return
	}
	defer sess.finish(s)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(time.Duration(s.tune.ReadTimeoutS) * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.Type != protocol.TypeAct {
			s.writeJSON(conn, protocol.ErrorMsg{
				Type:            protocol.TypeError,
				ProtocolVersion: protocol.Version,
				Code:            protocol.ErrProtoBadRequest,
				Message:         "expected ACT",
			})
			continue
		}
		var act protocol.ActMsg
		if err := json.Unmarshal(msg, &act); err != nil || act.ProtocolVersion != protocol.Version {
			s.writeJSON(conn, protocol.ErrorMsg{
				Type:            protocol.TypeError,
				ProtocolVersion: protocol.Version,
				Seq:             act.Seq,
				Code:            protocol.ErrProtoBadRequest,
			})
			continue
		}

		cmd, err := protocol.ParseCommand(act.Command)
		if err != nil {
			s.writeJSON(conn, protocol.ErrorMsg{
				Type:            protocol.TypeError,
				ProtocolVersion: protocol.Version,
				Seq:             act.Seq,
				Code:            protocol.ErrBadCommand,
				Message:         err.Error(),
			})
			continue
		}

		obs := sess.apply(act.Seq, cmd)
		if !s.writeJSON(conn, obs) {
			return
		}
		if obs.GoalReached {
			return
		}
	}
}

type session struct {
	id      string
	agent   string
	lvlName string
	g       *game.Game
	rlog    *runlog.Writer

	started  time.Time
	commands int
	done     bool
}

func (s *Server) handshake(conn *websocket.Conn) (*session, bool) {
	_ = conn.SetReadDeadline(time.Now().Add(time.Duration(s.tune.HandshakeTimeoutS) * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, false
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		s.closeWith(conn, "expected HELLO")
		return nil, false
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil || hello.ProtocolVersion != protocol.Version {
		s.closeWith(conn, "bad protocol_version")
		return nil, false
	}
	if hello.AgentName == "" {
		hello.AgentName = "agent"
	}

	lvlName := hello.Level
	if lvlName == "" {
		lvlName = s.defaultLevel
	}
	lvl, ok := s.levels[lvlName]
	if !ok {
		s.closeWith(conn, fmt.Sprintf("unknown level %q", lvlName))
		return nil, false
	}

	g, err := game.New(lvl, s.log)
	if err != nil {
		s.closeWith(conn, err.Error())
		return nil, false
	}

	sess := &session{
		id:      fmt.Sprintf("run_%d_%d", s.seq.Add(1), time.Now().UnixNano()),
		agent:   hello.AgentName,
		lvlName: lvlName,
		g:       g,
		started: time.Now(),
	}
	if s.runsDir != "" {
		w, err := runlog.Create(
			filepath.Join(s.runsDir, sess.id+".jsonl.zst"),
			runlog.Header{Level: lvlName, MazeDigest: lvl.Digests.Maze},
		)
		if err != nil {
			s.log.Printf("session %s: run log disabled: %v", sess.id, err)
		} else {
			sess.rlog = w
		}
	}

	welcome := protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		SessionID:       sess.id,
		Level:           lvlName,
		BoardWidth:      lvl.Width,
		BoardHeight:     lvl.Height,
		Digests: protocol.LevelDigests{
			Maze:    lvl.Digests.Maze,
			Recipe:  lvl.Digests.Recipe,
			Mapping: lvl.Digests.Mapping,
			Desc:    lvl.Digests.Desc,
		},
		Warnings: lvl.Validate(),
	}
	if !s.writeJSON(conn, welcome) {
		return nil, false
	}
	return sess, true
}

// apply executes one parsed command against the session's game and builds
// the observation. info costs no game time; everything else costs exactly
// what the simulation charges.
func (sess *session) apply(seq uint64, cmd protocol.Command) protocol.ObsMsg {
	g := sess.g
	var res game.StepResult
	var info *protocol.InfoObs

	switch cmd.Kind {
	case protocol.CmdUp:
		res = g.Move(game.North)
	case protocol.CmdDown:
		res = g.Move(game.South)
	case protocol.CmdLeft:
		res = g.Move(game.West)
	case protocol.CmdRight:
		res = g.Move(game.East)
	case protocol.CmdInteract:
		res = g.Interact()
	case protocol.CmdInteractAt:
		res, _ = g.AutoInteract(cmd.X, cmd.Y)
	case protocol.CmdSkip:
		res = g.Skip()
	case protocol.CmdDrop:
		res = g.Drop()
	case protocol.CmdInfo:
		res = currentResult(g)
		info = &protocol.InfoObs{
			Description: g.Level().Desc,
			Mapping:     g.Level().Mapping,
		}
	}

	if cmd.Kind != protocol.CmdInfo {
		sess.commands++
		if sess.rlog != nil {
			_ = sess.rlog.Write(runlog.Entry{
				Seq:     seq,
				Command: cmd.String(),
				Code:    string(res.Code),
				Time:    res.Time,
				Goal:    res.Goal,
				Digest:  g.StateDigest(),
			})
		}
	}
	if res.Goal {
		sess.done = true
	}

	return buildObs(g, seq, res, info)
}

func buildObs(g *game.Game, seq uint64, res game.StepResult, info *protocol.InfoObs) protocol.ObsMsg {
	obs := protocol.ObsMsg{
		Type:            protocol.TypeObs,
		ProtocolVersion: protocol.Version,
		Seq:             seq,
		Tick:            res.Time,
		Board:           g.Board(),
		Inventory:       res.Inventory,
		Code:            string(res.Code),
		GoalReached:     res.Goal,
		Info:            info,
	}
	if res.Inventory != 0 {
		id := fmt.Sprintf("%d", res.Inventory)
		if name := g.Level().DisplayName(id); name != id {
			obs.InventoryName = name
		}
	}
	for _, a := range g.Appliances() {
		obs.Appliances = append(obs.Appliances, protocol.ApplianceObs{
			ID:        a.ID,
			Pos:       [2]int{a.X, a.Y},
			Phase:     a.Phase,
			Contents:  a.Contents,
			Remaining: a.Remaining,
			Progress:  a.Progress,
			Output:    a.Output,
		})
	}
	for _, d := range g.Dispensers() {
		obs.Dispensers = append(obs.Dispensers, protocol.DispenserObs{
			ID:        d.ID,
			Pos:       [2]int{d.X, d.Y},
			Available: d.Available,
			Remaining: d.Remaining,
		})
	}
	return obs
}

func currentResult(g *game.Game) game.StepResult {
	return game.StepResult{
		X:         g.Player.X,
		Y:         g.Player.Y,
		Facing:    g.Player.Facing,
		Inventory: g.Player.Holding,
		Time:      g.Player.Time,
		Goal:      g.GoalReached(),
	}
}

func (sess *session) finish(s *Server) {
	if sess.rlog != nil {
		_ = sess.rlog.Close()
	}
	if s.idx != nil {
		s.idx.RecordRun(indexdb.RunRow{
			SessionID: sess.id,
			Agent:     sess.agent,
			Level:     sess.lvlName,
			Completed: sess.done,
			GameTime:  sess.g.Player.Time,
			Commands:  sess.commands,
			WallMs:    time.Since(sess.started).Milliseconds(),
		})
	}
	s.log.Printf("session %s: level=%s completed=%v time=%d commands=%d",
		sess.id, sess.lvlName, sess.done, sess.g.Player.Time, sess.commands)
}

func (s *Server) writeJSON(conn *websocket.Conn, v any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	_ = conn.SetWriteDeadline(time.Now().Add(time.Duration(s.tune.WriteTimeoutS) * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b) == nil
}

func (s *Server) closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason),
		time.Now().Add(time.Second))
}
