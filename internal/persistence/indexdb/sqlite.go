// Package indexdb keeps a queryable read-model of completed benchmark runs
// in SQLite. It is strictly a secondary index: writes are asynchronous and
// may be dropped under pressure, and it never feeds back into the
// simulation, so determinism is unaffected.
package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan RunRow
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

// RunRow is one finished (or abandoned) benchmark run.
type RunRow struct {
	SessionID  string
	Agent      string
	Level      string
	Completed  bool
	GameTime   int
	Commands   int
	WallMs     int64
	RecordedAt string
}

// BestRow is one scoreboard line: the fastest completed run per level.
type BestRow struct {
	Level    string
	Agent    string
	GameTime int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan RunRow, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			session_id TEXT PRIMARY KEY,
			agent TEXT NOT NULL,
			level TEXT NOT NULL,
			completed INTEGER NOT NULL,
			game_time INTEGER NOT NULL,
			commands INTEGER NOT NULL,
			wall_ms INTEGER NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_level_time ON runs(level, completed, game_time);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_agent ON runs(agent);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecordRun queues a run row for insertion. Drops the row if the writer
// falls behind; run logs remain the source of truth.
func (s *SQLiteIndex) RecordRun(r RunRow) {
	if s == nil || s.closed.Load() {
		return
	}
	if r.RecordedAt == "" {
		r.RecordedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case s.ch <- r:
	default:
	}
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		_, err := s.db.Exec(
			`INSERT OR REPLACE INTO runs
			 (session_id, agent, level, completed, game_time, commands, wall_ms, recorded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.SessionID, r.Agent, r.Level, boolInt(r.Completed), r.GameTime, r.Commands, r.WallMs, r.RecordedAt,
		)
		if err != nil {
			// Index write failures are non-fatal; the run log has the data.
			continue
		}
	}
}

// Scoreboard returns the fastest completed run per level.
func (s *SQLiteIndex) Scoreboard() ([]BestRow, error) {
	rows, err := s.db.Query(
		`SELECT level, agent, MIN(game_time)
		 FROM runs WHERE completed = 1
		 GROUP BY level ORDER BY level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BestRow
	for rows.Next() {
		var b BestRow
		if err := rows.Scan(&b.Level, &b.Agent, &b.GameTime); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Run fetches a single run row by session id.
func (s *SQLiteIndex) Run(sessionID string) (RunRow, bool, error) {
	var r RunRow
	var completed int
	err := s.db.QueryRow(
		`SELECT session_id, agent, level, completed, game_time, commands, wall_ms, recorded_at
		 FROM runs WHERE session_id = ?`, sessionID).
		Scan(&r.SessionID, &r.Agent, &r.Level, &completed, &r.GameTime, &r.Commands, &r.WallMs, &r.RecordedAt)
	if err == sql.ErrNoRows {
		return r, false, nil
	}
	if err != nil {
		return r, false, err
	}
	r.Completed = completed != 0
	return r, true, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
