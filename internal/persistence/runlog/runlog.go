// Package runlog records every executed command of a benchmark run as
// zstd-compressed JSONL, one file per session. cmd/replay feeds a run log
// back through a fresh game to verify the determinism guarantee.
package runlog

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Header is the first entry of every run log.
type Header struct {
	Level      string `json:"level"`
	MazeDigest string `json:"maze_digest,omitempty"`
	StartedAt  string `json:"started_at"`
}

// Entry is one executed command and the state it produced.
type Entry struct {
	Seq     uint64 `json:"seq"`
	Command string `json:"command"`
	Code    string `json:"code,omitempty"`
	Time    int    `json:"time"`
	Goal    bool   `json:"goal,omitempty"`
	Digest  string `json:"digest"`
}

type Writer struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Create opens a run log at path and writes the header.
func Create(path string, hdr Header) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w := &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}
	if hdr.StartedAt == "" {
		hdr.StartedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if err := w.writeJSON(hdr); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) Write(e Entry) error { return w.writeJSON(e) }

func (w *Writer) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	var err1 error
	if w.w != nil {
		_ = w.w.Flush()
	}
	if w.enc != nil {
		err1 = w.enc.Close()
		w.enc = nil
	}
	if w.f != nil {
		_ = w.f.Close()
		w.f = nil
	}
	w.w = nil
	return err1
}

// Read decodes a run log into its header and entries.
func Read(path string) (Header, []Entry, error) {
	var hdr Header
	f, err := os.Open(path)
	if err != nil {
		return hdr, nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return hdr, nil, err
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !sc.Scan() {
		return hdr, nil, sc.Err()
	}
	if err := json.Unmarshal(sc.Bytes(), &hdr); err != nil {
		return hdr, nil, err
	}
	var entries []Entry
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return hdr, entries, err
		}
		entries = append(entries, e)
	}
	return hdr, entries, sc.Err()
}
