package runlog

import (
	"path/filepath"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs", "run_1.jsonl.zst")

	w, err := Create(path, Header{Level: "level1", MazeDigest: "abc"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	entries := []Entry{
		{Seq: 1, Command: "interact (1,3)", Time: 2, Digest: "d1"},
		{Seq: 2, Command: "interact (2,2)", Code: "E_ILLEGAL_ACTION", Time: 3, Digest: "d2"},
		{Seq: 3, Command: "skip", Time: 4, Goal: true, Digest: "d3"},
	}
	for _, e := range entries {
		if err := w.Write(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	hdr, got, err := Read(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if hdr.Level != "level1" || hdr.MazeDigest != "abc" {
		t.Fatalf("header = %+v", hdr)
	}
	if hdr.StartedAt == "" {
		t.Fatalf("header missing timestamp")
	}
	if len(got) != len(entries) {
		t.Fatalf("entries = %d, want %d", len(got), len(entries))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], entries[i])
		}
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, _, err := Read(filepath.Join(t.TempDir(), "nope.jsonl.zst")); err == nil {
		t.Fatalf("expected error")
	}
}
