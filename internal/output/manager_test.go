package output

import (
	"errors"
	"testing"
)

type fakeSink struct {
	writes   []any
	writeErr error
	closed   bool
	closeErr error
}

func (f *fakeSink) Write(v any) error {
	f.writes = append(f.writes, v)
	return f.writeErr
}

func (f *fakeSink) Close() error {
	f.closed = true
	return f.closeErr
}

func TestManager_FansOutToAllSinks(t *testing.T) {
	m := NewManager()
	a, b := &fakeSink{}, &fakeSink{}
	if err := m.AddSink(a); err != nil {
		t.Fatal(err)
	}
	if err := m.AddSink(b); err != nil {
		t.Fatal(err)
	}

	r := FileResult{Status: StatusValid, File: "a.pem"}
	if err := m.Write(r); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(a.writes) != 1 || len(b.writes) != 1 {
		t.Errorf("writes = %d/%d, want 1/1", len(a.writes), len(b.writes))
	}

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Error("not all sinks closed")
	}
}

func TestManager_WriteErrorDoesNotSkipOtherSinks(t *testing.T) {
	m := NewManager()
	bad := &fakeSink{writeErr: errors.New("disk full")}
	good := &fakeSink{}
	if err := m.AddSink(bad); err != nil {
		t.Fatal(err)
	}
	if err := m.AddSink(good); err != nil {
		t.Fatal(err)
	}

	err := m.Write(FileResult{File: "a.pem"})
	if err == nil {
		t.Fatal("Write: expected error from failing sink")
	}
	if len(good.writes) != 1 {
		t.Error("healthy sink skipped after another sink failed")
	}
}

func TestManager_RejectsNilSink(t *testing.T) {
	m := NewManager()
	if err := m.AddSink(nil); err == nil {
		t.Fatal("AddSink(nil): expected error")
	}
}
