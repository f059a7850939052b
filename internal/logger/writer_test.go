package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

type failingWriter struct{ err error }

func (w failingWriter) Write([]byte) (int, error) { return 0, w.err }

func TestLogSinkWritesBothDestinations(t *testing.T) {
	console := &bytes.Buffer{}
	file := &bytes.Buffer{}
	sink := newLogSink(console, file, 1024)

	for _, line := range []string{"one\n", "two\n"} {
		if err := sink.Write([]byte(line)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	want := "one\ntwo\n"
	if console.String() != want {
		t.Errorf("console = %q, want %q", console.String(), want)
	}
	if file.String() != want {
		t.Errorf("file = %q, want %q", file.String(), want)
	}
}

func TestLogSinkConsoleOnly(t *testing.T) {
	console := &bytes.Buffer{}
	sink := newLogSink(console, nil, 1024)

	if err := sink.Write([]byte("solo\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !strings.Contains(console.String(), "solo") {
		t.Errorf("console = %q", console.String())
	}
}

func TestLogSinkLatchesWriteError(t *testing.T) {
	boom := errors.New("disk full")
	sink := newLogSink(failingWriter{err: boom}, nil, 1024)

	if err := sink.Write([]byte("lost line\n")); err != nil {
		t.Fatalf("first write should enqueue: %v", err)
	}
	if err := sink.Close(); !errors.Is(err, boom) {
		t.Fatalf("close = %v, want %v", err, boom)
	}
}

func TestLogSinkCloseIdempotent(t *testing.T) {
	sink := newLogSink(&bytes.Buffer{}, nil, 1024)
	if err := sink.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}
