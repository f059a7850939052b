package logger

import (
	"bufio"
	"io"
	"sync"
)

// logSink buffers rendered lines and writes them off the hot path. The bot
// has exactly two possible destinations, stdout and one optional file, so
// they are fixed fields rather than a fan-out list.
type logSink struct {
	queue    chan []byte
	flushReq chan chan error
	done     chan struct{}
	once     sync.Once

	mu       sync.Mutex
	console  *bufio.Writer
	file     *bufio.Writer
	writeErr error
}

// newLogSink wraps the console writer and the optional file writer. A nil
// file means console-only output.
func newLogSink(console, file io.Writer, bufSize int) *logSink {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	s := &logSink{
		queue:    make(chan []byte, 256),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
	}
	if console != nil {
		s.console = bufio.NewWriterSize(console, bufSize)
	}
	if file != nil {
		s.file = bufio.NewWriterSize(file, bufSize)
	}
	go s.loop()
	return s
}

func (s *logSink) loop() {
	for {
		select {
		case line, ok := <-s.queue:
			if !ok {
				_ = s.flush()
				close(s.done)
				return
			}
			if len(line) == 0 {
				continue
			}
			if err := s.writeLine(line); err != nil {
				s.setErr(err)
			}
		case ack := <-s.flushReq:
			ack <- s.flush()
		}
	}
}

// Write enqueues one rendered line. When the queue is full it blocks rather
// than dropping the line.
func (s *logSink) Write(p []byte) error {
	if err := s.getErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	line := make([]byte, len(p))
	copy(line, p)
	s.queue <- line
	return nil
}

// Flush forces both destinations current and reports the first error.
func (s *logSink) Flush() error {
	if err := s.getErr(); err != nil {
		return err
	}
	ack := make(chan error, 1)
	s.flushReq <- ack
	return <-ack
}

// Close drains queued lines, flushes, and reports the first write error seen.
func (s *logSink) Close() error {
	s.once.Do(func() {
		close(s.queue)
	})
	<-s.done
	return s.getErr()
}

func (s *logSink) writeLine(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.console != nil {
		if _, err := s.console.Write(p); err != nil {
			return err
		}
		if err := s.console.Flush(); err != nil {
			return err
		}
	}
	if s.file != nil {
		if _, err := s.file.Write(p); err != nil {
			return err
		}
		if err := s.file.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func (s *logSink) flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var first error
	if s.console != nil {
		first = s.console.Flush()
	}
	if s.file != nil {
		if err := s.file.Flush(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (s *logSink) getErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeErr
}

func (s *logSink) setErr(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr == nil {
		s.writeErr = err
	}
}
