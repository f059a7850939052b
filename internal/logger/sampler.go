package logger

import (
	"strconv"
	"strings"
	"sync"
)

// updateSampler passes one event in every n. The only sampled call site is
// the per-update receipt line, which fires for every inbound Telegram update;
// everything else logs unconditionally, so one counter is enough.
type updateSampler struct {
	mu      sync.Mutex
	every   int
	counter int
}

func newUpdateSampler(every int) *updateSampler {
	s := &updateSampler{}
	s.Set(every)
	return s
}

// Set configures the pass rate to one event in every n. Values below two
// disable sampling.
func (s *updateSampler) Set(every int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if every < 2 {
		every = 0
	}
	s.every = every
	s.counter = 0
}

// Allow reports whether the current event passes. The first event of each
// window passes, so a freshly started bot always logs its first update.
func (s *updateSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.every == 0 {
		return true
	}
	allowed := s.counter == 0
	s.counter++
	if s.counter == s.every {
		s.counter = 0
	}
	return allowed
}

// parseSampleSpec understands "1/50" ratios and plain "50" counts, both
// meaning one line in fifty. Zero disables sampling.
func parseSampleSpec(spec string) int {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0
	}
	if num, den, ok := strings.Cut(spec, "/"); ok {
		n, err1 := strconv.Atoi(strings.TrimSpace(num))
		d, err2 := strconv.Atoi(strings.TrimSpace(den))
		if err1 != nil || err2 != nil || n <= 0 || d <= 0 {
			return 0
		}
		return d / n
	}
	if v, err := strconv.Atoi(spec); err == nil && v > 0 {
		return v
	}
	return 0
}
