// Package scheduler runs the recurring notification loop: once per tick it
// resolves the active time window, finds the users due in it, and delivers one
// unsolved problem to each of them.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Doremi203/LeetCodeBot/internal/domain"
	"github.com/Doremi203/LeetCodeBot/internal/logger"
)

// UserSource lists the profiles subscribed to a time window.
type UserSource interface {
	ListByTimeSlot(ctx context.Context, slot domain.TimeSlot) ([]domain.User, error)
}

// SolvedSource returns the problems a user has already acknowledged.
type SolvedSource interface {
	ProblemIDs(ctx context.Context, userID int64) (map[int]struct{}, error)
}

// Catalog fetches the full problem catalog snapshot.
type Catalog interface {
	Fetch(ctx context.Context) ([]domain.Problem, error)
}

// Deliverer pushes one selected problem to one user.
type Deliverer interface {
	Deliver(ctx context.Context, user domain.User, problem domain.Problem) error
}

// Scheduler is the notification loop. It is single-goroutine; all state below
// is touched only from Run/Tick.
type Scheduler struct {
	users     UserSource
	solved    SolvedSource
	catalog   Catalog
	deliverer Deliverer

	loc  *time.Location
	tick time.Duration
	rng  *rand.Rand

	// window dedupe: a user gets at most one notification per window even
	// though the loop may tick several times inside it.
	window   domain.TimeSlot
	notified map[int64]struct{}
}

// Options configures New.
type Options struct {
	Users     UserSource
	Solved    SolvedSource
	Catalog   Catalog
	Deliverer Deliverer

	// Location is the single reference timezone windows are resolved in.
	Location *time.Location
	// Tick is the loop cadence. It must not exceed the one-hour window width.
	Tick time.Duration
	// Rand drives the uniform problem choice; nil seeds from the clock.
	Rand *rand.Rand
}

// New builds the scheduler.
func New(opts Options) *Scheduler {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	tick := opts.Tick
	if tick <= 0 || tick > time.Hour {
		tick = time.Hour
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Scheduler{
		users:     opts.Users,
		solved:    opts.Solved,
		catalog:   opts.Catalog,
		deliverer: opts.Deliverer,
		loc:       loc,
		tick:      tick,
		rng:       rng,
		window:    domain.TimeSlotNotSet,
		notified:  make(map[int64]struct{}),
	}
}

// Run ticks until the context is cancelled. A tick failure is logged inside
// Tick and never stops the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	logger.SCHED.Info("scheduler started",
		slog.String("event", "loop.start"),
		slog.Duration("duration", s.tick),
	)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.Tick(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			logger.SCHED.Info("scheduler stopped", slog.String("event", "loop.stop"))
			return nil
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick runs one scheduling pass for the given wall-clock instant.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) {
	local := now.In(s.loc)
	slot, active := domain.SlotForHour(local.Hour())
	if !active {
		s.resetWindow(domain.TimeSlotNotSet)
		return
	}
	if slot != s.window {
		s.resetWindow(slot)
	}

	start := time.Now()
	users, err := s.users.ListByTimeSlot(ctx, slot)
	if err != nil {
		logger.SCHED.LogAttrs(ctx, slog.LevelError, "",
			slog.String("event", "tick.failed"),
			slog.String("window", slot.String()),
			slog.String("err", err.Error()),
		)
		return
	}
	if len(users) == 0 {
		return
	}

	// One catalog fetch shared by every due user this tick.
	var (
		problems []domain.Problem
		fetched  bool
	)
	delivered, skipped, failed := 0, 0, 0

	for _, user := range users {
		if ctx.Err() != nil {
			return
		}
		if _, done := s.notified[user.ID]; done {
			continue
		}
		if user.State != domain.StateRegistered || !user.Difficulty.IsSet() {
			skipped++
			continue
		}

		if !fetched {
			problems, err = s.catalog.Fetch(ctx)
			if err != nil {
				logger.SCHED.LogAttrs(ctx, slog.LevelError, "",
					slog.String("event", "tick.failed"),
					slog.String("window", slot.String()),
					slog.String("err", err.Error()),
				)
				return
			}
			fetched = true
		}

		switch nerr := s.notify(ctx, user, problems); {
		case nerr == nil:
			s.notified[user.ID] = struct{}{}
			delivered++
		case errors.Is(nerr, domain.ErrNoUnseenProblems):
			logger.SCHED.LogAttrs(ctx, slog.LevelInfo, "",
				slog.String("event", "notify.skipped"),
				slog.String("status", "skip"),
				slog.Int64("user_id", user.ID),
				slog.String("window", slot.String()),
				slog.String("difficulty", user.Difficulty.String()),
			)
			skipped++
		default:
			// One user's failure never blocks the rest of the window.
			logger.SCHED.LogAttrs(ctx, slog.LevelError, "",
				slog.String("event", "notify.failed"),
				slog.Int64("user_id", user.ID),
				slog.String("window", slot.String()),
				slog.String("err", nerr.Error()),
			)
			failed++
		}
	}

	if delivered+skipped+failed > 0 {
		logger.SCHED.LogAttrs(ctx, slog.LevelInfo, "",
			slog.String("event", "tick.done"),
			slog.String("window", slot.String()),
			slog.Int("users", len(users)),
			slog.Int("count", delivered),
			slog.Int("skipped", skipped),
			slog.Int("failed", failed),
			slog.Duration("duration", logger.Took(start)),
		)
	}
}

func (s *Scheduler) notify(ctx context.Context, user domain.User, problems []domain.Problem) error {
	solvedIDs, err := s.solved.ProblemIDs(ctx, user.ID)
	if err != nil {
		return err
	}
	problem, err := domain.PickProblem(problems, user.Difficulty, solvedIDs, s.rng)
	if err != nil {
		return err
	}
	return s.deliverer.Deliver(ctx, user, problem)
}

func (s *Scheduler) resetWindow(slot domain.TimeSlot) {
	s.window = slot
	if len(s.notified) > 0 {
		s.notified = make(map[int64]struct{})
	}
}
