package scheduler

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/Doremi203/LeetCodeBot/internal/domain"
)

type fakeUsers struct {
	users []domain.User
}

func (f *fakeUsers) ListByTimeSlot(_ context.Context, slot domain.TimeSlot) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		if u.TimeSlot == slot {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeSolved struct {
	solved map[int64]map[int]struct{}
}

func (f *fakeSolved) ProblemIDs(_ context.Context, userID int64) (map[int]struct{}, error) {
	set := make(map[int]struct{})
	for id := range f.solved[userID] {
		set[id] = struct{}{}
	}
	return set, nil
}

type fakeCatalog struct {
	problems []domain.Problem
	calls    int
	err      error
}

func (f *fakeCatalog) Fetch(context.Context) ([]domain.Problem, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.problems, nil
}

type delivery struct {
	userID  int64
	problem domain.Problem
}

type fakeDeliverer struct {
	deliveries []delivery
	failFor    map[int64]error
}

func (f *fakeDeliverer) Deliver(_ context.Context, user domain.User, problem domain.Problem) error {
	if err := f.failFor[user.ID]; err != nil {
		return err
	}
	f.deliveries = append(f.deliveries, delivery{userID: user.ID, problem: problem})
	return nil
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 5, 10, hour, minute, 0, 0, time.UTC)
}

func registered(id int64, slot domain.TimeSlot, diff domain.Difficulty) domain.User {
	return domain.User{ID: id, State: domain.StateRegistered, TimeSlot: slot, Difficulty: diff}
}

func newTestScheduler(users *fakeUsers, solved *fakeSolved, catalog *fakeCatalog, deliverer *fakeDeliverer) *Scheduler {
	if solved == nil {
		solved = &fakeSolved{}
	}
	return New(Options{
		Users:     users,
		Solved:    solved,
		Catalog:   catalog,
		Deliverer: deliverer,
		Location:  time.UTC,
		Tick:      time.Hour,
		Rand:      rand.New(rand.NewSource(1)),
	})
}

func TestTickOutsideWindowsDoesNothing(t *testing.T) {
	catalog := &fakeCatalog{problems: []domain.Problem{{ID: 1, Difficulty: domain.DifficultyEasy}}}
	deliverer := &fakeDeliverer{}
	s := newTestScheduler(
		&fakeUsers{users: []domain.User{registered(1, domain.TimeSlotTen, domain.DifficultyEasy)}},
		nil, catalog, deliverer,
	)

	for _, hour := range []int{0, 9, 12, 23} {
		s.Tick(context.Background(), at(hour, 30))
	}
	if catalog.calls != 0 || len(deliverer.deliveries) != 0 {
		t.Fatalf("expected idle ticks, got %d fetches and %d deliveries", catalog.calls, len(deliverer.deliveries))
	}
}

func TestTickDeliversOncePerWindow(t *testing.T) {
	catalog := &fakeCatalog{problems: []domain.Problem{{ID: 1, Difficulty: domain.DifficultyEasy}}}
	deliverer := &fakeDeliverer{}
	s := newTestScheduler(
		&fakeUsers{users: []domain.User{registered(7, domain.TimeSlotTen, domain.DifficultyEasy)}},
		nil, catalog, deliverer,
	)
	ctx := context.Background()

	s.Tick(ctx, at(10, 5))
	s.Tick(ctx, at(10, 25))
	s.Tick(ctx, at(10, 55))
	if len(deliverer.deliveries) != 1 {
		t.Fatalf("got %d deliveries inside one window, want 1", len(deliverer.deliveries))
	}

	// Leaving the window resets the markers, so the next window delivers again.
	s.Tick(ctx, at(12, 0))
	s.Tick(ctx, at(10, 10).AddDate(0, 0, 1))
	if len(deliverer.deliveries) != 2 {
		t.Fatalf("got %d deliveries after reset, want 2", len(deliverer.deliveries))
	}
}

func TestTickWindowMapping(t *testing.T) {
	cases := map[int]domain.TimeSlot{
		10: domain.TimeSlotTen,
		14: domain.TimeSlotFourteen,
		18: domain.TimeSlotEighteen,
		22: domain.TimeSlotTwentyTwo,
	}
	for hour, slot := range cases {
		catalog := &fakeCatalog{problems: []domain.Problem{{ID: 1, Difficulty: domain.DifficultyEasy}}}
		deliverer := &fakeDeliverer{}
		s := newTestScheduler(
			&fakeUsers{users: []domain.User{registered(1, slot, domain.DifficultyEasy)}},
			nil, catalog, deliverer,
		)
		s.Tick(context.Background(), at(hour, 59))
		if len(deliverer.deliveries) != 1 {
			t.Errorf("hour %d: got %d deliveries, want 1", hour, len(deliverer.deliveries))
		}
	}
}

func TestTickSkipsIneligibleUsers(t *testing.T) {
	catalog := &fakeCatalog{problems: []domain.Problem{{ID: 1, Difficulty: domain.DifficultyEasy}}}
	deliverer := &fakeDeliverer{}
	users := []domain.User{
		{ID: 1, State: domain.StateTimeSetup, TimeSlot: domain.TimeSlotTen, Difficulty: domain.DifficultyEasy},
		{ID: 2, State: domain.StateRegistered, TimeSlot: domain.TimeSlotTen, Difficulty: domain.DifficultyNotSet},
		registered(3, domain.TimeSlotTen, domain.DifficultyEasy),
	}
	s := newTestScheduler(&fakeUsers{users: users}, nil, catalog, deliverer)

	s.Tick(context.Background(), at(10, 0))
	if len(deliverer.deliveries) != 1 || deliverer.deliveries[0].userID != 3 {
		t.Fatalf("unexpected deliveries: %+v", deliverer.deliveries)
	}
}

func TestTickSkipsExhaustedUser(t *testing.T) {
	catalog := &fakeCatalog{problems: []domain.Problem{
		{ID: 1, Difficulty: domain.DifficultyEasy},
		{ID: 2, Difficulty: domain.DifficultyEasy},
	}}
	solved := &fakeSolved{solved: map[int64]map[int]struct{}{
		5: {1: {}, 2: {}},
	}}
	deliverer := &fakeDeliverer{}
	s := newTestScheduler(
		&fakeUsers{users: []domain.User{registered(5, domain.TimeSlotFourteen, domain.DifficultyEasy)}},
		solved, catalog, deliverer,
	)

	// Must be a logged skip, never a crash or a delivery.
	s.Tick(context.Background(), at(14, 0))
	if len(deliverer.deliveries) != 0 {
		t.Fatalf("unexpected deliveries: %+v", deliverer.deliveries)
	}
}

func TestTickSelectsOnlyUnseenMatchingProblems(t *testing.T) {
	catalog := &fakeCatalog{problems: []domain.Problem{
		{ID: 1, Difficulty: domain.DifficultyEasy},
		{ID: 2, Difficulty: domain.DifficultyEasy},
		{ID: 3, Difficulty: domain.DifficultyEasy},
		{ID: 4, Difficulty: domain.DifficultyHard},
	}}
	solved := &fakeSolved{solved: map[int64]map[int]struct{}{
		9: {1: {}, 2: {}},
	}}
	deliverer := &fakeDeliverer{}
	s := newTestScheduler(
		&fakeUsers{users: []domain.User{registered(9, domain.TimeSlotEighteen, domain.DifficultyEasy)}},
		solved, catalog, deliverer,
	)

	s.Tick(context.Background(), at(18, 30))
	if len(deliverer.deliveries) != 1 {
		t.Fatalf("got %d deliveries, want 1", len(deliverer.deliveries))
	}
	if got := deliverer.deliveries[0].problem.ID; got != 3 {
		t.Errorf("delivered problem %d, want 3", got)
	}
}

func TestTickIsolatesUserFailures(t *testing.T) {
	catalog := &fakeCatalog{problems: []domain.Problem{{ID: 1, Difficulty: domain.DifficultyMedium}}}
	deliverer := &fakeDeliverer{failFor: map[int64]error{1: errors.New("chat blocked")}}
	s := newTestScheduler(
		&fakeUsers{users: []domain.User{
			registered(1, domain.TimeSlotTen, domain.DifficultyMedium),
			registered(2, domain.TimeSlotTen, domain.DifficultyMedium),
		}},
		nil, catalog, deliverer,
	)

	s.Tick(context.Background(), at(10, 0))
	if len(deliverer.deliveries) != 1 || deliverer.deliveries[0].userID != 2 {
		t.Fatalf("second user not delivered: %+v", deliverer.deliveries)
	}

	// The failed user is retried on the next tick of the same window.
	s.Tick(context.Background(), at(10, 30))
	if len(deliverer.deliveries) != 1 {
		t.Fatalf("failed user should not mark the healthy one twice: %+v", deliverer.deliveries)
	}
}

func TestTickFetchesCatalogOncePerTick(t *testing.T) {
	catalog := &fakeCatalog{problems: []domain.Problem{
		{ID: 1, Difficulty: domain.DifficultyEasy},
		{ID: 2, Difficulty: domain.DifficultyEasy},
	}}
	deliverer := &fakeDeliverer{}
	s := newTestScheduler(
		&fakeUsers{users: []domain.User{
			registered(1, domain.TimeSlotTen, domain.DifficultyEasy),
			registered(2, domain.TimeSlotTen, domain.DifficultyEasy),
		}},
		nil, catalog, deliverer,
	)

	s.Tick(context.Background(), at(10, 0))
	if catalog.calls != 1 {
		t.Fatalf("catalog fetched %d times in one tick, want 1", catalog.calls)
	}
	if len(deliverer.deliveries) != 2 {
		t.Fatalf("got %d deliveries, want 2", len(deliverer.deliveries))
	}
}

func TestTickCancelledContextStops(t *testing.T) {
	catalog := &fakeCatalog{problems: []domain.Problem{{ID: 1, Difficulty: domain.DifficultyEasy}}}
	deliverer := &fakeDeliverer{}
	s := newTestScheduler(
		&fakeUsers{users: []domain.User{registered(1, domain.TimeSlotTen, domain.DifficultyEasy)}},
		nil, catalog, deliverer,
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Tick(ctx, at(10, 0))
	if len(deliverer.deliveries) != 0 {
		t.Fatalf("cancelled tick still delivered: %+v", deliverer.deliveries)
	}
}
