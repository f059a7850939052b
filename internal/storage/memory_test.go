package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Doremi203/LeetCodeBot/internal/domain"
)

func TestMemoryUsersUpdateCoalesces(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUsers()

	user := domain.User{
		ID:         42,
		State:      domain.StateTimeSetup,
		Difficulty: domain.DifficultyEasy,
		TimeSlot:   domain.TimeSlotTen,
	}
	if err := store.Create(ctx, user); err != nil {
		t.Fatalf("create: %v", err)
	}

	state := domain.StateRegistered
	if err := store.Update(ctx, domain.UserUpdate{ID: 42, State: &state}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Get(ctx, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != domain.StateRegistered {
		t.Errorf("state = %v, want %v", got.State, domain.StateRegistered)
	}
	if got.Difficulty != domain.DifficultyEasy || got.TimeSlot != domain.TimeSlotTen {
		t.Errorf("unset fields changed: difficulty=%v slot=%v", got.Difficulty, got.TimeSlot)
	}
}

func TestMemoryUsersUpdateMissing(t *testing.T) {
	store := NewMemoryUsers()
	state := domain.StateRegistered
	err := store.Update(context.Background(), domain.UserUpdate{ID: 7, State: &state})
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestMemoryUsersListByTimeSlot(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUsers()

	for _, u := range []domain.User{
		{ID: 1, State: domain.StateRegistered, TimeSlot: domain.TimeSlotTen},
		{ID: 2, State: domain.StateRegistered, TimeSlot: domain.TimeSlotFourteen},
		{ID: 3, State: domain.StateRegistered, TimeSlot: domain.TimeSlotTen},
		// Mid-dialog profile keeps its slot but is not due for notifications.
		{ID: 4, State: domain.StateDifficultySetup, TimeSlot: domain.TimeSlotTen},
	} {
		if err := store.Create(ctx, u); err != nil {
			t.Fatalf("create %d: %v", u.ID, err)
		}
	}

	users, err := store.ListByTimeSlot(ctx, domain.TimeSlotTen)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("got %d users, want 2", len(users))
	}
	for _, u := range users {
		if u.TimeSlot != domain.TimeSlotTen || u.State != domain.StateRegistered {
			t.Errorf("user %d has slot %v state %v", u.ID, u.TimeSlot, u.State)
		}
	}
}

func TestMemoryUsersDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryUsers()
	if err := store.Create(ctx, domain.User{ID: 5}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Delete(ctx, 5); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, 5); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("get after delete: err = %v, want ErrUserNotFound", err)
	}
	// Repeat delete stays a no-op.
	if err := store.Delete(ctx, 5); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestMemorySolvedDeduplicates(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySolved()
	now := time.Now()

	first := domain.NewSolvedRecord(1, 100, now)
	second := domain.NewSolvedRecord(1, 100, now.Add(time.Hour))
	if err := store.Add(ctx, first); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Add(ctx, second); err != nil {
		t.Fatalf("duplicate add: %v", err)
	}

	ids, err := store.ProblemIDs(ctx, 1)
	if err != nil {
		t.Fatalf("problem ids: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("got %d ids, want 1", len(ids))
	}
	if _, ok := ids[100]; !ok {
		t.Errorf("missing problem 100 in %v", ids)
	}

	other, err := store.ProblemIDs(ctx, 2)
	if err != nil {
		t.Fatalf("problem ids for empty user: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("unexpected ids for user 2: %v", other)
	}
}
