// Package storage persists user profiles and the solved-problem ledger. The
// Postgres implementations are the production path; the in-memory twins back
// tests and local development.
package storage

import (
	"context"

	"github.com/Doremi203/LeetCodeBot/internal/domain"
)

// Users is the profile store contract. Get reports absence via
// domain.ErrUserNotFound; Update applies only the fields set on the update and
// leaves the rest untouched. ListByTimeSlot matches registered profiles only:
// mid-dialog users keep their slot but are not due for notifications.
type Users interface {
	Create(ctx context.Context, user domain.User) error
	Get(ctx context.Context, id int64) (domain.User, error)
	Update(ctx context.Context, upd domain.UserUpdate) error
	Delete(ctx context.Context, id int64) error
	ListByTimeSlot(ctx context.Context, slot domain.TimeSlot) ([]domain.User, error)
}

// Solved is the append-only ledger of acknowledged problems. Add deduplicates
// on (user, problem) so acknowledgment retries never double-apply.
type Solved interface {
	Add(ctx context.Context, rec domain.SolvedRecord) error
	ProblemIDs(ctx context.Context, userID int64) (map[int]struct{}, error)
}
