package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Doremi203/LeetCodeBot/internal/domain"
	"github.com/Doremi203/LeetCodeBot/internal/logger"
)

// PostgresUsers implements Users on top of the users table.
type PostgresUsers struct {
	db *sqlx.DB
}

// NewPostgresUsers wraps the given connection pool.
func NewPostgresUsers(db *sqlx.DB) *PostgresUsers {
	return &PostgresUsers{db: db}
}

// Create inserts a new profile row.
func (s *PostgresUsers) Create(ctx context.Context, user domain.User) error {
	const query = `
		INSERT INTO users (telegram_user_id, difficulty, time_setting, state, is_premium)
		VALUES (:telegram_user_id, :difficulty, :time_setting, :state, :is_premium)`

	if _, err := s.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user %d: %w", user.ID, err)
	}
	return nil
}

// Get fetches a profile, reporting absence via domain.ErrUserNotFound.
func (s *PostgresUsers) Get(ctx context.Context, id int64) (domain.User, error) {
	const query = `
		SELECT telegram_user_id, difficulty, time_setting, state, is_premium
		FROM users
		WHERE telegram_user_id = $1`

	var user domain.User
	if err := s.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return user, nil
}

// Update applies only the fields set on the update. Unset fields keep their
// stored values, so concurrent partial updates do not clobber each other.
func (s *PostgresUsers) Update(ctx context.Context, upd domain.UserUpdate) error {
	if upd.IsZero() {
		return nil
	}

	sets := make([]string, 0, 4)
	args := map[string]any{"id": upd.ID}
	if upd.State != nil {
		sets = append(sets, "state = :state")
		args["state"] = *upd.State
	}
	if upd.Difficulty != nil {
		sets = append(sets, "difficulty = :difficulty")
		args["difficulty"] = *upd.Difficulty
	}
	if upd.TimeSlot != nil {
		sets = append(sets, "time_setting = :time_setting")
		args["time_setting"] = *upd.TimeSlot
	}
	if upd.Premium != nil {
		sets = append(sets, "is_premium = :is_premium")
		args["is_premium"] = *upd.Premium
	}

	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE telegram_user_id = :id"
	res, err := s.db.NamedExecContext(ctx, query, args)
	if err != nil {
		return fmt.Errorf("update user %d: %w", upd.ID, err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Delete removes a profile. Deleting an absent user is a no-op.
func (s *PostgresUsers) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM users WHERE telegram_user_id = $1`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	logger.STORE.Info("user deleted",
		slog.String("event", "users.delete"),
		slog.Int64("user_id", id),
	)
	return nil
}

// ListByTimeSlot returns the registered profiles whose notification slot
// equals the given window. Backed by a partial index, not a full scan.
func (s *PostgresUsers) ListByTimeSlot(ctx context.Context, slot domain.TimeSlot) ([]domain.User, error) {
	const query = `
		SELECT telegram_user_id, difficulty, time_setting, state, is_premium
		FROM users
		WHERE time_setting = $1 AND state = $2`

	var users []domain.User
	if err := s.db.SelectContext(ctx, &users, query, slot, domain.StateRegistered); err != nil {
		return nil, fmt.Errorf("list users for slot %s: %w", slot, err)
	}
	return users, nil
}

// PostgresSolved implements Solved on top of the solved_problems table.
type PostgresSolved struct {
	db *sqlx.DB
}

// NewPostgresSolved wraps the given connection pool.
func NewPostgresSolved(db *sqlx.DB) *PostgresSolved {
	return &PostgresSolved{db: db}
}

// Add appends a solved record. The unique (user, problem) index makes retries
// harmless: conflicting inserts are dropped.
func (s *PostgresSolved) Add(ctx context.Context, rec domain.SolvedRecord) error {
	const query = `
		INSERT INTO solved_problems (id, telegram_user_id, problem_id, solved_at)
		VALUES (:id, :telegram_user_id, :problem_id, :solved_at)
		ON CONFLICT (telegram_user_id, problem_id) DO NOTHING`

	if _, err := s.db.NamedExecContext(ctx, query, rec); err != nil {
		return fmt.Errorf("add solved record for user %d problem %d: %w", rec.UserID, rec.ProblemID, err)
	}
	return nil
}

// ProblemIDs returns the set of problem ids the user has acknowledged.
func (s *PostgresSolved) ProblemIDs(ctx context.Context, userID int64) (map[int]struct{}, error) {
	const query = `SELECT problem_id FROM solved_problems WHERE telegram_user_id = $1`

	var ids []int
	if err := s.db.SelectContext(ctx, &ids, query, userID); err != nil {
		return nil, fmt.Errorf("list solved ids for user %d: %w", userID, err)
	}
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}
