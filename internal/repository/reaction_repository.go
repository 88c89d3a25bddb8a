// This file defines the Reaction model and repository methods for "like"
// style annotations on votes. Only non-neutral reactions are stored: the
// neutral code removes the caller's row, and the unique (vote_id, user_id)
// key makes a repeated reaction replace the previous one instead of
// inserting a duplicate.
package repository

import (
	"context"
	"database/sql"
	"errors"
)

// Reaction mirrors the 'reactions' table.
type Reaction struct {
	ID     uint64
	VoteID uint64
	UserID uint64
	Code   string
}

// ReactionRepo manages persistence for reactions.
type ReactionRepo struct {
	db *sql.DB
}

// NewReactionRepo constructs a ReactionRepo with the given DB handle.
func NewReactionRepo(db *sql.DB) *ReactionRepo {
	return &ReactionRepo{db: db}
}

// Set stores or replaces the caller's reaction on a vote.
func (r *ReactionRepo) Set(ctx context.Context, voteID, userID uint64, code string) error {
	const q = `INSERT INTO reactions (vote_id, user_id, code) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE code = VALUES(code)`
	_, err := r.db.ExecContext(ctx, q, voteID, userID, code)
	return err
}

// Remove deletes the caller's reaction on a vote if one exists. Removing a
// reaction that was never set is not an error.
func (r *ReactionRepo) Remove(ctx context.Context, voteID, userID uint64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM reactions WHERE vote_id = ? AND user_id = ?`, voteID, userID)
	return err
}

// CountForVote returns the number of reactions on a vote. Every stored row
// is non-neutral, so a plain count suffices.
func (r *ReactionRepo) CountForVote(ctx context.Context, voteID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reactions WHERE vote_id = ?`, voteID).Scan(&n)
	return n, err
}

// GetCode returns the caller's current reaction code on a vote, or "" when
// none is set.
func (r *ReactionRepo) GetCode(ctx context.Context, voteID, userID uint64) (string, error) {
	var code string
	err := r.db.QueryRowContext(ctx,
		`SELECT code FROM reactions WHERE vote_id = ? AND user_id = ?`, voteID, userID).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return code, err
}
