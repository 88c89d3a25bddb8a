// This file defines the Vote model and repository methods for the vote
// ledger. At most one vote exists per (user, show) pair; the pair is
// immutable once created while score, watch state, season, episode and
// comment may be rewritten. A vote is destroyed only on explicit give-up
// or when its show is deleted.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// Vote mirrors the 'votes' table plus the voter's username and display
// name joined from users. ShowTitle is joined from shows for callers that
// format messages about the vote.
type Vote struct {
	ID          uint64
	UserID      uint64
	ShowID      uint64
	Score       float64
	NowWatching bool
	Season      int
	Episode     int
	Comment     string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Username  string
	Name      string
	ShowTitle string
}

const voteColumns = `v.id, v.user_id, v.show_id, v.score, v.now_watching,
	v.season, v.episode, v.comment, v.created_at, v.updated_at,
	u.username, u.name, s.title`

// VoteRepo manages persistence for votes.
type VoteRepo struct {
	db *sql.DB
}

// NewVoteRepo constructs a VoteRepo with the given DB handle.
func NewVoteRepo(db *sql.DB) *VoteRepo {
	return &VoteRepo{db: db}
}

func scanVote(row interface{ Scan(...any) error }, v *Vote) error {
	return row.Scan(
		&v.ID, &v.UserID, &v.ShowID, &v.Score, &v.NowWatching,
		&v.Season, &v.Episode, &v.Comment, &v.CreatedAt, &v.UpdatedAt,
		&v.Username, &v.Name, &v.ShowTitle,
	)
}

// GetByID retrieves a vote by its ID, ErrVoteNotFound when absent.
func (r *VoteRepo) GetByID(ctx context.Context, id uint64) (*Vote, error) {
	const q = `SELECT ` + voteColumns + `
	           FROM votes v
	           JOIN users u ON u.id = v.user_id
	           JOIN shows s ON s.id = v.show_id
	           WHERE v.id = ?`
	var v Vote
	if err := scanVote(r.db.QueryRowContext(ctx, q, id), &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVoteNotFound
		}
		return nil, err
	}
	return &v, nil
}

// GetByUserAndShow retrieves the single vote for a (user, show) pair,
// ErrVoteNotFound when the user has not voted on the show.
func (r *VoteRepo) GetByUserAndShow(ctx context.Context, userID, showID uint64) (*Vote, error) {
	const q = `SELECT ` + voteColumns + `
	           FROM votes v
	           JOIN users u ON u.id = v.user_id
	           JOIN shows s ON s.id = v.show_id
	           WHERE v.user_id = ? AND v.show_id = ?`
	var v Vote
	if err := scanVote(r.db.QueryRowContext(ctx, q, userID, showID), &v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVoteNotFound
		}
		return nil, err
	}
	return &v, nil
}

// Create inserts a new vote and assigns the generated ID back to the
// struct. The unique (user_id, show_id) key rejects a duplicate pair.
func (r *VoteRepo) Create(ctx context.Context, v *Vote) error {
	const q = `INSERT INTO votes (user_id, show_id, score, now_watching, season, episode, comment)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		v.UserID, v.ShowID, v.Score, v.NowWatching, v.Season, v.Episode, v.Comment)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// Update overwrites the mutable fields of an existing vote.
func (r *VoteRepo) Update(ctx context.Context, v *Vote) error {
	const q = `UPDATE votes
	           SET score = ?, now_watching = ?, season = ?, episode = ?, comment = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q,
		v.Score, v.NowWatching, v.Season, v.Episode, v.Comment, v.ID)
	return err
}

// Delete removes a vote and cascades to its reactions inside one
// transaction, so reactions never outlive the vote they annotate.
func (r *VoteRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM reactions WHERE vote_id = ?`, id); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `DELETE FROM votes WHERE id = ?`, id)
	return err
}

// ListByShow returns every vote on a show, oldest first for a stable
// per-user detail map.
func (r *VoteRepo) ListByShow(ctx context.Context, showID uint64) ([]Vote, error) {
	const q = `SELECT ` + voteColumns + `
	           FROM votes v
	           JOIN users u ON u.id = v.user_id
	           JOIN shows s ON s.id = v.show_id
	           WHERE v.show_id = ?
	           ORDER BY v.created_at ASC, v.id ASC`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []Vote
	for rows.Next() {
		var v Vote
		if err := scanVote(rows, &v); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

// CountOthers returns how many votes exist on a show from users other than
// the given one. Used as the delete guard.
func (r *VoteRepo) CountOthers(ctx context.Context, showID, userID uint64) (int, error) {
	const q = `SELECT COUNT(*) FROM votes WHERE show_id = ? AND user_id <> ?`
	var n int
	err := r.db.QueryRowContext(ctx, q, showID, userID).Scan(&n)
	return n, err
}

// LeaderboardEntry is one row of the per-user vote count leaderboard.
type LeaderboardEntry struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// CountByUser returns vote counts per username across all votes, highest
// first. Recomputed fresh per call rather than kept as a running counter.
func (r *VoteRepo) CountByUser(ctx context.Context) ([]LeaderboardEntry, error) {
	const q = `SELECT u.username, COUNT(*) AS n
	           FROM votes v JOIN users u ON u.id = v.user_id
	           GROUP BY u.username
	           ORDER BY n DESC, u.username ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []LeaderboardEntry
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.Name, &e.Count); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
