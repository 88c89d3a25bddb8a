package handler

import (
	"context"

	"github.com/moviecircle/backend/internal/repository"
)

// The handlers consume their repositories through narrow interfaces so the
// endpoint logic can be exercised against in-memory stores.

// UserStore is the slice of UserRepo the handlers need.
type UserStore interface {
	Create(ctx context.Context, username, name, password string, cost int) (uint64, error)
	GetByUsername(ctx context.Context, username string) (repository.User, error)
}

// ShowStore is the slice of ShowRepo the handlers need.
type ShowStore interface {
	Create(ctx context.Context, s *repository.Show) error
	GetByID(ctx context.Context, id uint64) (*repository.Show, error)
	Update(ctx context.Context, s *repository.Show) error
	Delete(ctx context.Context, id uint64) error
	Search(ctx context.Context, query string) ([]repository.Show, error)
	CountByType(ctx context.Context, query string) (map[string]int, error)
}

// VoteStore is the slice of VoteRepo the handlers need.
type VoteStore interface {
	GetByID(ctx context.Context, id uint64) (*repository.Vote, error)
	GetByUserAndShow(ctx context.Context, userID, showID uint64) (*repository.Vote, error)
	Create(ctx context.Context, v *repository.Vote) error
	Update(ctx context.Context, v *repository.Vote) error
	Delete(ctx context.Context, id uint64) error
	ListByShow(ctx context.Context, showID uint64) ([]repository.Vote, error)
	CountOthers(ctx context.Context, showID, userID uint64) (int, error)
	CountByUser(ctx context.Context) ([]repository.LeaderboardEntry, error)
}

// ReactionStore is the slice of ReactionRepo the handlers need.
type ReactionStore interface {
	Set(ctx context.Context, voteID, userID uint64, code string) error
	Remove(ctx context.Context, voteID, userID uint64) error
	CountForVote(ctx context.Context, voteID uint64) (int, error)
	GetCode(ctx context.Context, voteID, userID uint64) (string, error)
}

var (
	_ UserStore     = (*repository.UserRepo)(nil)
	_ ShowStore     = (*repository.ShowRepo)(nil)
	_ VoteStore     = (*repository.VoteRepo)(nil)
	_ ReactionStore = (*repository.ReactionRepo)(nil)
)
