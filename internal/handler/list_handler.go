package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviecircle/backend/internal/directory"
)

// ListHandler serves the paginated show directory.
type ListHandler struct {
	Shows ShowStore
	Votes VoteStore
}

func NewListHandler(s ShowStore, v VoteStore) *ListHandler {
	return &ListHandler{Shows: s, Votes: v}
}

type listShowsReq struct {
	Query       string `json:"query"`
	Limit       int    `json:"limit"`
	CurrentPage int    `json:"current_page"`
	LazyLoad    *bool  `json:"lazy_load"` // nil defaults to true
}

// ListShows renders one page of the show directory with per-show vote
// aggregates and the global stats block.
func (h *ListHandler) ListShows(c echo.Context) error {
	req := listShowsReq{Limit: 15, CurrentPage: 1}
	if err := c.Bind(&req); err != nil {
		return fail(c, errBadBody())
	}
	params := directory.Params{
		Query:    req.Query,
		Limit:    req.Limit,
		Page:     req.CurrentPage,
		LazyLoad: req.LazyLoad == nil || *req.LazyLoad,
	}
	if err := params.Normalize(); err != nil {
		return fail(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	shows, err := h.Shows.Search(ctx, params.Query)
	if err != nil {
		return fail(c, err)
	}
	withVotes := make([]directory.ShowWithVotes, 0, len(shows))
	for _, s := range shows {
		votes, err := h.Votes.ListByShow(ctx, s.ID)
		if err != nil {
			return fail(c, err)
		}
		withVotes = append(withVotes, directory.ShowWithVotes{Show: s, Votes: votes})
	}

	typeCounts, err := h.Shows.CountByType(ctx, params.Query)
	if err != nil {
		return fail(c, err)
	}
	// The leaderboard spans all votes, never the filtered subset.
	leaderboard, err := h.Votes.CountByUser(ctx)
	if err != nil {
		return fail(c, err)
	}

	page := directory.Build(withVotes, typeCounts, leaderboard, params)
	return ok(c, echo.Map{
		"payload": echo.Map{
			"tvshows":    page.Items,
			"query":      params.Query,
			"has_more":   page.HasMore,
			"votes_user": page.Leaderboard,
			"stats":      page.Stats,
		},
	})
}
