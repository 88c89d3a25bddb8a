package handler

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviecircle/backend/internal/apperr"
	"github.com/moviecircle/backend/internal/middleware"
	"github.com/moviecircle/backend/internal/notify"
	"github.com/moviecircle/backend/internal/reconcile"
	"github.com/moviecircle/backend/internal/repository"
)

// ReactionHandler serves the set-reaction endpoint.
type ReactionHandler struct {
	Votes     VoteStore
	Users     UserStore
	Reactions ReactionStore
	Notifier  *notify.Notifier
}

func NewReactionHandler(v VoteStore, u UserStore,
	r ReactionStore, n *notify.Notifier) *ReactionHandler {
	return &ReactionHandler{Votes: v, Users: u, Reactions: r, Notifier: n}
}

type setReactionReq struct {
	VoteID uint64 `json:"vote_id"`
	Code   string `json:"code"`
}

// SetReaction sets or removes the caller's reaction on a vote. The neutral
// code removes; anything else replaces. A reaction set on someone else's
// vote emits a like notification; self-reactions are silent.
func (h *ReactionHandler) SetReaction(c echo.Context) error {
	username := middleware.Username(c)

	var req setReactionReq
	if err := c.Bind(&req); err != nil || req.VoteID == 0 {
		return fail(c, errBadBody())
	}
	if !reconcile.ValidReaction(req.Code) {
		return fail(c, apperr.Newf(apperr.KindValidation, "unknown reaction code %q", req.Code))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		return fail(c, apperr.Wrap(apperr.KindUnauthorized, "unknown user", err))
	}
	vote, err := h.Votes.GetByID(ctx, req.VoteID)
	if err != nil {
		if errors.Is(err, repository.ErrVoteNotFound) {
			return fail(c, apperr.New(apperr.KindNotFound, "vote does not exist"))
		}
		return fail(c, err)
	}

	if req.Code == reconcile.ReactionNone {
		if err := h.Reactions.Remove(ctx, vote.ID, user.ID); err != nil {
			return fail(c, err)
		}
	} else {
		if err := h.Reactions.Set(ctx, vote.ID, user.ID, req.Code); err != nil {
			return fail(c, err)
		}
		if vote.Username != user.Username {
			if err := h.Notifier.Emit(ctx, reconcile.VoteLiked(user.Username, vote.ShowTitle, vote.Username)); err != nil {
				return fail(c, err)
			}
		}
	}

	count, err := h.Reactions.CountForVote(ctx, vote.ID)
	if err != nil {
		return fail(c, err)
	}
	mine, err := h.Reactions.GetCode(ctx, vote.ID, user.ID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{
		"payload": echo.Map{
			"vote_id": vote.ID,
			"count":   count,
			"mine":    mine != "",
			"code":    mine,
		},
	})
}
