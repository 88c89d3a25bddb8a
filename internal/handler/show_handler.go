package handler

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviecircle/backend/internal/apperr"
	"github.com/moviecircle/backend/internal/covers"
	"github.com/moviecircle/backend/internal/middleware"
	"github.com/moviecircle/backend/internal/notify"
	"github.com/moviecircle/backend/internal/reconcile"
	"github.com/moviecircle/backend/internal/repository"
)

// ShowHandler bundles dependencies for show submission and deletion.
type ShowHandler struct {
	Shows     ShowStore
	Votes     VoteStore
	Users     UserStore
	Reactions ReactionStore
	Covers    *covers.Store
	Notifier  *notify.Notifier
}

func NewShowHandler(s ShowStore, v VoteStore, u UserStore,
	r ReactionStore, cov *covers.Store, n *notify.Notifier) *ShowHandler {
	return &ShowHandler{Shows: s, Votes: v, Users: u, Reactions: r, Covers: cov, Notifier: n}
}

// SaveShow is the combined submit entry point: create a show, update your
// own show, or vote on someone else's, optionally attaching a poster. The
// request is a multipart form so the poster travels with the fields.
func (h *ShowHandler) SaveShow(c echo.Context) error {
	username := middleware.Username(c)

	sub := reconcile.Submission{
		Score:       formFloat(c, "vote", 0),
		NowWatching: formBool(c, "nw"),
		Season:      formInt(c, "season", 0),
		Episode:     formInt(c, "episode", 0),
		Comment:     c.FormValue("comment"),
		Reaction:    c.FormValue("reaction"),
		GiveUp:      formBool(c, "giveup"),
		DeferVote:   formBool(c, "later"),
	}
	sub.Normalize()
	if err := sub.Validate(); err != nil {
		return fail(c, err)
	}

	title := c.FormValue("title")
	media := c.FormValue("media")
	link := c.FormValue("link")
	showType := c.FormValue("type")
	if showType == "" {
		showType = "brand_new"
	}
	tvshowType := c.FormValue("tvshow_type")
	if tvshowType == "" {
		tvshowType = "movie"
	}
	serieSeason := formInt(c, "serie_season", 1)
	miniseries := formBool(c, "miniseries")

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		return fail(c, apperr.Wrap(apperr.KindUnauthorized, "unknown user", err))
	}

	var show *repository.Show
	if idStr := c.FormValue("id"); idStr != "" {
		id, perr := strconv.ParseUint(idStr, 10, 64)
		if perr != nil {
			return fail(c, apperr.New(apperr.KindValidation, "invalid show id"))
		}
		show, err = h.Shows.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrShowNotFound) {
				return fail(c, apperr.New(apperr.KindNotFound, "show does not exist"))
			}
			return fail(c, err)
		}
	}

	upload := h.uploadPoster(c, title)

	switch {
	case show != nil && show.UserID != user.ID:
		err = h.saveAsVoter(ctx, user, show, sub, link, serieSeason, upload)
	case show == nil:
		if title == "" || media == "" || tvshowType == "" {
			return fail(c, apperr.New(apperr.KindValidation, "Missing required data: check title, media and type"))
		}
		show = &repository.Show{
			UserID:      user.ID,
			Title:       title,
			Media:       media,
			Type:        showType,
			TvshowType:  tvshowType,
			SerieSeason: serieSeason,
			Miniseries:  miniseries,
			Link:        link,
			Poster:      upload.Name,
		}
		err = h.saveAsCreator(ctx, user, show, sub)
	default:
		if title == "" || media == "" || tvshowType == "" {
			return fail(c, apperr.New(apperr.KindValidation, "Missing required data: check title, media and type"))
		}
		show.Title = title
		show.Media = media
		show.Type = showType
		show.TvshowType = tvshowType
		show.SerieSeason = serieSeason
		show.Miniseries = miniseries
		show.Link = link
		if upload.Stored {
			show.Poster = upload.Name
		}
		err = h.saveAsOwner(ctx, user, show, sub, upload)
	}
	if err != nil {
		return fail(c, err)
	}

	uploadResult := "failure"
	if upload.Stored {
		uploadResult = "success"
	}
	return ok(c, echo.Map{
		"message":       "TvShow/Movie " + show.Title + " saved!",
		"upload_result": echo.Map{"result": uploadResult, "poster": upload.Name},
	})
}

// uploadPoster stores the optional "pic" form file. A missing file or a
// failed store both come back as a non-stored result.
func (h *ShowHandler) uploadPoster(c echo.Context, title string) covers.Result {
	fh, err := c.FormFile("pic")
	if err != nil {
		return covers.Result{}
	}
	f, err := fh.Open()
	if err != nil {
		return covers.Result{}
	}
	defer f.Close()
	name := title + "_" + fh.Filename
	return h.Covers.Save(f, name, fh.Header.Get("Content-Type"))
}

// saveAsVoter handles a non-owner submission: reconcile the caller's vote,
// then apply the show-level contributions a voter is allowed to make
// (season count, poster, link).
func (h *ShowHandler) saveAsVoter(ctx context.Context, user repository.User, show *repository.Show,
	sub reconcile.Submission, link string, serieSeason int, upload covers.Result) error {
	if err := h.reconcileVote(ctx, user, show, sub); err != nil {
		return err
	}

	prevLink := show.Link
	show.SerieSeason = serieSeason
	if upload.Stored {
		show.Poster = upload.Name
	}
	if link != "" {
		show.Link = link
	}
	if err := h.Shows.Update(ctx, show); err != nil {
		return err
	}
	if upload.Stored || (prevLink == "" && link != "") {
		return h.Notifier.Emit(ctx, reconcile.ShowEnriched(user.Username, show.Title))
	}
	return nil
}

// saveAsCreator inserts a brand-new show and, unless the vote is deferred,
// the creator's first vote.
func (h *ShowHandler) saveAsCreator(ctx context.Context, user repository.User, show *repository.Show,
	sub reconcile.Submission) error {
	if err := h.Shows.Create(ctx, show); err != nil {
		return err
	}
	if err := h.reconcileVote(ctx, user, show, sub); err != nil {
		return err
	}
	return h.Notifier.Emit(ctx, reconcile.ShowCreated(user.Username, show.Title))
}

// saveAsOwner rewrites the owner's show record and reconciles their vote.
func (h *ShowHandler) saveAsOwner(ctx context.Context, user repository.User, show *repository.Show,
	sub reconcile.Submission, upload covers.Result) error {
	if err := h.Shows.Update(ctx, show); err != nil {
		return err
	}
	if err := h.reconcileVote(ctx, user, show, sub); err != nil {
		return err
	}
	if upload.Stored {
		return h.Notifier.Emit(ctx, reconcile.ShowPosterAdded(user.Username, show.Title))
	}
	return nil
}

// reconcileVote runs the reconciliation engine against the caller's prior
// vote and applies the resulting plan. Events are only emitted once the
// ledger mutation succeeded, so a failed write never notifies.
func (h *ShowHandler) reconcileVote(ctx context.Context, user repository.User, show *repository.Show,
	sub reconcile.Submission) error {
	var prior *reconcile.Prior
	existing, err := h.Votes.GetByUserAndShow(ctx, user.ID, show.ID)
	switch {
	case err == nil:
		prior = &reconcile.Prior{NowWatching: existing.NowWatching, Comment: existing.Comment}
	case errors.Is(err, repository.ErrVoteNotFound):
		// first submission for this pair
	default:
		return err
	}

	res := reconcile.Reconcile(user.Username, show.Title, prior, sub)

	var voteID uint64
	switch res.Action {
	case reconcile.ActionCreate:
		v := &repository.Vote{
			UserID:      user.ID,
			ShowID:      show.ID,
			Score:       sub.Score,
			NowWatching: sub.NowWatching,
			Season:      sub.Season,
			Episode:     sub.Episode,
			Comment:     sub.Comment,
		}
		if err := h.Votes.Create(ctx, v); err != nil {
			return err
		}
		voteID = v.ID
	case reconcile.ActionUpdate:
		existing.Score = sub.Score
		existing.NowWatching = sub.NowWatching
		existing.Season = sub.Season
		existing.Episode = sub.Episode
		existing.Comment = sub.Comment
		if err := h.Votes.Update(ctx, existing); err != nil {
			return err
		}
		voteID = existing.ID
	case reconcile.ActionDelete:
		if err := h.Votes.Delete(ctx, existing.ID); err != nil {
			return err
		}
	case reconcile.ActionNone:
		return nil
	}

	if res.BindReaction && voteID != 0 {
		if err := h.Reactions.Set(ctx, voteID, user.ID, sub.Reaction); err != nil {
			return err
		}
	}
	return h.Notifier.Emit(ctx, res.Events...)
}

type deleteShowReq struct {
	ID uint64 `json:"id"`
}

// DeleteShow removes a show unless any other user has a vote on it. The
// conflict response names the blocking title so clients can show it.
func (h *ShowHandler) DeleteShow(c echo.Context) error {
	username := middleware.Username(c)

	var req deleteShowReq
	if err := c.Bind(&req); err != nil || req.ID == 0 {
		return fail(c, apperr.New(apperr.KindValidation, "invalid show id"))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, username)
	if err != nil {
		return fail(c, apperr.Wrap(apperr.KindUnauthorized, "unknown user", err))
	}
	show, err := h.Shows.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, repository.ErrShowNotFound) {
			return fail(c, apperr.Newf(apperr.KindNotFound,
				"Cannot delete tvshow with id=%d. It does not exist!", req.ID))
		}
		return fail(c, err)
	}

	others, err := h.Votes.CountOthers(ctx, show.ID, user.ID)
	if err != nil {
		return fail(c, err)
	}
	if others > 0 {
		return fail(c, apperr.Newf(apperr.KindConflict,
			"Cannot delete %s. It has been voted by someone else!", show.Title))
	}

	if err := h.Shows.Delete(ctx, show.ID); err != nil {
		return fail(c, err)
	}
	return ok(c, echo.Map{"message": "Tvshow with id=" + strconv.FormatUint(req.ID, 10) + " deleted successfully."})
}
