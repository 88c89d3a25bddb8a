// Package reconcile implements the vote reconciliation engine. Given a
// user's submission for a show and a snapshot of their prior vote, it
// decides the ledger mutation and the notification events that mutation
// implies. The engine touches no store: callers apply the returned plan and
// persist the events, which keeps every transition unit-testable.
package reconcile

import (
	"fmt"
	"strconv"

	"github.com/moviecircle/backend/internal/apperr"
)

// Event types form a closed vocabulary shared with the notification feed.
const (
	EventNewMovie   = "new_movie"
	EventNewVote    = "new_vote"
	EventNewComment = "new_comment"
	EventGiveUp     = "give_up"
	EventNowWatch   = "new_nw"
	EventLike       = "like"
)

// Reaction codes. ReactionNone is the neutral sentinel meaning "remove my
// reaction"; the rest are the closed set of stored codes.
const (
	ReactionNone = "O"
	ReactionLike = "L"
	ReactionWow  = "W"
	ReactionClap = "C"
)

// ValidReaction reports whether code belongs to the closed reaction set.
func ValidReaction(code string) bool {
	switch code {
	case ReactionNone, ReactionLike, ReactionWow, ReactionClap:
		return true
	}
	return false
}

// Event is one notification to be recorded as a consequence of a
// reconciliation. Title and Message follow fixed templates interpolating
// the acting username and show data.
type Event struct {
	Type     string
	Title    string
	Message  string
	Username string
}

// Submission is a user's watch-state submission for one show, with
// defaults already applied (see Normalize).
type Submission struct {
	Score       float64
	NowWatching bool
	Season      int
	Episode     int
	Comment     string
	Reaction    string // optional reaction code, "" when absent
	GiveUp      bool
	DeferVote   bool // update the show record only, leave the vote alone
}

// Prior is the snapshot of an existing vote that reconciliation compares
// against. Nil prior means the user has not voted on the show yet.
type Prior struct {
	NowWatching bool
	Comment     string
}

// Action is the ledger mutation the caller must apply.
type Action int

const (
	// ActionNone leaves the ledger untouched (defer-vote submissions).
	ActionNone Action = iota
	// ActionCreate inserts a new vote with the submitted fields.
	ActionCreate
	// ActionUpdate overwrites the existing vote with the submitted fields.
	ActionUpdate
	// ActionDelete removes the existing vote (give-up).
	ActionDelete
)

// Result is the outcome of a reconciliation: the mutation to apply, whether
// a reaction row must be bound to the resulting vote, and the notification
// events to record once the mutation succeeds.
type Result struct {
	Action       Action
	BindReaction bool
	Events       []Event
}

// maxScore bounds the accepted numeric score range [0, maxScore].
const maxScore = 10

// commentPreview bounds how much of a comment appears in notifications.
const commentPreview = 30

// Normalize applies submission defaults: season and episode fall back to 1
// when left at zero. Negative values are not defaulted; Validate rejects
// them.
func (s *Submission) Normalize() {
	if s.Season == 0 {
		s.Season = 1
	}
	if s.Episode == 0 {
		s.Episode = 1
	}
}

// Validate checks the submitted fields. It returns a validation-kinded
// error naming the offending field.
func (s Submission) Validate() error {
	if s.Score < 0 || s.Score > maxScore {
		return apperr.Newf(apperr.KindValidation, "score must be between 0 and %d", maxScore)
	}
	if s.Season < 1 {
		return apperr.New(apperr.KindValidation, "season must be positive")
	}
	if s.Episode < 1 {
		return apperr.New(apperr.KindValidation, "episode must be positive")
	}
	if s.Reaction != "" && !ValidReaction(s.Reaction) {
		return apperr.Newf(apperr.KindValidation, "unknown reaction code %q", s.Reaction)
	}
	return nil
}

// Reconcile compares a submission to the prior vote state and returns the
// plan. prior is nil when the user has no vote on the show.
//
// Event rules:
//   - first vote emits new_vote unless it is an in-progress watch
//   - give-up deletes the vote and emits give_up only
//   - stopping a watch (watching true -> false) emits new_vote
//   - a first non-empty comment emits new_comment
//   - any call that mutated the ledger with final watching state on
//     episode 1 emits new_nw
func Reconcile(username, showTitle string, prior *Prior, s Submission) Result {
	if s.DeferVote {
		return Result{Action: ActionNone}
	}

	var res Result
	switch {
	case prior == nil:
		res.Action = ActionCreate
		if !s.NowWatching {
			res.Events = append(res.Events, newVoteEvent(username, showTitle, s.Score))
		}
	case s.GiveUp:
		res.Action = ActionDelete
		res.Events = append(res.Events, Event{
			Type:     EventGiveUp,
			Title:    fmt.Sprintf("%s has just gave up to follow a movie", username),
			Message:  showTitle,
			Username: username,
		})
		return res // a deleted vote triggers nothing else
	default:
		res.Action = ActionUpdate
		finished := prior.NowWatching && !s.NowWatching
		firstComment := prior.Comment == "" && s.Comment != ""
		if finished {
			res.Events = append(res.Events, newVoteEvent(username, showTitle, s.Score))
		}
		if firstComment {
			preview := s.Comment
			if r := []rune(preview); len(r) > commentPreview {
				preview = string(r[:commentPreview])
			}
			res.Events = append(res.Events, Event{
				Type:     EventNewComment,
				Title:    fmt.Sprintf("%s has just set a comment for a movie...", username),
				Message:  fmt.Sprintf("Title: %s - %s... ", showTitle, preview),
				Username: username,
			})
		}
	}

	res.BindReaction = s.Reaction != "" && s.Reaction != ReactionNone

	if s.NowWatching && s.Episode == 1 {
		res.Events = append(res.Events, Event{
			Type:     EventNowWatch,
			Title:    fmt.Sprintf("%s has just started to watch a movie...", username),
			Message:  fmt.Sprintf("Title: %s - S%d E%d ", showTitle, s.Season, s.Episode),
			Username: username,
		})
	}
	return res
}

func newVoteEvent(username, showTitle string, score float64) Event {
	return Event{
		Type:     EventNewVote,
		Title:    fmt.Sprintf("%s has just voted for a movie...", username),
		Message:  fmt.Sprintf("Title: %s - Vote: %s ", showTitle, ScoreString(score)),
		Username: username,
	}
}

// ScoreString renders a score the way it appears in notifications and
// listings: no trailing zeros, "7" not "7.0".
func ScoreString(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// ShowCreated is the event for a brand-new show entering the catalogue.
func ShowCreated(username, title string) Event {
	return Event{
		Type:     EventNewMovie,
		Title:    fmt.Sprintf("%s has just added a new movie", username),
		Message:  fmt.Sprintf("Title: %s", title),
		Username: username,
	}
}

// ShowPosterAdded is the event for an owner attaching a poster to their
// own show.
func ShowPosterAdded(username, title string) Event {
	return Event{
		Type:     EventNewMovie,
		Title:    fmt.Sprintf("%s has just added a new movie poster", username),
		Message:  fmt.Sprintf("Title: %s", title),
		Username: username,
	}
}

// ShowEnriched is the event for a non-owner contributing a poster or link
// to someone else's show.
func ShowEnriched(username, title string) Event {
	return Event{
		Type:     EventNewMovie,
		Title:    fmt.Sprintf("%s has just added a new movie poster or a link", username),
		Message:  fmt.Sprintf("Title: %s", title),
		Username: username,
	}
}

// VoteLiked is the event for a non-neutral reaction set on someone else's
// vote. Self-reactions are silent and must not reach this constructor.
func VoteLiked(actor, showTitle, voteAuthor string) Event {
	return Event{
		Type:     EventLike,
		Title:    fmt.Sprintf("%s has just liked a vote", actor),
		Message:  fmt.Sprintf("Title: %s - Vote by %s", showTitle, voteAuthor),
		Username: actor,
	}
}
