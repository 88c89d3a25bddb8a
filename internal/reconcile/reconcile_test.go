package reconcile

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviecircle/backend/internal/apperr"
)

func eventTypes(evs []Event) []string {
	var out []string
	for _, e := range evs {
		out = append(out, e.Type)
	}
	return out
}

func TestReconcileFirstVote(t *testing.T) {
	t.Run("final verdict emits new_vote", func(t *testing.T) {
		res := Reconcile("anna", "Dune", nil, Submission{Score: 8, Season: 1, Episode: 3})
		assert.Equal(t, ActionCreate, res.Action)
		require.Len(t, res.Events, 1)
		assert.Equal(t, EventNewVote, res.Events[0].Type)
		assert.Equal(t, "anna has just voted for a movie...", res.Events[0].Title)
		assert.Equal(t, "Title: Dune - Vote: 8 ", res.Events[0].Message)
		assert.Equal(t, "anna", res.Events[0].Username)
	})

	t.Run("in-progress watch stays silent", func(t *testing.T) {
		res := Reconcile("anna", "Dune", nil, Submission{Score: 8, NowWatching: true, Season: 2, Episode: 4})
		assert.Equal(t, ActionCreate, res.Action)
		assert.Empty(t, res.Events)
	})

	t.Run("watching from episode one emits new_nw", func(t *testing.T) {
		res := Reconcile("anna", "Dune", nil, Submission{Score: 8, NowWatching: true, Season: 3, Episode: 1})
		require.Equal(t, []string{EventNowWatch}, eventTypes(res.Events))
		assert.Equal(t, "anna has just started to watch a movie...", res.Events[0].Title)
		assert.Equal(t, "Title: Dune - S3 E1 ", res.Events[0].Message)
	})

	t.Run("reaction code binds to the new vote", func(t *testing.T) {
		res := Reconcile("anna", "Dune", nil, Submission{Score: 8, Season: 1, Episode: 1, Reaction: ReactionLike})
		assert.True(t, res.BindReaction)
	})

	t.Run("neutral reaction does not bind", func(t *testing.T) {
		res := Reconcile("anna", "Dune", nil, Submission{Score: 8, Season: 1, Episode: 1, Reaction: ReactionNone})
		assert.False(t, res.BindReaction)
	})
}

func TestReconcileGiveUp(t *testing.T) {
	prior := &Prior{NowWatching: true}
	res := Reconcile("bob", "Lost", prior, Submission{GiveUp: true, NowWatching: true, Season: 1, Episode: 1})

	assert.Equal(t, ActionDelete, res.Action)
	require.Equal(t, []string{EventGiveUp}, eventTypes(res.Events),
		"give-up must not emit new_vote/new_comment/new_nw in the same call")
	assert.Equal(t, "bob has just gave up to follow a movie", res.Events[0].Title)
	assert.Equal(t, "Lost", res.Events[0].Message)
}

func TestReconcileUpdateTransitions(t *testing.T) {
	cases := []struct {
		name  string
		prior Prior
		sub   Submission
		want  []string
	}{
		{
			name:  "watching true to false emits new_vote",
			prior: Prior{NowWatching: true},
			sub:   Submission{Score: 6, Season: 1, Episode: 5},
			want:  []string{EventNewVote},
		},
		{
			name:  "watching false to false stays silent",
			prior: Prior{},
			sub:   Submission{Score: 6, Season: 1, Episode: 5},
			want:  nil,
		},
		{
			name:  "watching true to true stays silent",
			prior: Prior{NowWatching: true},
			sub:   Submission{Score: 6, NowWatching: true, Season: 1, Episode: 5},
			want:  nil,
		},
		{
			name:  "first comment emits new_comment",
			prior: Prior{},
			sub:   Submission{Score: 6, Season: 1, Episode: 5, Comment: "slow start, great finish"},
			want:  []string{EventNewComment},
		},
		{
			name:  "editing an existing comment stays silent",
			prior: Prior{Comment: "old take"},
			sub:   Submission{Score: 6, Season: 1, Episode: 5, Comment: "new take"},
			want:  nil,
		},
		{
			name:  "finish plus first comment emits both, in order",
			prior: Prior{NowWatching: true},
			sub:   Submission{Score: 9, Season: 1, Episode: 8, Comment: "what an ending"},
			want:  []string{EventNewVote, EventNewComment},
		},
		{
			name:  "restart on episode one emits new_nw regardless of prior state",
			prior: Prior{Comment: "rewatching"},
			sub:   Submission{Score: 7, NowWatching: true, Season: 2, Episode: 1, Comment: "rewatching"},
			want:  []string{EventNowWatch},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Reconcile("carol", "Severance", &tc.prior, tc.sub)
			assert.Equal(t, ActionUpdate, res.Action)
			assert.Equal(t, tc.want, eventTypes(res.Events))
		})
	}
}

func TestReconcileCommentTruncation(t *testing.T) {
	long := strings.Repeat("x", 45)
	res := Reconcile("dave", "Fargo", &Prior{}, Submission{Score: 5, Season: 1, Episode: 2, Comment: long})
	require.Equal(t, []string{EventNewComment}, eventTypes(res.Events))
	assert.Equal(t, "Title: Fargo - "+strings.Repeat("x", 30)+"... ", res.Events[0].Message)
}

func TestReconcileDeferVote(t *testing.T) {
	res := Reconcile("erin", "Heat", &Prior{NowWatching: true},
		Submission{Score: 10, NowWatching: true, Season: 1, Episode: 1, DeferVote: true})
	assert.Equal(t, ActionNone, res.Action)
	assert.Empty(t, res.Events, "defer-vote must not emit events, new_nw included")
	assert.False(t, res.BindReaction)
}

func TestSubmissionNormalize(t *testing.T) {
	s := Submission{}
	s.Normalize()
	assert.Equal(t, 1, s.Season)
	assert.Equal(t, 1, s.Episode)

	s = Submission{Season: 3, Episode: 7}
	s.Normalize()
	assert.Equal(t, 3, s.Season)
	assert.Equal(t, 7, s.Episode)
}

func TestSubmissionValidate(t *testing.T) {
	cases := []struct {
		name string
		sub  Submission
		ok   bool
	}{
		{"valid", Submission{Score: 7.5, Season: 1, Episode: 1}, true},
		{"score too high", Submission{Score: 11, Season: 1, Episode: 1}, false},
		{"score negative", Submission{Score: -1, Season: 1, Episode: 1}, false},
		{"season zero", Submission{Score: 5, Season: 0, Episode: 1}, false},
		{"episode negative", Submission{Score: 5, Season: 1, Episode: -2}, false},
		{"unknown reaction", Submission{Score: 5, Season: 1, Episode: 1, Reaction: "Z"}, false},
		{"neutral reaction", Submission{Score: 5, Season: 1, Episode: 1, Reaction: ReactionNone}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.sub.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			}
		})
	}
}

func TestScoreString(t *testing.T) {
	assert.Equal(t, "8", ScoreString(8))
	assert.Equal(t, "7.5", ScoreString(7.5))
	assert.Equal(t, "0", ScoreString(0))
}

func TestShowEventTemplates(t *testing.T) {
	created := ShowCreated("anna", "Dune")
	assert.Equal(t, EventNewMovie, created.Type)
	assert.Equal(t, "anna has just added a new movie", created.Title)
	assert.Equal(t, "Title: Dune", created.Message)

	poster := ShowPosterAdded("anna", "Dune")
	assert.Equal(t, "anna has just added a new movie poster", poster.Title)

	enriched := ShowEnriched("bob", "Dune")
	assert.Equal(t, "bob has just added a new movie poster or a link", enriched.Title)

	liked := VoteLiked("bob", "Dune", "anna")
	assert.Equal(t, EventLike, liked.Type)
	assert.Equal(t, "bob has just liked a vote", liked.Title)
	assert.Equal(t, "Title: Dune - Vote by anna", liked.Message)
	assert.Equal(t, "bob", liked.Username)
}
