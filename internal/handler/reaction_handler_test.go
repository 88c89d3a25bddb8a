package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviecircle/backend/internal/notify"
	"github.com/moviecircle/backend/internal/repository"
)

func newReactionFixture(voteAuthor string, authorID uint64) (*ReactionHandler, *fakeReactions, *fakeNotifs) {
	users := &fakeUsers{byName: map[string]repository.User{
		"anna": {ID: 1, Username: "anna", Name: "Anna"},
	}}
	votes := &fakeVotes{byID: map[uint64]*repository.Vote{
		5: {ID: 5, UserID: authorID, Username: voteAuthor, ShowTitle: "Dune"},
	}}
	reactions := &fakeReactions{}
	notifs := &fakeNotifs{}
	h := NewReactionHandler(votes, users, reactions, notify.New(notifs, nil))
	return h, reactions, notifs
}

func TestSetReactionOnForeignVote(t *testing.T) {
	h, reactions, notifs := newReactionFixture("bob", 2)

	rec, resp := doJSON(t, h.SetReaction, "anna", `{"vote_id":5,"code":"W"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := resp["payload"].(map[string]any)
	assert.Equal(t, float64(1), payload["count"])
	assert.Equal(t, true, payload["mine"])
	assert.Equal(t, "W", payload["code"])
	assert.Equal(t, "W", reactions.codes[reactionKey{5, 1}])

	require.Len(t, notifs.rows, 1)
	assert.Equal(t, "anna has just liked a vote", notifs.rows[0].Title)
	assert.Equal(t, "Title: Dune - Vote by bob", notifs.rows[0].Message)
}

func TestSetReactionOnOwnVoteIsSilent(t *testing.T) {
	h, reactions, notifs := newReactionFixture("anna", 1)

	rec, _ := doJSON(t, h.SetReaction, "anna", `{"vote_id":5,"code":"L"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "L", reactions.codes[reactionKey{5, 1}])
	assert.Empty(t, notifs.rows)
}

func TestSetReactionNeutralRemoves(t *testing.T) {
	h, reactions, notifs := newReactionFixture("bob", 2)
	reactions.codes = map[reactionKey]string{
		{5, 1}: "L", // caller's prior reaction
		{5, 2}: "C", // someone else's stays
	}

	rec, resp := doJSON(t, h.SetReaction, "anna", `{"vote_id":5,"code":"O"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	payload := resp["payload"].(map[string]any)
	assert.Equal(t, float64(1), payload["count"])
	assert.Equal(t, false, payload["mine"])
	assert.Equal(t, "", payload["code"])
	assert.Empty(t, notifs.rows)
}

func TestSetReactionUnknownCode(t *testing.T) {
	h, _, _ := newReactionFixture("bob", 2)

	rec, resp := doJSON(t, h.SetReaction, "anna", `{"vote_id":5,"code":"X"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, `unknown reaction code "X"`, resp["message"])
}

func TestSetReactionMissingVote(t *testing.T) {
	h, _, _ := newReactionFixture("bob", 2)

	rec, resp := doJSON(t, h.SetReaction, "anna", `{"vote_id":42,"code":"L"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "vote does not exist", resp["message"])
}
