package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviecircle/backend/internal/notify"
	"github.com/moviecircle/backend/internal/repository"
)

// In-memory stores shared by the handler tests. Methods the test under
// consideration never reaches are left to the embedded interface.

type fakeUsers struct {
	UserStore
	byName    map[string]repository.User
	created   []string
	createErr error
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (repository.User, error) {
	u, ok := f.byName[username]
	if !ok {
		return repository.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUsers) Create(_ context.Context, username, _, _ string, _ int) (uint64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.created = append(f.created, username)
	return uint64(len(f.created)), nil
}

type fakeShows struct {
	ShowStore
	byID    map[uint64]*repository.Show
	deleted []uint64
}

func (f *fakeShows) GetByID(_ context.Context, id uint64) (*repository.Show, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrShowNotFound
	}
	return s, nil
}

func (f *fakeShows) Delete(_ context.Context, id uint64) error {
	f.deleted = append(f.deleted, id)
	delete(f.byID, id)
	return nil
}

type fakeVotes struct {
	VoteStore
	byID   map[uint64]*repository.Vote
	others int
}

func (f *fakeVotes) GetByID(_ context.Context, id uint64) (*repository.Vote, error) {
	v, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrVoteNotFound
	}
	return v, nil
}

func (f *fakeVotes) CountOthers(_ context.Context, _, _ uint64) (int, error) {
	return f.others, nil
}

type reactionKey struct{ vote, user uint64 }

type fakeReactions struct {
	codes map[reactionKey]string
}

func (f *fakeReactions) Set(_ context.Context, voteID, userID uint64, code string) error {
	if f.codes == nil {
		f.codes = map[reactionKey]string{}
	}
	f.codes[reactionKey{voteID, userID}] = code
	return nil
}

func (f *fakeReactions) Remove(_ context.Context, voteID, userID uint64) error {
	delete(f.codes, reactionKey{voteID, userID})
	return nil
}

func (f *fakeReactions) CountForVote(_ context.Context, voteID uint64) (int, error) {
	n := 0
	for k := range f.codes {
		if k.vote == voteID {
			n++
		}
	}
	return n, nil
}

func (f *fakeReactions) GetCode(_ context.Context, voteID, userID uint64) (string, error) {
	return f.codes[reactionKey{voteID, userID}], nil
}

type fakeNotifs struct {
	rows []repository.Notification
}

func (f *fakeNotifs) Create(_ context.Context, n *repository.Notification) error {
	n.ID = uint64(len(f.rows) + 1)
	f.rows = append(f.rows, *n)
	return nil
}

// doJSON runs handler h against a JSON POST issued by username and decodes
// the response body.
func doJSON(t *testing.T, h echo.HandlerFunc, username, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", username)
	require.NoError(t, h(c))

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func newDeleteFixture(others int) (*ShowHandler, *fakeShows) {
	users := &fakeUsers{byName: map[string]repository.User{
		"anna": {ID: 1, Username: "anna", Name: "Anna"},
	}}
	shows := &fakeShows{byID: map[uint64]*repository.Show{
		7: {ID: 7, UserID: 1, Title: "Dune", Media: "cinema", TvshowType: "movie"},
	}}
	votes := &fakeVotes{others: others}
	h := NewShowHandler(shows, votes, users, &fakeReactions{}, nil, notify.New(&fakeNotifs{}, nil))
	return h, shows
}

func TestDeleteShowBlockedByForeignVote(t *testing.T) {
	h, shows := newDeleteFixture(2)

	rec, resp := doJSON(t, h.DeleteShow, "anna", `{"id":7}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "failure", resp["result"])
	assert.Equal(t, "Cannot delete Dune. It has been voted by someone else!", resp["message"])
	assert.Empty(t, shows.deleted)
}

func TestDeleteShowWithoutForeignVotes(t *testing.T) {
	h, shows := newDeleteFixture(0)

	rec, resp := doJSON(t, h.DeleteShow, "anna", `{"id":7}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp["result"])
	assert.Equal(t, "Tvshow with id=7 deleted successfully.", resp["message"])
	assert.Equal(t, []uint64{7}, shows.deleted)
}

func TestDeleteShowMissing(t *testing.T) {
	h, shows := newDeleteFixture(0)

	rec, resp := doJSON(t, h.DeleteShow, "anna", `{"id":99}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Cannot delete tvshow with id=99. It does not exist!", resp["message"])
	assert.Empty(t, shows.deleted)
}
