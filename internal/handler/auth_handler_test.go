package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moviecircle/backend/internal/repository"
	"github.com/moviecircle/backend/internal/session"
)

func TestRegisterIssuesSession(t *testing.T) {
	users := &fakeUsers{byName: map[string]repository.User{}}
	h := NewAuthHandler(users, session.NewValidator("test-secret", nil, 30), 4)

	rec, resp := doJSON(t, h.Register, "", `{"username":" Anna ","name":"Anna","password":"pw"}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "success", resp["result"])
	assert.NotEmpty(t, resp["token"])
	user := resp["user"].(map[string]any)
	assert.Equal(t, "anna", user["username"])
	assert.Equal(t, "Anna", user["name"])
	require.Equal(t, []string{"anna"}, users.created)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	users := &fakeUsers{createErr: repository.ErrUsernameExists}
	h := NewAuthHandler(users, session.NewValidator("test-secret", nil, 30), 4)

	rec, resp := doJSON(t, h.Register, "", `{"username":"anna","password":"pw"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "failure", resp["result"])
	assert.Equal(t, "username already exists", resp["message"])
}

func TestRegisterMissingFields(t *testing.T) {
	users := &fakeUsers{}
	h := NewAuthHandler(users, session.NewValidator("test-secret", nil, 30), 4)

	rec, _ := doJSON(t, h.Register, "", `{"username":"anna"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, users.created)
}
