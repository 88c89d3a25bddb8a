package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviecircle/backend/internal/repository"
	"github.com/moviecircle/backend/internal/session"
	"github.com/moviecircle/backend/internal/utils"
)

// AuthHandler bundles dependencies for the register and login endpoints.
type AuthHandler struct {
	Users      UserStore
	Sessions   *session.Validator
	BcryptCost int
}

func NewAuthHandler(u UserStore, s *session.Validator, bcryptCost int) *AuthHandler {
	return &AuthHandler{Users: u, Sessions: s, BcryptCost: bcryptCost}
}

type registerReq struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register creates a user and issues their first session token right away.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"result": "failure", "error": "validation", "message": "invalid body"})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"result": "failure", "error": "validation", "message": "username/password required"})
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = req.Username
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Username, name, req.Password, h.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"result": "failure", "error": "conflict", "message": "username already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"result": "failure", "error": "internal", "message": "create user failed"})
	}

	token, exp, err := h.Sessions.Issue(ctx, req.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"result": "failure", "error": "internal", "message": "issue token failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"result":  "success",
		"token":   token,
		"expires": exp,
		"user":    echo.Map{"username": req.Username, "name": name},
	})
}

// Login verifies credentials and issues a session token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"result": "failure", "error": "validation", "message": "invalid body"})
	}
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"result": "failure", "error": "validation", "message": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"result": "failure", "error": "unauthorized", "message": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"result": "failure", "error": "internal", "message": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"result": "failure", "error": "unauthorized", "message": "invalid credentials"})
	}

	token, exp, err := h.Sessions.Issue(ctx, u.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"result": "failure", "error": "internal", "message": "issue token failed"})
	}

	return ok(c, echo.Map{
		"token":   token,
		"expires": exp,
		"user":    echo.Map{"username": u.Username, "name": u.Name},
	})
}
