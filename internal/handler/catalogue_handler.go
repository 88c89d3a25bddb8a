package handler

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviecircle/backend/internal/repository"
)

// CatalogueHandler serves static reference data.
type CatalogueHandler struct {
	Catalogue *repository.CatalogueRepo
}

func NewCatalogueHandler(r *repository.CatalogueRepo) *CatalogueHandler {
	return &CatalogueHandler{Catalogue: r}
}

// ListByCategory returns the entries of one catalogue category. An unknown
// category is an empty list.
func (h *CatalogueHandler) ListByCategory(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeoutSec*time.Second)
	defer cancel()

	items, err := h.Catalogue.ListByCategory(ctx, c.Param("category"))
	if err != nil {
		return fail(c, err)
	}
	if items == nil {
		items = []repository.CatalogueEntry{}
	}
	return ok(c, echo.Map{"payload": items})
}
