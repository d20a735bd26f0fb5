package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/starwars-catalog/internal/model"
)

// AdminRow is the read-only inspection view of a record.
type AdminRow struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	CustomName  *string   `json:"custom_name"`
	IsFavorite  bool      `json:"is_favorite"`
	ReleaseDate *string   `json:"release_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Admin handles GET /admin/{resource}/.  It lists every record with its
// id and custom name, which the public payloads never expose.
func (h *ResourceHandler) Admin(c echo.Context) error {
	recs, err := h.Service.List(c.Request().Context(), "")
	if err != nil {
		return h.fail(c, err)
	}
	kind := h.Service.Kind()
	out := make([]AdminRow, 0, len(recs))
	for _, rec := range recs {
		row := AdminRow{
			ID:         rec.ID,
			Name:       rec.Name,
			CustomName: rec.CustomName,
			IsFavorite: rec.IsFavorite,
			CreatedAt:  rec.CreatedAt,
		}
		if kind.HasReleaseDate && rec.ReleaseDate != nil {
			s := rec.ReleaseDate.Format(model.DateLayout)
			row.ReleaseDate = &s
		}
		out = append(out, row)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
