package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/starwars-catalog/internal/model"
)

// TimestampLayout renders created_at/updated_at as DD-MM-YYYY HH:MM:SS.
const TimestampLayout = "02-01-2006 15:04:05"

// Detail is the payload returned for one record.  URL is filled only for
// list items.
type Detail struct {
	Name        string  `json:"name"`
	IsFavorite  bool    `json:"is_favorite"`
	ReleaseDate *string `json:"release_date,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
	URL         string  `json:"url,omitempty"`
}

// FavoriteDetail is the payload returned by favorite marking.
type FavoriteDetail struct {
	CustomName *string `json:"custom_name"`
}

// Presenter turns stored records into response payloads.  Timestamps are
// converted to Location before formatting.
type Presenter struct {
	Kind     model.Kind
	Location *time.Location
}

// NewPresenter returns a Presenter; a nil loc means the server's local zone.
func NewPresenter(kind model.Kind, loc *time.Location) Presenter {
	if loc == nil {
		loc = time.Local
	}
	return Presenter{Kind: kind, Location: loc}
}

// Detail renders a single-record payload without a url.
func (p Presenter) Detail(rec *model.Record) Detail {
	d := Detail{
		Name:       rec.Name,
		IsFavorite: rec.IsFavorite,
		CreatedAt:  p.timestamp(rec.CreatedAt),
		UpdatedAt:  p.timestamp(rec.UpdatedAt),
	}
	if p.Kind.HasReleaseDate && rec.ReleaseDate != nil {
		s := rec.ReleaseDate.Format(model.DateLayout)
		d.ReleaseDate = &s
	}
	return d
}

// ListItem renders a record as a list entry with an absolute detail link.
func (p Presenter) ListItem(rec *model.Record, baseURL string) Detail {
	d := p.Detail(rec)
	d.URL = strings.TrimSuffix(baseURL, "/") + p.DetailPath(rec.ID)
	return d
}

// List renders every record as a list entry.  The result is never nil so it
// always encodes as a JSON array.
func (p Presenter) List(recs []*model.Record, baseURL string) []Detail {
	out := make([]Detail, 0, len(recs))
	for _, rec := range recs {
		out = append(out, p.ListItem(rec, baseURL))
	}
	return out
}

// Favorite renders the favorite-marking result.
func (p Presenter) Favorite(rec *model.Record) FavoriteDetail {
	return FavoriteDetail{CustomName: rec.CustomName}
}

// DetailPath is the route of the record's detail endpoint.
func (p Presenter) DetailPath(id uint64) string {
	return "/" + p.Kind.Plural + "/" + strconv.FormatUint(id, 10) + "/"
}

func (p Presenter) timestamp(t time.Time) string {
	return t.In(p.Location).Format(TimestampLayout)
}
