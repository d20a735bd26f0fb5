package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/starwars-catalog/internal/model"
	"github.com/iliyamo/starwars-catalog/internal/repository"
	"github.com/iliyamo/starwars-catalog/internal/service"
)

func TestPopulate(t *testing.T) {
	ctx := context.Background()
	planetStore := repository.NewMemoryRepo(model.Planet)
	movieStore := repository.NewMemoryRepo(model.Movie)
	planets := service.NewResourceService(model.Planet, planetStore, nil, zap.NewNop())
	movies := service.NewResourceService(model.Movie, movieStore, nil, zap.NewNop())

	res, err := Populate(ctx, planets, movies)
	require.NoError(t, err)
	assert.Equal(t, Result{Planets: len(Planets), Movies: len(Movies)}, res)

	got, err := planetStore.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, got, len(Planets))
	assert.Equal(t, "Tatooine", got[0].Name)
	assert.False(t, got[0].IsFavorite)

	jedi, err := movieStore.List(ctx, "jedi")
	require.NoError(t, err)
	require.Len(t, jedi, 1)
	assert.Equal(t, "1983-05-25", jedi[0].ReleaseDate.Format(model.DateLayout))
}
