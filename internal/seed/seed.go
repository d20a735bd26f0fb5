// Package seed inserts the fixed sample catalog used for demos.
package seed

import (
	"context"
	"fmt"

	"github.com/iliyamo/starwars-catalog/internal/service"
)

// Planets are the sample planet names.
var Planets = []string{"Tatooine", "Alderaan", "Yavin IV", "Coruscant", "Hoth"}

// Movies are the sample movies with their release dates.
var Movies = []service.CreateInput{
	{Name: "A New Hope", ReleaseDate: "1977-05-25"},
	{Name: "The Empire Strikes Back", ReleaseDate: "1980-05-17"},
	{Name: "Return of the Jedi", ReleaseDate: "1983-05-25"},
	{Name: "The Phantom Menace", ReleaseDate: "1999-05-19"},
	{Name: "Attack of the Clones", ReleaseDate: "2002-05-16"},
	{Name: "Revenge of the Sith", ReleaseDate: "2005-05-19"},
}

// Result counts the inserted records.
type Result struct {
	Planets int
	Movies  int
}

// Populate inserts every sample planet, then every sample movie, through
// the services so the usual validation applies.  It stops at the first
// failure and reports how far it got.
func Populate(ctx context.Context, planets, movies *service.ResourceService) (Result, error) {
	var res Result
	for _, name := range Planets {
		if _, err := planets.Create(ctx, service.CreateInput{Name: name}); err != nil {
			return res, fmt.Errorf("seed planet %q: %w", name, err)
		}
		res.Planets++
	}
	for _, m := range Movies {
		if _, err := movies.Create(ctx, m); err != nil {
			return res, fmt.Errorf("seed movie %q: %w", m.Name, err)
		}
		res.Movies++
	}
	return res, nil
}
