package model

import "time"

// Kind describes one catalog resource.  Movies and planets share the same
// record shape; a Kind only tells the service, store and presenter which
// table to use, how to name things in messages and whether the optional
// release date column applies.
//
// Fields:
//  Name           – singular lower-case noun used in routes and events ("movie").
//  Plural         – plural noun used for the URL prefix and list envelope key.
//  Title          – capitalised noun used in response messages ("Movie").
//  Table          – backing MySQL table.
//  HasReleaseDate – when true, release_date is required on create and rendered.
type Kind struct {
	Name           string
	Plural         string
	Title          string
	Table          string
	HasReleaseDate bool
}

// Movie is the schema descriptor for the movies resource.
var Movie = Kind{
	Name:           "movie",
	Plural:         "movies",
	Title:          "Movie",
	Table:          "movies",
	HasReleaseDate: true,
}

// Planet is the schema descriptor for the planets resource.
var Planet = Kind{
	Name:   "planet",
	Plural: "planets",
	Title:  "Planet",
	Table:  "planets",
}

// Kinds lists every resource served by the API.
var Kinds = []Kind{Movie, Planet}

// DateLayout is the wire and storage format for release dates.
const DateLayout = "2006-01-02"

// Record represents a single movie or planet row.
//
// Fields:
//  ID          – surrogate primary key assigned by the store.
//  Name        – display name, 1-50 characters.
//  ReleaseDate – calendar date; nil for kinds without a release date.
//  IsFavorite  – false on creation, flipped to true by favorite marking.
//  CustomName  – nil until a favorite marking supplies one.
//  CreatedAt   – set once on insert.
//  UpdatedAt   – refreshed by every mutation.
type Record struct {
	ID          uint64     `db:"id"`
	Name        string     `db:"name"`
	ReleaseDate *time.Time `db:"release_date"`
	IsFavorite  bool       `db:"is_favorite"`
	CustomName  *string    `db:"custom_name"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

// Changes names the fields an update overwrites.  Nil fields are left
// untouched.  UpdatedAt is always refreshed by the store.
type Changes struct {
	IsFavorite *bool
	CustomName *string
}
