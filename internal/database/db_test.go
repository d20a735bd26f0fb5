package database

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/starwars-catalog/internal/model"
)

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"app:secret@tcp(db:3306)/catalog?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("app", "secret", "db", "3306", "catalog"))
	assert.Equal(t,
		"root@tcp(localhost:3306)/catalog?charset=utf8mb4&parseTime=true&loc=UTC",
		DSN("root", "", "localhost", "3306", "catalog"))
}

func TestTableDDL(t *testing.T) {
	movies := TableDDL(model.Movie)
	assert.True(t, strings.HasPrefix(movies, "CREATE TABLE IF NOT EXISTS movies ("))
	assert.Contains(t, movies, "release_date DATE NOT NULL")
	assert.Contains(t, movies, "name VARCHAR(50) NOT NULL")
	assert.Contains(t, movies, "custom_name VARCHAR(50) NULL")

	planets := TableDDL(model.Planet)
	assert.Contains(t, planets, "CREATE TABLE IF NOT EXISTS planets (")
	assert.NotContains(t, planets, "release_date")
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS movies")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS planets")).WillReturnError(errors.New("denied"))

	err = EnsureSchema(context.Background(), sqlx.NewDb(db, "mysql"), model.Kinds...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create table planets")
	assert.NoError(t, mock.ExpectationsWereMet())
}
