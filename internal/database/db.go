// Package database holds the sqlx/MySQL connection helper and the schema
// bootstrap for the catalog tables.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/starwars-catalog/internal/model"
)

// DSN builds a go-sql-driver/mysql data source name.
func DSN(user, pass, host, port, name string) string {
	auth := user
	if pass != "" {
		auth = fmt.Sprintf("%s:%s", user, pass)
	}
	// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		auth, host, port, name)
}

// Open connects to MySQL and verifies the connection.
func Open(user, pass, host, port, name string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", DSN(user, pass, host, port, name))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// TableDDL returns the CREATE TABLE statement for kind.
func TableDDL(kind model.Kind) string {
	date := ""
	if kind.HasReleaseDate {
		date = "\n\trelease_date DATE NOT NULL,"
	}
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
	name VARCHAR(50) NOT NULL,%s
	is_favorite TINYINT(1) NOT NULL DEFAULT 0,
	custom_name VARCHAR(50) NULL,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL,
	PRIMARY KEY (id),
	KEY idx_%s_name (name)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`, kind.Table, date, kind.Table)
}

// EnsureSchema creates the table of every kind when missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB, kinds ...model.Kind) error {
	for _, k := range kinds {
		if _, err := db.ExecContext(ctx, TableDDL(k)); err != nil {
			return fmt.Errorf("create table %s: %w", k.Table, err)
		}
	}
	return nil
}
