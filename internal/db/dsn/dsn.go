// Package dsn builds database connection strings from the configuration.
package dsn

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/headless-tools/headless-tools-cms/internal/config"
)

// MySQL builds the go-sql-driver DSN, e.g. user:pw@tcp(host:3306)/name?parseTime=True.
func MySQL(db *config.DB) string {
	out := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
		db.User,
		db.Password,
		db.Host,
		db.Port,
		db.Name,
	)

	if db.Extras != "" {
		out += "?" + db.Extras
	}

	return out
}

// Postgres builds a postgres:// connection URI. Extras are appended as query, e.g. sslmode=disable.
func Postgres(db *config.DB) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(db.User, db.Password),
		Host:     db.Host + ":" + strconv.Itoa(db.Port),
		Path:     "/" + db.Name,
		RawQuery: db.Extras,
	}

	return u.String()
}

// SQLite returns the database file path, adding the pragmas every connection needs.
func SQLite(db *config.DB) string {
	p := db.Path
	if p == "" {
		p = "headless-tools-cms.db"
	}

	q := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if db.Extras != "" {
		q += "&" + db.Extras
	}

	return "file:" + p + "?" + q
}
