package config

// Supported gorm engines.
const (
	DBEngineMySQL    = "mysql"
	DBEnginePostgres = "postgres"
	DBEngineSQLite   = "sqlite"
)

// DB holds the database configuration settings.
type DB struct {
	Engine   string // mysql, postgres or sqlite
	Extras   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	Path     string // sqlite database file, ":memory:" for an in-memory database
}
