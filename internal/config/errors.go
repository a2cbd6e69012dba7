package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")
	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")
	// ErrEmptySecret error if config webserver.secret is empty.
	ErrEmptySecret = errors.New("toml config webserver.secret can not be empty")
	// ErrUnknownDBEngine error if config db.engine is not mysql, postgres or sqlite.
	ErrUnknownDBEngine = errors.New("toml config db.engine must be mysql, postgres or sqlite")
	// ErrUnknownEnvironment error if config environment is not one of production, staging, development.
	ErrUnknownEnvironment = errors.New("toml config environment must be production, staging or development")
)
