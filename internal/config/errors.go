package config

import (
	"errors"
)

var (
	// ErrEmptyURL error if config webserver.URL is empty.
	ErrEmptyURL = errors.New("toml config webserver.url can not be empty")

	// ErrWebServerPortCanNotBeZero error if config webserver listening port is 0.
	ErrWebServerPortCanNotBeZero = errors.New("toml config webserver.port listening port can not be 0")

	// ErrUnsupportedGormEngine error if config db.gormEngine is not mysql, postgres or sqlite.
	ErrUnsupportedGormEngine = errors.New("toml config db.gormEngine is not supported")

	// ErrEmptyCacheAddr error if the resolver cache is enabled without a redis address.
	ErrEmptyCacheAddr = errors.New("toml config cache.addr can not be empty when the cache is enabled")

	// ErrNilConfig error if a service is created without a config.
	ErrNilConfig = errors.New("config is nil")
)
