package db

import "errors"

var (
	ErrProviderClosed = errors.New("database provider is closed")
)
