package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound  = goerr.New("configuration file not found")
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrInvalidSelector = goerr.New("invalid CSS selector")
	ErrInvalidDuration = goerr.New("invalid duration")
	ErrMissingRequired = goerr.New("required option is missing")
)

// Context keys for error values
const (
	ConfigPathKey    = "config_path"
	SelectorIndexKey = "selector_index"
	TimeoutKey       = "timeout"
	OptionKey        = "option"
)
