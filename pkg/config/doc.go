// Package config loads typed configuration structs from environment
// variables, with an optional .env file for local development.
//
// Parsing is delegated to github.com/caarlos0/env; struct fields declare
// their variable names, defaults and required flags via `env:` tags.
package config
