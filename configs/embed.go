// Package configs embeds the commented configuration template written by
// `indentstat config init`.
//
// The template must stay in step with config.NewConfig: loading it yields
// exactly the built-in defaults.
package configs

import _ "embed"

// ConfigTemplate is the commented default configuration.
//
//go:embed config.example.yaml
var ConfigTemplate string
