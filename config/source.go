package config

// Source indicates where a configuration value came from.
type Source string

// Configuration source constants.
const (
	// SourceDefault indicates the value is a built-in default.
	SourceDefault Source = "default"

	// SourceGlobal indicates the value came from global config
	// (~/.config/tidynote/config.yaml).
	SourceGlobal Source = "global"

	// SourceLocal indicates the value came from .tidynote.yaml in the git root.
	SourceLocal Source = "local"

	// SourceFile indicates the value came from a file named with --config.
	SourceFile Source = "file"

	// SourceEnv indicates the value came from an environment variable.
	SourceEnv Source = "env"

	// SourceFlag indicates the value was set via command-line flag.
	SourceFlag Source = "flag"
)
