package config

import "fmt"

// Document is the parsed user configuration.
type Document struct {
	// Default names the profile alias used when none is requested.
	Default string
	// Profiles maps profile aliases to filesystem paths.
	Profiles map[string]string
	// SourcePath records where the document was read from, empty when the
	// configuration file did not exist.
	SourcePath string
}

// ParseError reports a configuration file that could not be parsed or
// validated.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse configuration %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// NoDefaultProfileError reports that no profile alias was requested and the
// configuration declares no default.
type NoDefaultProfileError struct{}

func (e *NoDefaultProfileError) Error() string {
	return "no profile requested and configuration declares no default profile"
}

// UnknownProfileError reports a profile alias absent from the configuration.
type UnknownProfileError struct {
	Alias string
}

func (e *UnknownProfileError) Error() string {
	return fmt.Sprintf("profile %q is not declared in the configuration", e.Alias)
}
