// Package profile resolves named development profiles to filesystem
// directories and discovers the constraint files they carry.
package profile

import "fmt"

// Profile is a resolved development profile directory.
type Profile struct {
	// Alias is the short name the profile was requested under, empty when
	// the profile was addressed by explicit path.
	Alias string
	// Path is the absolute directory path.
	Path string
}

// NotFoundError reports a profile path that does not exist or is not a
// directory.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("profile directory %s does not exist or is not a directory", e.Path)
}
