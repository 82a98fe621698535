//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version returns the semantic version of the module embedded at build time.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the command name. It also names the configuration and cache
	// directories.
	Name = "matscript"

	// Description is a one-line summary used in help output.
	Description = "Read, query, and resolve OGRE/Gazebo material scripts"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
