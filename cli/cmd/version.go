package cmd

import (
	"fmt"

	"github.com/ardnew/matscript/pkg"
)

// Version prints the program name and version.
type Version struct {
	Short bool `help:"Print the version number only." short:"s"`
}

// Run executes the version command.
func (v *Version) Run(streams *Streams) error {
	if v.Short {
		_, err := fmt.Fprintln(streams.Out, pkg.Version())

		return err
	}

	_, err := fmt.Fprintf(streams.Out, "%s %s\n", pkg.Name, pkg.Version())

	return err
}
