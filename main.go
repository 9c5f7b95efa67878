/*
Command-line tool for maintaining archive manifests.

Usage:

	$ syphon [<flags>] <subcommand> [<args> ...]

Use 'syphon help' to see more details.
*/
package main

import (
	"os"

	"github.com/alecthomas/kingpin/v2"

	"github.com/syphon-archive/syphon/cli"
)

func main() {
	app := cli.NewApp()
	kp := kingpin.New("syphon", "Syphon - archive manifest maintenance")

	app.Attach(kp)

	kingpin.MustParse(kp.Parse(os.Args[1:]))
}
