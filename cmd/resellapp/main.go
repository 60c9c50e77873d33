// Command resellapp prices secondhand items, drafts listing copy, and tracks
// a resale inventory from the command line or over HTTP.
package main

import "github.com/buddy-dubby/reselling-app/internal/cli"

func main() {
	cli.Execute()
}
