// radclient is the example RADIUS client CLI, covering the auth, acct,
// coa, disconnect, and status subcommands that mirror pyrad's
// example/*.py scripts.
package main

import "github.com/wichert/goradius/cmd/radclient/commands"

func main() {
	commands.Execute()
}
