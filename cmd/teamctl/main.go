// teamctl manages the fleet dashboard team from the command line: listing
// members, registering new ones, removing them and editing privileges.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dimitrije/fleetdesk/internal/access"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const usage = `teamctl manages fleet dashboard team members.

Usage:
  teamctl login --email <email> --password <password>
  teamctl list
  teamctl register --email <email> --name <full name> --password <password>
  teamctl remove <email> [--yes]
  teamctl privileges <email> [--grant p,...] [--revoke p,...]

Privileges: admin, add, remove, member, manager, dispatcher, viewer.

Environment:
  FLEETDESK_API_URL     team API base URL (default http://localhost:8080)
  FLEETDESK_TOKEN       auth token, overrides the saved login
  FLEETDESK_TOKEN_FILE  where login saves the token
  FLEETDESK_TIMEOUT     per-request timeout (default 15s)
`

type command func(app *cli, args []string) error

var commands = map[string]command{
	"login":      runLogin,
	"list":       runList,
	"register":   runRegister,
	"remove":     runRemove,
	"privileges": runPrivileges,
}

func main() {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)

	app := newCLI(os.Stdin, os.Stdout)
	if err := app.run(os.Args[1:]); err != nil {
		// Store failures were already shown in the status banner.
		var storeErr *access.Error
		if !errors.As(err, &storeErr) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func (a *cli) run(args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(a.out, usage)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command %q, run teamctl help", args[0])
	}
	// The flag set already printed usage for --help.
	if err := cmd(a, args[1:]); err != nil && !errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}
