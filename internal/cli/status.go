package cli

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/authclient/internal/config"
	"github.com/mrlokans/authclient/internal/tokenstore"
)

// ErrNotLoggedIn is returned by StatusCommand so the process exits non-zero.
var ErrNotLoggedIn = errors.New("not logged in")

// StatusCommand reports whether a token is stored
type StatusCommand struct {
	cfg     *config.Config
	streams IO
}

// NewStatusCommand creates a new StatusCommand
func NewStatusCommand(cfg *config.Config, streams IO) *StatusCommand {
	return &StatusCommand{cfg: cfg, streams: streams}
}

// ParseFlags parses command line flags
func (cmd *StatusCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(cmd.streams.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(cmd.streams.Stderr, "Usage: %s status\n\n", os.Args[0])
		fmt.Fprintf(cmd.streams.Stderr, "Report whether a session token is stored. Exits 1 when logged out.\n")
	}
	return fs.Parse(args)
}

// Run executes the status check
func (cmd *StatusCommand) Run() error {
	store, closeStore, err := openStore(cmd.cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	client, err := newClient(cmd.cfg, store, cmd.streams)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.streams.Stdout, "Token store: %s\n", describeStore(store))
	if !client.IsLoggedIn() {
		fmt.Fprintln(cmd.streams.Stdout, "Status: logged out")
		return ErrNotLoggedIn
	}
	fmt.Fprintln(cmd.streams.Stdout, "Status: logged in")
	return nil
}

func describeStore(store tokenstore.Store) string {
	switch s := store.(type) {
	case *tokenstore.FileStore:
		return "file " + s.Path()
	case *tokenstore.SQLiteStore:
		return "sqlite"
	default:
		return "memory"
	}
}
