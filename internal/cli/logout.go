package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/authclient/internal/config"
)

// LogoutCommand forgets the stored token
type LogoutCommand struct {
	cfg     *config.Config
	streams IO
}

// NewLogoutCommand creates a new LogoutCommand
func NewLogoutCommand(cfg *config.Config, streams IO) *LogoutCommand {
	return &LogoutCommand{cfg: cfg, streams: streams}
}

// ParseFlags parses command line flags
func (cmd *LogoutCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(cmd.streams.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(cmd.streams.Stderr, "Usage: %s logout\n\n", os.Args[0])
		fmt.Fprintf(cmd.streams.Stderr, "Remove the stored session token. The server is not contacted.\n")
	}
	return fs.Parse(args)
}

// Run executes the logout
func (cmd *LogoutCommand) Run() error {
	client, closeStore, err := openSession(cmd.cfg, cmd.streams)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := client.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.streams.Stdout, "Logged out")
	return nil
}
