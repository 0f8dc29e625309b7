package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/authclient/internal/config"
)

// LoginCommand exchanges credentials for a token and stores it
type LoginCommand struct {
	credentialFlags

	cfg     *config.Config
	streams IO
}

// NewLoginCommand creates a new LoginCommand
func NewLoginCommand(cfg *config.Config, streams IO) *LoginCommand {
	return &LoginCommand{cfg: cfg, streams: streams}
}

// ParseFlags parses command line flags
func (cmd *LoginCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(cmd.streams.Stderr)

	fs.StringVar(&cmd.Username, "username", "", "Account username")
	fs.StringVar(&cmd.Password, "password", "", "Account password (prompted on stdin when omitted)")
	fs.StringVar(&cmd.cfg.Client.BaseURL, "url", cmd.cfg.Client.BaseURL, "API base URL (or set API_BASE_URL)")

	fs.Usage = func() {
		fmt.Fprintf(cmd.streams.Stderr, "Usage: %s login -username <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(cmd.streams.Stderr, "Log in and store the session token.\n\n")
		fmt.Fprintf(cmd.streams.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	return cmd.resolve(cmd.streams)
}

// Run executes the login
func (cmd *LoginCommand) Run() error {
	client, closeStore, err := openSession(cmd.cfg, cmd.streams)
	if err != nil {
		return err
	}
	defer closeStore()

	payload, err := client.Login(context.Background(), cmd.Username, cmd.Password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.streams.Stdout, "Logged in as %s\n", cmd.Username)
	if expiresAt, ok := payload["expires_at"].(string); ok {
		fmt.Fprintf(cmd.streams.Stdout, "Token expires at %s\n", expiresAt)
	}
	return nil
}
