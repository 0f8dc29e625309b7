package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/authclient/internal/config"
)

// SignupCommand creates an account. It never logs in.
type SignupCommand struct {
	credentialFlags

	cfg     *config.Config
	streams IO
}

// NewSignupCommand creates a new SignupCommand
func NewSignupCommand(cfg *config.Config, streams IO) *SignupCommand {
	return &SignupCommand{cfg: cfg, streams: streams}
}

// ParseFlags parses command line flags
func (cmd *SignupCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(cmd.streams.Stderr)

	fs.StringVar(&cmd.Username, "username", "", "Account username")
	fs.StringVar(&cmd.Password, "password", "", "Account password (prompted on stdin when omitted)")
	fs.StringVar(&cmd.cfg.Client.BaseURL, "url", cmd.cfg.Client.BaseURL, "API base URL (or set API_BASE_URL)")

	fs.Usage = func() {
		fmt.Fprintf(cmd.streams.Stderr, "Usage: %s signup -username <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(cmd.streams.Stderr, "Create an account. Run 'login' afterwards to obtain a token.\n\n")
		fmt.Fprintf(cmd.streams.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	return cmd.resolve(cmd.streams)
}

// Run executes the signup
func (cmd *SignupCommand) Run() error {
	client, closeStore, err := openSession(cmd.cfg, cmd.streams)
	if err != nil {
		return err
	}
	defer closeStore()

	payload, err := client.Signup(context.Background(), cmd.Username, cmd.Password)
	if err != nil {
		return err
	}

	var message string
	if obj, ok := payload.(map[string]any); ok {
		message, _ = obj["message"].(string)
	}
	if message == "" {
		message = "account created"
	}
	fmt.Fprintf(cmd.streams.Stdout, "%s: %s\n", cmd.Username, message)
	return nil
}
