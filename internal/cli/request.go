package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/mrlokans/authclient/internal/config"
	"github.com/mrlokans/authclient/internal/session"
)

// headerFlags collects repeated -H "Name: value" flags.
type headerFlags http.Header

func (h headerFlags) String() string { return "" }

func (h headerFlags) Set(value string) error {
	name, val, ok := strings.Cut(value, ":")
	if !ok || strings.TrimSpace(name) == "" {
		return fmt.Errorf("header must be in 'Name: value' form, got %q", value)
	}
	http.Header(h).Add(strings.TrimSpace(name), strings.TrimSpace(val))
	return nil
}

// RequestCommand sends an authenticated request and prints the response
type RequestCommand struct {
	Method  string
	Data    string
	Headers headerFlags
	URL     string

	cfg     *config.Config
	streams IO
}

// NewRequestCommand creates a new RequestCommand
func NewRequestCommand(cfg *config.Config, streams IO) *RequestCommand {
	return &RequestCommand{cfg: cfg, streams: streams, Headers: headerFlags{}}
}

// ParseFlags parses command line flags
func (cmd *RequestCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("request", flag.ContinueOnError)
	fs.SetOutput(cmd.streams.Stderr)

	fs.StringVar(&cmd.Method, "X", http.MethodGet, "HTTP method")
	fs.StringVar(&cmd.Data, "d", "", "Request body ('-' reads stdin)")
	fs.Var(cmd.Headers, "H", "Extra header 'Name: value' (repeatable, overrides defaults)")
	fs.StringVar(&cmd.cfg.Client.BaseURL, "url", cmd.cfg.Client.BaseURL, "API base URL (or set API_BASE_URL)")

	fs.Usage = func() {
		fmt.Fprintf(cmd.streams.Stderr, "Usage: %s request [options] <path-or-url>\n\n", os.Args[0])
		fmt.Fprintf(cmd.streams.Stderr, "Send a request with the stored bearer token.\n\n")
		fmt.Fprintf(cmd.streams.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(cmd.streams.Stderr, "\nExamples:\n")
		fmt.Fprintf(cmd.streams.Stderr, "  %s request /api/auth/me\n", os.Args[0])
		fmt.Fprintf(cmd.streams.Stderr, "  %s request -X POST -d '{\"a\":1}' /api/items\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected exactly one path or URL")
	}
	cmd.URL = fs.Arg(0)
	cmd.Method = strings.ToUpper(cmd.Method)
	return nil
}

// Run executes the request
func (cmd *RequestCommand) Run() error {
	client, closeStore, err := openSession(cmd.cfg, cmd.streams)
	if err != nil {
		return err
	}
	defer closeStore()

	opts := &session.RequestOptions{
		Method: cmd.Method,
		Header: http.Header(cmd.Headers),
	}
	switch cmd.Data {
	case "":
	case "-":
		opts.Body = cmd.streams.Stdin
	default:
		opts.Body = strings.NewReader(cmd.Data)
	}

	resp, err := client.MakeAuthenticatedRequest(context.Background(), cmd.URL, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	fmt.Fprintf(cmd.streams.Stderr, "%s %s\n", resp.Proto, resp.Status)
	if _, err := io.Copy(cmd.streams.Stdout, resp.Body); err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed with status %d", resp.StatusCode)
	}
	return nil
}
