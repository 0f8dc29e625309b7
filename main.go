package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/authclient/internal/cli"
	"github.com/mrlokans/authclient/internal/config"
	"github.com/mrlokans/authclient/internal/entrypoint"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

type subcommand interface {
	ParseFlags(args []string) error
	Run() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]
	cfg := config.NewConfig()
	streams := cli.StdIO()

	switch command {
	case "serve":
		entrypoint.Run(cfg, Version)

	case "login":
		run(cli.NewLoginCommand(cfg, streams), args)

	case "signup":
		run(cli.NewSignupCommand(cfg, streams), args)

	case "logout":
		run(cli.NewLogoutCommand(cfg, streams), args)

	case "status":
		run(cli.NewStatusCommand(cfg, streams), args)

	case "request":
		run(cli.NewRequestCommand(cfg, streams), args)

	case "version":
		fmt.Printf("authclient %s (%s)\n", Version, Commit)

	case "-h", "--help", "help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func run(cmd subcommand, args []string) {
	if err := cmd.ParseFlags(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if err := cmd.Run(); err != nil {
		if !errors.Is(err, cli.ErrNotLoggedIn) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  login     Log in and store the session token\n")
	fmt.Fprintf(os.Stderr, "  signup    Create an account (does not log in)\n")
	fmt.Fprintf(os.Stderr, "  logout    Remove the stored session token\n")
	fmt.Fprintf(os.Stderr, "  status    Report whether a session token is stored\n")
	fmt.Fprintf(os.Stderr, "  request   Send a request with the stored bearer token\n")
	fmt.Fprintf(os.Stderr, "  serve     Start the reference authentication API server\n")
	fmt.Fprintf(os.Stderr, "  version   Print version information\n")
	fmt.Fprintf(os.Stderr, "\nConfiguration is read from the environment (API_BASE_URL, TOKEN_STORE, ...).\n")
	fmt.Fprintf(os.Stderr, "Use '%s <command> -h' for help on a specific command.\n", os.Args[0])
}
