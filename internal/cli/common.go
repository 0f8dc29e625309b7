package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mrlokans/authclient/internal/config"
	"github.com/mrlokans/authclient/internal/session"
	"github.com/mrlokans/authclient/internal/tokenstore"
)

// IO holds the streams a command reads from and writes to.
type IO struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// StdIO returns the process streams.
func StdIO() IO {
	return IO{Stdin: os.Stdin, Stdout: os.Stdout, Stderr: os.Stderr}
}

// redirectNavigator reports navigation requests on stderr, a terminal
// having no page to move to.
func redirectNavigator(w io.Writer) session.Navigator {
	return session.NavigatorFunc(func(path string) {
		fmt.Fprintf(w, "Redirect: %s\n", path)
	})
}

// openSession builds the token store and session client from config.
// The returned close function releases the store.
func openSession(cfg *config.Config, streams IO) (*session.Client, func(), error) {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	client, err := newClient(cfg, store, streams)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return client, closeStore, nil
}

func openStore(cfg *config.Config) (tokenstore.Store, func(), error) {
	store, err := tokenstore.New(cfg.TokenStore)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open token store: %w", err)
	}
	closeStore := func() {
		if closer, ok := store.(io.Closer); ok {
			closer.Close()
		}
	}
	return store, closeStore, nil
}

func newClient(cfg *config.Config, store tokenstore.Store, streams IO) (*session.Client, error) {
	return session.NewClient(cfg.Client.BaseURL, store,
		session.FromConfig(cfg.Client),
		session.WithNavigator(redirectNavigator(streams.Stderr)),
	)
}

// promptPassword reads a single line from stdin after printing a prompt.
func promptPassword(streams IO) (string, error) {
	fmt.Fprint(streams.Stderr, "Password: ")
	reader := bufio.NewReader(streams.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// credentialFlags holds the flags shared by login and signup.
type credentialFlags struct {
	Username string
	Password string
}

func (c *credentialFlags) resolve(streams IO) error {
	if c.Username == "" {
		return fmt.Errorf("username required: use -username flag")
	}
	if c.Password != "" {
		return nil
	}
	password, err := promptPassword(streams)
	if err != nil {
		return err
	}
	c.Password = password
	return nil
}
