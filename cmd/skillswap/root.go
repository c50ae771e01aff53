package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"skillswap/internal/app"
	"skillswap/internal/apperr"
	"skillswap/internal/config"
	"skillswap/internal/logging"
)

var errNotSignedIn = apperr.Authentication("Not signed in, run `skillswap login` first", nil)

// cli holds the global flags and the lazily built client.
type cli struct {
	configPath string
	apiURL     string
	logLevel   string

	app   *app.App
	input *bufio.Reader
}

func run(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	c := &cli{}
	defer c.close()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "skillswap",
		Short:         "Skill swap marketplace client",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("SKILLSWAP_CONFIG"), "path to config file")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "backend API base URL (overrides config)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(c.loginCmd())
	root.AddCommand(c.registerCmd())
	root.AddCommand(c.logoutCmd())
	root.AddCommand(c.whoamiCmd())
	root.AddCommand(c.forgotPasswordCmd())
	root.AddCommand(c.profileCmd())
	root.AddCommand(c.swapsCmd())
	root.AddCommand(c.notificationsCmd())
	root.AddCommand(c.skillsCmd())
	root.AddCommand(c.usersCmd())
	root.AddCommand(c.ratingsCmd())
	root.AddCommand(c.devServerCmd())
	return root
}

// open loads config and restores the stored session. A session the backend
// no longer accepts is dropped with a warning and the command runs anonymous.
func (c *cli) open(cmd *cobra.Command) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, fmt.Errorf("configuring logger: %w", err)
	}

	a, err := app.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}
	c.app = a

	if err := a.Restore(cmd.Context()); err != nil {
		logger.Warn("stored session could not be restored", "error", err)
	}
	return a, nil
}

// openSignedIn is open for commands that need a session.
func (c *cli) openSignedIn(cmd *cobra.Command) (*app.App, error) {
	a, err := c.open(cmd)
	if err != nil {
		return nil, err
	}
	if !a.Session.IsAuthenticated() {
		return nil, errNotSignedIn
	}
	return a, nil
}

func (c *cli) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(c.apiURL, "/")
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	return cfg, nil
}

func (c *cli) close() {
	if c.app == nil {
		return
	}
	if err := c.app.Close(); err != nil {
		c.app.Logger.Warn("error closing client", "error", err)
	}
}

// readLine reads one line of input, prompting on stderr.
func (c *cli) readLine(cmd *cobra.Command, prompt string) (string, error) {
	if c.input == nil {
		c.input = bufio.NewReader(cmd.InOrStdin())
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	line, err := c.input.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo from a terminal, or a plain line when
// input is piped.
func (c *cli) readPassword(cmd *cobra.Command, prompt string) (string, error) {
	f, ok := cmd.InOrStdin().(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return c.readLine(cmd, prompt)
	}

	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	pass, err := term.ReadPassword(int(f.Fd()))
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pass), nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
